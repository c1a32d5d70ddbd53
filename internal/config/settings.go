package config

import "time"

// Settings is the resolved runtime configuration shared by cmd/server and cmd/notifyctl.
type Settings struct {
	Port           string
	CORSOrigins    []string
	RequestTimeout time.Duration

	StoreDriver string
	DBPath      string
	DatabaseURL string
	RedisURL    string
	RedisKey    string
	CSVPath     string

	Extractor    string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
	ExtractorTTL  time.Duration

	Sender        string
	GreenInstance string
	GreenToken    string
	GreenBaseURL  string

	CountryCode  string
	ETABaseDelay time.Duration
	ETAPerStop   time.Duration
	ETAWindow    time.Duration
}

// FromEnv resolves Settings from the environment with the documented defaults.
func FromEnv() Settings {
	c := New()
	green := c.Prefix("GREEN_")
	eta := c.Prefix("ETA_")

	return Settings{
		Port:           c.MayString("PORT", "8080"),
		CORSOrigins:    c.MayCSV("CORS_ORIGINS", []string{"*"}),
		RequestTimeout: c.MayDuration("REQUEST_TIMEOUT", 60*time.Second),

		StoreDriver: c.MayEnum("STORE_DRIVER", "sqlite", "sqlite", "postgres", "redis", "csv", "memory"),
		DBPath:      c.MayString("DB_PATH", "data/app.db"),
		DatabaseURL: c.MayString("DATABASE_URL", ""),
		RedisURL:    c.MayString("REDIS_URL", "redis://localhost:6379/0"),
		RedisKey:    c.MayString("REDIS_KEY", "notify:rows"),
		CSVPath:     c.MayString("CSV_PATH", "data/deliveries.csv"),

		Extractor:     c.MayEnum("EXTRACTOR", "keyword", "openai", "gemini", "keyword"),
		OpenAIKey:     c.MayString("OPENAI_KEY", ""),
		OpenAIModel:   c.MayString("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: c.MayString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiKey:     c.MayString("GEMINI_API_KEY", ""),
		GeminiModel:   c.MayString("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: c.MayString("GEMINI_BASE_URL", ""),
		ExtractorTTL:  c.MayDuration("EXTRACTOR_TIMEOUT", 20*time.Second),

		Sender:        c.MayEnum("SENDER", "log", "greenapi", "log"),
		GreenInstance: green.MayString("INSTANCE", ""),
		GreenToken:    green.MayString("TOKEN", ""),
		GreenBaseURL:  green.MayString("BASE_URL", "https://api.green-api.com"),

		CountryCode:  c.MayString("COUNTRY_CODE", "972"),
		ETABaseDelay: eta.MayDuration("BASE_DELAY", 30*time.Minute),
		ETAPerStop:   eta.MayDuration("PER_STOP", 5*time.Minute),
		ETAWindow:    eta.MayDuration("WINDOW", 120*time.Minute),
	}
}
