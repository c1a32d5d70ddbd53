package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "EXTRACTOR", "SENDER", "ETA_BASE_DELAY", "ETA_PER_STOP", "ETA_WINDOW", "COUNTRY_CODE", "PORT"} {
		t.Setenv(k, "")
	}

	s := FromEnv()
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "sqlite", s.StoreDriver)
	assert.Equal(t, "keyword", s.Extractor)
	assert.Equal(t, "log", s.Sender)
	assert.Equal(t, "972", s.CountryCode)
	assert.Equal(t, 30*time.Minute, s.ETABaseDelay)
	assert.Equal(t, 5*time.Minute, s.ETAPerStop)
	assert.Equal(t, 120*time.Minute, s.ETAWindow)
}

func TestMayDurationAcceptsMinutesAndGoSyntax(t *testing.T) {
	t.Setenv("ETA_PER_STOP", "7")
	t.Setenv("ETA_WINDOW", "1h30m")
	t.Setenv("ETA_BASE_DELAY", "soon")

	eta := New().Prefix("ETA_")
	assert.Equal(t, 7*time.Minute, eta.MayDuration("PER_STOP", time.Minute))
	assert.Equal(t, 90*time.Minute, eta.MayDuration("WINDOW", time.Minute))
	assert.Equal(t, time.Minute, eta.MayDuration("BASE_DELAY", time.Minute))
}

func TestMayCSVAndEnum(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example, ,https://b.example ")
	t.Setenv("STORE_DRIVER", "Postgres")

	c := New()
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.MayCSV("CORS_ORIGINS", nil))
	require.Equal(t, "postgres", c.MayEnum("STORE_DRIVER", "sqlite", "sqlite", "postgres"))
	require.Panics(t, func() { c.MayEnum("STORE_DRIVER", "sqlite", "sqlite", "memory") })
}
