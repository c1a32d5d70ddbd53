package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/ports"
)

// Response is the JSON document the language model extractors are asked to return.
type Response struct {
	ExtractedData struct {
		SomeoneHome  *string `json:"someone_home"`
		DropLocation *string `json:"drop_location"`
		Apartment    *string `json:"apartment"`
		Floor        *string `json:"floor"`
		EntranceCode *string `json:"entrance_code"`
		Declined     bool    `json:"declined"`
	} `json:"extracted_data"`
	ReplyMessage string `json:"reply_message"`
}

type knownState struct {
	SomeoneHome  *string `json:"someone_home"`
	DropLocation *string `json:"drop_location"`
	Apartment    *string `json:"apartment"`
	Floor        *string `json:"floor"`
	EntranceCode *string `json:"entrance_code"`
}

const systemPromptTemplate = `אתה בוט שליחויות אדיב וקליל שמנהל שיחת וואטסאפ עם לקוח כדי להשיג את פרטי הגישה למשלוח.

הנחיות לתגובה (reply_message):
1. עברית טבעית, יומיומית וקצרה. מותר אימוג'י.
2. שאלה אחת בכל פעם. קודם לברר אם יהיה מישהו בבית. אם לא: איפה להשאיר. אם כן: דירה, קומה, קוד כניסה.
3. אם כל הפרטים ידועים, תודה קצרה בלי שאלה נוספת.

חילוץ מידע (extracted_data):
- "תשאיר בלובי" פירושו someone_home="no" ו-drop_location="לובי".
- "קומה 2 דירה 4" פירושו floor="2" ו-apartment="4".
- אם הלקוח אומר שאין קוד כניסה, entrance_code="%s".
- null פירושו "אין מידע חדש". לעולם אל תחזיר ערך ריק כדי למחוק ערך קיים.
- declined=true רק אם הלקוח מבקש להפסיק את השיחה.

החזר JSON בלבד במבנה:
{
  "extracted_data": {
    "someone_home": "yes" | "no" | null,
    "drop_location": string | null,
    "apartment": string | null,
    "floor": string | null,
    "entrance_code": string | null,
    "declined": boolean
  },
  "reply_message": string
}

מה שכבר ידוע על המשלוח:
%s`

// SystemPrompt renders the instructions for a model, including the slots already known.
func SystemPrompt(known domain.SlotUpdate) string {
	st := knownState{
		DropLocation: known.DropLocation,
		Apartment:    known.Apartment,
		Floor:        known.Floor,
		EntranceCode: known.EntranceCode,
	}
	if known.SomeoneHome.Known() {
		v := string(known.SomeoneHome)
		st.SomeoneHome = &v
	}
	b, _ := json.Marshal(st)
	return fmt.Sprintf(systemPromptTemplate, domain.NotApplicable, b)
}

// UserPrompt wraps the customer's message.
func UserPrompt(text string) string {
	return fmt.Sprintf("הודעת הלקוח: %q\nתגיב בצורה טבעית.", text)
}

// ParseResponse decodes a model answer into an extraction. Code fences around
// the JSON are tolerated.
func ParseResponse(raw string) (ports.Extraction, error) {
	raw = stripFences(raw)
	if raw == "" {
		return ports.Extraction{}, errors.New("parse extractor response: empty")
	}

	var r Response
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return ports.Extraction{}, fmt.Errorf("parse extractor response: %w", err)
	}

	u := domain.SlotUpdate{
		DropLocation: r.ExtractedData.DropLocation,
		Apartment:    r.ExtractedData.Apartment,
		Floor:        r.ExtractedData.Floor,
		EntranceCode: r.ExtractedData.EntranceCode,
		Declined:     r.ExtractedData.Declined,
	}
	if r.ExtractedData.SomeoneHome != nil {
		u.SomeoneHome = domain.Presence(*r.ExtractedData.SomeoneHome)
	}

	return ports.Extraction{
		Status: ports.ExtractionOK,
		Update: u.Sanitized(),
		Reply:  strings.TrimSpace(r.ReplyMessage),
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
