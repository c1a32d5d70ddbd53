package extractor

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/ports"
)

// KeywordExtractor is an offline extractor for Hebrew and English replies.
// It recognises presence answers, "leave it at ..." phrases, floor, apartment
// and entrance code patterns, and bare answers to the question currently asked.
// It never writes a reply, so the conversation policy asks the next question.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor { return &KeywordExtractor{} }

var (
	reFloor     = regexp.MustCompile(`(?i)(?:קומה|floor)\s*[:\-]?\s*(\d+)`)
	reApartment = regexp.MustCompile(`(?i)(?:דירה|apartment|apt\.?)\s*[:\-]?\s*(\d+[א-תa-z]?)`)
	reCode      = regexp.MustCompile(`(?i)(?:קוד(?:\s+כניסה)?|code)\s*[:\-]?\s*([0-9#*]{2,})`)
	reNoCode    = regexp.MustCompile(`(?i)(?:אין\s+קוד|בלי\s+קוד|no\s+code|אין\s+צורך\s+בקוד)`)
	reLeave     = regexp.MustCompile(`(?i)(?:תשאיר(?:ו|י)?|להשאיר|תניח(?:ו|י)?|leave(?:\s+it)?)\s+(.+)`)
	reBare      = regexp.MustCompile(`^\s*([0-9#*]+[א-תa-zA-Z]?)\s*$`)
)

var (
	yesWords     = []string{"כן", "yes", "yep", "בטח", "אהיה", "נהיה", "בבית"}
	noWords      = []string{"לא", "no", "nope"}
	noPhrases    = []string{"אין אף אחד", "לא אהיה", "לא נהיה", "לא בבית", "nobody", "not home"}
	noneWords    = []string{"אין", "none", "בית פרטי"}
	declinePhras = []string{"הפסק", "תפסיק", "לא רלוונטי", "stop", "unsubscribe", "לא מעוניין"}
)

// places maps phrases found in a reply to the canonical drop location.
var places = []struct{ match, value string }{
	{"לובי", "לובי"},
	{"lobby", "לובי"},
	{"דלת", "ליד הדלת"},
	{"door", "ליד הדלת"},
	{"שכן", "אצל השכן"},
	{"שכנ", "אצל השכן"},
	{"neighbo", "אצל השכן"},
	{"שומר", "אצל השומר"},
	{"guard", "אצל השומר"},
	{"תיבת דואר", "בתיבת הדואר"},
	{"mailbox", "בתיבת הדואר"},
	{"ארון חשמל", "בארון החשמל"},
}

func (KeywordExtractor) Interpret(_ context.Context, text string, known domain.SlotUpdate) ports.Extraction {
	lower := strings.ToLower(strings.TrimSpace(text))
	toks := tokens(lower)

	var u domain.SlotUpdate
	if containsAny(lower, declinePhras) {
		u.Declined = true
		return ports.Extraction{Status: ports.ExtractionOK, Update: u}
	}

	if m := reLeave.FindStringSubmatch(text); m != nil {
		u.SomeoneHome = domain.PresenceNo
		u.DropLocation = domain.Ptr(placeFor(m[1]))
	} else if place, ok := knownPlace(lower); ok && !hasAnyToken(toks, yesWords) {
		u.SomeoneHome = domain.PresenceNo
		u.DropLocation = domain.Ptr(place)
	}

	if m := reFloor.FindStringSubmatch(text); m != nil {
		u.Floor = domain.Ptr(m[1])
	}
	if m := reApartment.FindStringSubmatch(text); m != nil {
		u.Apartment = domain.Ptr(m[1])
	}
	switch {
	case reNoCode.MatchString(lower):
		u.EntranceCode = domain.Ptr(domain.NotApplicable)
	default:
		if m := reCode.FindStringSubmatch(text); m != nil {
			u.EntranceCode = domain.Ptr(m[1])
		}
	}

	if !u.SomeoneHome.Known() {
		switch {
		case containsAny(lower, noPhrases):
			u.SomeoneHome = domain.PresenceNo
		case hasAnyToken(toks, yesWords):
			u.SomeoneHome = domain.PresenceYes
		case hasAnyToken(toks, noWords) && askedSlot(known) == domain.SlotSomeoneHome:
			u.SomeoneHome = domain.PresenceNo
		}
	}

	if u.Empty() {
		u = bareAnswer(text, lower, toks, known)
	}

	return ports.Extraction{Status: ports.ExtractionOK, Update: u.Sanitized()}
}

// askedSlot mirrors the question order so short answers can be attributed.
func askedSlot(known domain.SlotUpdate) domain.Slot {
	switch known.SomeoneHome {
	case domain.PresenceNo:
		if known.DropLocation == nil {
			return domain.SlotDropLocation
		}
		return ""
	case domain.PresenceYes:
		switch {
		case known.Apartment == nil:
			return domain.SlotApartment
		case known.Floor == nil:
			return domain.SlotFloor
		case known.EntranceCode == nil:
			return domain.SlotEntranceCode
		}
		return ""
	}
	return domain.SlotSomeoneHome
}

// bareAnswer treats a reply with no recognised keyword as the answer to the
// question the customer was last asked.
func bareAnswer(text, lower string, toks []string, known domain.SlotUpdate) domain.SlotUpdate {
	var u domain.SlotUpdate
	text = strings.TrimSpace(text)

	switch askedSlot(known) {
	case domain.SlotDropLocation:
		if text != "" {
			u.DropLocation = domain.Ptr(text)
		}
	case domain.SlotApartment:
		if m := reBare.FindStringSubmatch(text); m != nil {
			u.Apartment = domain.Ptr(m[1])
		}
	case domain.SlotFloor:
		if m := reBare.FindStringSubmatch(text); m != nil {
			u.Floor = domain.Ptr(m[1])
		} else if strings.Contains(lower, "קרקע") || strings.Contains(lower, "ground") {
			u.Floor = domain.Ptr("0")
		}
	case domain.SlotEntranceCode:
		if m := reBare.FindStringSubmatch(text); m != nil {
			u.EntranceCode = domain.Ptr(m[1])
		} else if hasAnyToken(toks, noneWords) || hasAnyToken(toks, noWords) || containsAny(lower, noneWords) {
			u.EntranceCode = domain.Ptr(domain.NotApplicable)
		}
	}
	return u
}

func placeFor(s string) string {
	if p, ok := knownPlace(strings.ToLower(s)); ok {
		return p
	}
	return strings.TrimSpace(strings.TrimRight(s, ".!"))
}

func knownPlace(lower string) (string, bool) {
	for _, p := range places {
		if strings.Contains(lower, p.match) {
			return p.value, true
		}
	}
	return "", false
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasAnyToken(toks, words []string) bool {
	for _, t := range toks {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
