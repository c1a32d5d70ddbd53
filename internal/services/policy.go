package services

import (
	"fmt"
	"strings"

	"delivery-notify-service/internal/domain"
)

// NextSlot picks the slot to ask about next, or false when nothing is left to ask.
//
// Presence comes first. A "no" leads to the drop location only; a "yes" leads to
// apartment, floor, entrance code in that order. Complete deliveries get nothing.
func NextSlot(d *domain.Delivery) (domain.Slot, bool) {
	if d.Status == domain.StatusComplete || d.IsComplete() {
		return "", false
	}

	switch d.SomeoneHome {
	case domain.PresenceUnknown:
		return domain.SlotSomeoneHome, true
	case domain.PresenceNo:
		if d.DropLocation == nil {
			return domain.SlotDropLocation, true
		}
	case domain.PresenceYes:
		for _, s := range []domain.Slot{domain.SlotApartment, domain.SlotFloor, domain.SlotEntranceCode} {
			if _, ok := d.Known(s); !ok {
				return s, true
			}
		}
	}
	return "", false
}

// DefaultCustomerName is used when a stop is entered without a name.
const DefaultCustomerName = "לקוח"

var questions = map[domain.Slot]string{
	domain.SlotSomeoneHome:  "❓ האם יהיה מישהו בבית בשעות אלו? (כן / לא)",
	domain.SlotDropLocation: "איפה להשאיר את המשלוח? (למשל: ליד הדלת, בלובי, אצל השכן)",
	domain.SlotApartment:    "מה מספר הדירה?",
	domain.SlotFloor:        "באיזו קומה?",
	domain.SlotEntranceCode: "יש קוד כניסה לבניין? אם אין, אפשר לכתוב \"אין\".",
}

// ClosingMessage acknowledges a conversation that just completed.
const ClosingMessage = "תודה! קיבלתי את כל הפרטים, המשלוח בדרך 📦"

// Question renders the prompt for slot.
func Question(slot domain.Slot) string { return questions[slot] }

// Greeting renders the first message for a delivery.
func Greeting(d *domain.Delivery) string {
	name := ""
	if d.RecipientName != "" && d.RecipientName != DefaultCustomerName {
		name = " " + d.RecipientName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "היי%s! 👋 כאן השליח.\n", name)
	fmt.Fprintf(&b, "יש לי משלוח עבורך שצפוי להגיע בין השעות %s.\n\n", d.EstimatedTimeRange)
	b.WriteString("כדי שאוכל למסור אותו, אני צריך לדעת:\n")
	b.WriteString(Question(domain.SlotSomeoneHome))
	return b.String()
}
