package domain

import "strings"

// SlotUpdate is a partial set of slot values produced by an extractor.
// A nil field (or PresenceUnknown) means "no new information", never "clear".
type SlotUpdate struct {
	SomeoneHome  Presence
	DropLocation *string
	Apartment    *string
	Floor        *string
	EntranceCode *string

	// Declined is set when the customer refuses to continue the conversation.
	Declined bool
}

// Empty reports whether u carries nothing to merge.
func (u SlotUpdate) Empty() bool {
	return !u.SomeoneHome.Known() && u.DropLocation == nil && u.Apartment == nil &&
		u.Floor == nil && u.EntranceCode == nil && !u.Declined
}

// Sanitized drops values that cannot be merged: blank strings and presence
// values other than yes/no.
func (u SlotUpdate) Sanitized() SlotUpdate {
	out := SlotUpdate{Declined: u.Declined}
	switch Presence(strings.ToLower(strings.TrimSpace(string(u.SomeoneHome)))) {
	case PresenceYes:
		out.SomeoneHome = PresenceYes
	case PresenceNo:
		out.SomeoneHome = PresenceNo
	}
	out.DropLocation = nonBlank(u.DropLocation)
	out.Apartment = nonBlank(u.Apartment)
	out.Floor = nonBlank(u.Floor)
	out.EntranceCode = nonBlank(u.EntranceCode)
	return out
}

func nonBlank(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// Apply merges u into d and returns the slots whose value changed.
//
// Unknown to known and known to a different known value (a correction) are the
// only moves; nothing in u can make a known slot unknown again.
func (d *Delivery) Apply(u SlotUpdate) []Slot {
	u = u.Sanitized()
	var changed []Slot

	if u.SomeoneHome.Known() && u.SomeoneHome != d.SomeoneHome {
		d.SomeoneHome = u.SomeoneHome
		changed = append(changed, SlotSomeoneHome)
	}
	if mergeSlot(&d.DropLocation, u.DropLocation) {
		changed = append(changed, SlotDropLocation)
	}
	if mergeSlot(&d.Apartment, u.Apartment) {
		changed = append(changed, SlotApartment)
	}
	if mergeSlot(&d.Floor, u.Floor) {
		changed = append(changed, SlotFloor)
	}
	if mergeSlot(&d.EntranceCode, u.EntranceCode) {
		changed = append(changed, SlotEntranceCode)
	}
	return changed
}

func mergeSlot(dst **string, v *string) bool {
	if v == nil {
		return false
	}
	if *dst != nil && **dst == *v {
		return false
	}
	val := *v
	*dst = &val
	return true
}
