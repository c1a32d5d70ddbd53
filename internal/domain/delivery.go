package domain

// Status is the conversation state of a single delivery.
type Status string

const (
	// StatusSent is set at batch creation, before any reply has been processed.
	StatusSent Status = "sent"
	// StatusAwaitingReply means at least one reply was processed and slots are still missing.
	StatusAwaitingReply Status = "awaiting_reply"
	// StatusComplete is terminal.
	StatusComplete Status = "complete"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSent, StatusAwaitingReply, StatusComplete:
		return true
	}
	return false
}

// Presence answers "will someone be home". The zero value is unknown.
type Presence string

const (
	PresenceUnknown Presence = ""
	PresenceYes     Presence = "yes"
	PresenceNo      Presence = "no"
)

// Known reports whether p carries an answer.
func (p Presence) Known() bool { return p == PresenceYes || p == PresenceNo }

// Slot names one piece of delivery metadata gathered over the conversation.
type Slot string

const (
	SlotSomeoneHome  Slot = "someone_home"
	SlotDropLocation Slot = "drop_location"
	SlotApartment    Slot = "apartment"
	SlotFloor        Slot = "floor"
	SlotEntranceCode Slot = "entrance_code"
)

// NotApplicable is the value recorded when a customer says a slot does not apply
// (no entrance code, private house). It counts as known.
const NotApplicable = "n/a"

// Delivery is one stop in a Batch. It is owned by its Batch; BatchID is a back-reference.
//
// Unknown slots are nil. Once a slot holds a value it can only be replaced by
// another value (see Apply), never cleared.
type Delivery struct {
	SequenceNumber     int
	RecipientName      string
	RecipientPhone     string
	BatchID            string
	Status             Status
	SomeoneHome        Presence
	DropLocation       *string
	Apartment          *string
	Floor              *string
	EntranceCode       *string
	EstimatedTimeRange string
	LastMessage        string
}

// Known returns the value of slot and whether it is known.
func (d *Delivery) Known(slot Slot) (string, bool) {
	switch slot {
	case SlotSomeoneHome:
		return string(d.SomeoneHome), d.SomeoneHome.Known()
	case SlotDropLocation:
		return deref(d.DropLocation)
	case SlotApartment:
		return deref(d.Apartment)
	case SlotFloor:
		return deref(d.Floor)
	case SlotEntranceCode:
		return deref(d.EntranceCode)
	}
	return "", false
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

// IsComplete applies the branch-dependent completeness rule:
// not home needs a drop location; home needs apartment, floor and entrance code.
func (d *Delivery) IsComplete() bool {
	switch d.SomeoneHome {
	case PresenceNo:
		return d.DropLocation != nil
	case PresenceYes:
		return d.Apartment != nil && d.Floor != nil && d.EntranceCode != nil
	}
	return false
}

// KnownSlots is the snapshot of slot values handed to an extractor.
func (d *Delivery) KnownSlots() SlotUpdate {
	u := SlotUpdate{SomeoneHome: d.SomeoneHome}
	u.DropLocation = clone(d.DropLocation)
	u.Apartment = clone(d.Apartment)
	u.Floor = clone(d.Floor)
	u.EntranceCode = clone(d.EntranceCode)
	return u
}

// Clone returns a deep copy.
func (d *Delivery) Clone() *Delivery {
	c := *d
	c.DropLocation = clone(d.DropLocation)
	c.Apartment = clone(d.Apartment)
	c.Floor = clone(d.Floor)
	c.EntranceCode = clone(d.EntranceCode)
	return &c
}

func clone(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to s, for building slot values.
func Ptr(s string) *string { return &s }
