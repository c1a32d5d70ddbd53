package services

import (
	"errors"
	"strings"
	"testing"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/ports"

	"github.com/google/go-cmp/cmp"
)

func TestNextSlot(t *testing.T) {
	tests := []struct {
		name string
		d    domain.Delivery
		want domain.Slot
		ok   bool
	}{
		{"nothing known", domain.Delivery{}, domain.SlotSomeoneHome, true},
		{"not home", domain.Delivery{SomeoneHome: domain.PresenceNo}, domain.SlotDropLocation, true},
		{"not home, drop known", domain.Delivery{SomeoneHome: domain.PresenceNo, DropLocation: domain.Ptr("לובי")}, "", false},
		{"home", domain.Delivery{SomeoneHome: domain.PresenceYes}, domain.SlotApartment, true},
		{"home, apartment", domain.Delivery{SomeoneHome: domain.PresenceYes, Apartment: domain.Ptr("4")}, domain.SlotFloor, true},
		{"home, floor only", domain.Delivery{SomeoneHome: domain.PresenceYes, Floor: domain.Ptr("2")}, domain.SlotApartment, true},
		{"home, apartment and floor", domain.Delivery{SomeoneHome: domain.PresenceYes, Apartment: domain.Ptr("4"), Floor: domain.Ptr("2")}, domain.SlotEntranceCode, true},
		{"complete status", domain.Delivery{Status: domain.StatusComplete}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextSlot(&tc.d)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("NextSlot = %q,%v want %q,%v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestGreeting(t *testing.T) {
	g := Greeting(&domain.Delivery{RecipientName: "דנה", EstimatedTimeRange: "08:35-10:35"})
	for _, part := range []string{"דנה", "08:35-10:35", Question(domain.SlotSomeoneHome)} {
		if !strings.Contains(g, part) {
			t.Fatalf("greeting %q lacks %q", g, part)
		}
	}

	anon := Greeting(&domain.Delivery{RecipientName: DefaultCustomerName, EstimatedTimeRange: "08:35-10:35"})
	if strings.Contains(anon, DefaultCustomerName) {
		t.Fatalf("greeting addresses placeholder name: %q", anon)
	}
}

func TestQuestionsCoverEverySlot(t *testing.T) {
	for _, s := range []domain.Slot{domain.SlotSomeoneHome, domain.SlotDropLocation, domain.SlotApartment, domain.SlotFloor, domain.SlotEntranceCode} {
		if Question(s) == "" {
			t.Fatalf("no question for %s", s)
		}
	}
}

func TestReconcile_LobbyCompletesWithoutPrompt(t *testing.T) {
	d := &domain.Delivery{Status: domain.StatusSent}
	out := Reconcile(d, "תשאיר בלובי", update(domain.SlotUpdate{SomeoneHome: domain.PresenceNo, DropLocation: domain.Ptr("lobby")}))

	if d.Status != domain.StatusComplete || !out.Completed {
		t.Fatalf("status = %q, completed = %v", d.Status, out.Completed)
	}
	if out.HasNext {
		t.Fatalf("asked for %s after completion", out.NextSlot)
	}
	if out.Reply != ClosingMessage || d.LastMessage != ClosingMessage {
		t.Fatalf("reply = %q, last = %q", out.Reply, d.LastMessage)
	}
}

func TestReconcile_AsksNextQuestion(t *testing.T) {
	d := &domain.Delivery{Status: domain.StatusSent}
	out := Reconcile(d, "כן", update(domain.SlotUpdate{SomeoneHome: domain.PresenceYes}))

	if d.Status != domain.StatusAwaitingReply {
		t.Fatalf("status = %q", d.Status)
	}
	if !out.HasNext || out.NextSlot != domain.SlotApartment {
		t.Fatalf("next = %q,%v", out.NextSlot, out.HasNext)
	}
	if out.Reply != Question(domain.SlotApartment) {
		t.Fatalf("reply = %q", out.Reply)
	}
	if diff := cmp.Diff([]domain.Slot{domain.SlotSomeoneHome}, out.Changed); diff != "" {
		t.Fatalf("changed (-want +got):\n%s", diff)
	}
}

func TestReconcile_ExtractorReplyWins(t *testing.T) {
	d := &domain.Delivery{}
	x := update(domain.SlotUpdate{SomeoneHome: domain.PresenceYes})
	x.Reply = "  מעולה! באיזו דירה?  "
	out := Reconcile(d, "כן", x)
	if out.Reply != "מעולה! באיזו דירה?" || d.LastMessage != out.Reply {
		t.Fatalf("reply = %q, last = %q", out.Reply, d.LastMessage)
	}
}

func TestReconcile_FloorCorrection(t *testing.T) {
	d := &domain.Delivery{SomeoneHome: domain.PresenceYes}
	Reconcile(d, "קומה 2", update(domain.SlotUpdate{Floor: domain.Ptr("2")}))
	Reconcile(d, "סליחה, קומה 3", update(domain.SlotUpdate{Floor: domain.Ptr("3")}))
	if *d.Floor != "3" {
		t.Fatalf("floor = %q, want 3", *d.Floor)
	}
}

func TestReconcile_DegradedKeepsSlots(t *testing.T) {
	d := &domain.Delivery{Status: domain.StatusAwaitingReply, SomeoneHome: domain.PresenceYes, Apartment: domain.Ptr("4")}
	out := Reconcile(d, "???", ports.DegradedExtraction(errors.New("timeout")))

	if !out.Degraded || len(out.Changed) != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Reply != ports.FallbackReply {
		t.Fatalf("reply = %q", out.Reply)
	}
	if d.SomeoneHome != domain.PresenceYes || *d.Apartment != "4" || d.Status != domain.StatusAwaitingReply {
		t.Fatalf("delivery changed: %+v", d)
	}
}

func TestReconcile_DeclinedCompletes(t *testing.T) {
	d := &domain.Delivery{Status: domain.StatusSent}
	out := Reconcile(d, "לא מעוניין", update(domain.SlotUpdate{Declined: true}))
	if !out.Completed || d.Status != domain.StatusComplete {
		t.Fatalf("status = %q", d.Status)
	}
	if d.IsComplete() {
		t.Fatalf("declined delivery should not look slot-complete")
	}
}

func TestReconcile_CompleteIsTerminal(t *testing.T) {
	d := &domain.Delivery{Status: domain.StatusComplete, SomeoneHome: domain.PresenceNo, DropLocation: domain.Ptr("לובי")}
	before := d.Clone()

	out := Reconcile(d, "תודה!", update(domain.SlotUpdate{SomeoneHome: domain.PresenceYes, Floor: domain.Ptr("9")}))

	if !out.AlreadyComplete || out.Reply != "" || out.Completed {
		t.Fatalf("outcome = %+v", out)
	}
	before.LastMessage = "תודה!"
	if diff := cmp.Diff(before, d); diff != "" {
		t.Fatalf("complete delivery changed (-want +got):\n%s", diff)
	}
}
