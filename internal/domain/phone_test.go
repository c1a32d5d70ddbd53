package domain

import "testing"

func TestNormalizePhoneEquivalentForms(t *testing.T) {
	forms := []string{
		"0501234567",
		"050-123-4567",
		"050 123 4567",
		"+972501234567",
		"+972-50-123-4567",
		"972501234567",
		"00972501234567",
		"501234567",
		"(050) 123.4567",
		"０５０１２３４５６７",
	}

	const want = "972501234567"
	for _, f := range forms {
		if got := NormalizePhone(f); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestNormalizePhonePassesThroughResidue(t *testing.T) {
	tests := []string{"", "   ", "---", "000", "call me", "050-CALL-NOW"}
	for _, in := range tests {
		if got := NormalizePhone(in); got != in {
			t.Errorf("NormalizePhone(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestPhoneNormalizerCountryCode(t *testing.T) {
	n := NewPhoneNormalizer("+44")
	if got := n.Normalize("07700 900123"); got != "447700900123" {
		t.Fatalf("got %q", got)
	}
	if got := n.Normalize("+44 7700 900123"); got != "447700900123" {
		t.Fatalf("got %q", got)
	}

	if NewPhoneNormalizer("").CountryCode != DefaultCountryCode {
		t.Fatal("blank country code should fall back to default")
	}
}
