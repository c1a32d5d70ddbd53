package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOfThroughWrapping(t *testing.T) {
	base := Integrityf("batch %s: dispatcher mismatch", "ROUTE-1")
	wrapped := fmt.Errorf("load: %w", base)

	if got := CodeOf(wrapped); got != ErrorCodeDataIntegrity {
		t.Fatalf("CodeOf = %v, want data_integrity", got)
	}
	if got := HTTPStatus(wrapped); got != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus = %d, want 500", got)
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatal("foreign error should map to unknown")
	}
}

func TestWireHidesForeignMessages(t *testing.T) {
	w := WireFrom(stderrs.New("dial tcp 10.0.0.1: refused"))
	if w.Message != "internal server error" {
		t.Fatalf("foreign message leaked: %q", w.Message)
	}

	status, w := HTTP(Validationf("stops[0].phone", "phone is required"))
	if status != http.StatusBadRequest || w.Field != "stops[0].phone" || w.Code != "validation" {
		t.Fatalf("got %d %+v", status, w)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrs.New("disk full")
	err := Wrap(cause, ErrorCodeStoreUnavailable, "save batches")

	if !stderrs.Is(err, cause) {
		t.Fatal("wrapped cause not reachable")
	}
	if err.Error() != "save batches: disk full" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if HTTPStatus(err) != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", HTTPStatus(err))
	}
}
