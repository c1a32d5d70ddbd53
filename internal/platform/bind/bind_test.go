package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "delivery-notify-service/internal/platform/errors"
)

type stop struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type payload struct {
	Dispatcher string `json:"dispatcher_phone" validate:"required,phone"`
	Stops      []stop `json:"stops" validate:"required,min=1,dive"`
}

func TestParseJSON_Success(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"dispatcher_phone":"050-111-2222","stops":[{"phone":"+972 50 123 4567"}]}`))
	got, err := ParseJSON[payload](req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Dispatcher != "050-111-2222" || len(got.Stops) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_EmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_UnknownField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"dispatcher_phone":"0501112222","stops":[{"phone":"0501234567"}],"extra":1}`))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_TrailingData(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"dispatcher_phone":"0501112222","stops":[{"phone":"0501234567"}]} {}`))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_ValidationFieldPath(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"dispatcher_phone":"0501112222","stops":[{"phone":"0501234567"},{"phone":"call me"}]}`))
	_, err := ParseJSON[payload](req)

	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if e.Field() != "stops[1].phone" {
		t.Fatalf("field = %q", e.Field())
	}
	if !strings.Contains(err.Error(), "must be a phone number") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestParseJSON_MissingStops(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"dispatcher_phone":"0501112222","stops":[]}`))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
