package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	e := NewGeocoder("TooManyRequests", 429, "rate limited")
	want := "geocoder: TooManyRequests (http 429): rate limited"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestWrapUnknownPassthrough(t *testing.T) {
	orig := NewHostAPI("RetrieveFailed", 503, "retrieve-user-settings", "boom", nil)
	wrapped := WrapUnknown(fmt.Errorf("outer: %w", orig))
	if wrapped != orig {
		t.Fatalf("expected wrapped APIError to pass through, got %+v", wrapped)
	}
}

func TestWrapUnknownGeneric(t *testing.T) {
	wrapped := WrapUnknown(errors.New("connection reset"))
	if wrapped.Source != SourceUnknown || wrapped.Code != CodeUnknown {
		t.Fatalf("unexpected wrap: %+v", wrapped)
	}
	if wrapped.Message != "connection reset" {
		t.Errorf("message = %q", wrapped.Message)
	}
}

func TestWrapUnknownNil(t *testing.T) {
	if WrapUnknown(nil) != nil {
		t.Fatal("WrapUnknown(nil) should be nil")
	}
}

func TestIsSource(t *testing.T) {
	err := fmt.Errorf("call failed: %w", NewGeocoder("BadRequest", 400, "bad query"))
	if !IsSource(err, SourceGeocoder) {
		t.Error("expected geocoder source")
	}
	if IsSource(err, SourceHostAPI) {
		t.Error("did not expect hostapi source")
	}
	if IsSource(errors.New("plain"), SourceGeocoder) {
		t.Error("plain error should not match")
	}
}
