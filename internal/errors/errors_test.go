package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

// TestErrorFormatting checks the message layout with and without a cause
func TestErrorFormatting(t *testing.T) {
	err := New(TypeInput, "bad request")
	if got := err.Error(); got != "[INPUT_ERROR] bad request" {
		t.Errorf("unexpected message: %s", got)
	}

	wrapped := Catalog("read catalog", fmt.Errorf("disk gone"))
	if got := wrapped.Error(); got != "[CATALOG_ERROR] read catalog: disk gone" {
		t.Errorf("unexpected message: %s", got)
	}
}

// TestIsTypeThroughWrapping verifies IsType sees domain errors wrapped by fmt.Errorf
func TestIsTypeThroughWrapping(t *testing.T) {
	inner := InvalidDuration(0)
	outer := fmt.Errorf("allocate: %w", inner)

	if !IsType(outer, TypeInvalidDuration) {
		t.Fatal("expected INVALID_DURATION through wrapping")
	}
	if IsType(outer, TypeInvalidPrice) {
		t.Error("did not expect INVALID_PRICE")
	}
	if TypeOf(outer) != TypeInvalidDuration {
		t.Errorf("TypeOf = %s", TypeOf(outer))
	}
	if TypeOf(stderrors.New("plain")) != "" {
		t.Error("plain errors have no type")
	}
}

// TestUnknownInstanceTypeContext checks the context carried for catalog errors
func TestUnknownInstanceTypeContext(t *testing.T) {
	err := UnknownInstanceType("us-east", "3xlarge")

	if err.Context["region"] != "us-east" || err.Context["type"] != "3xlarge" {
		t.Errorf("unexpected context: %v", err.Context)
	}
	if !strings.Contains(err.Error(), "3xlarge") {
		t.Errorf("message should name the type: %s", err.Error())
	}
}

// TestUnwrap verifies the cause is reachable with errors.Is
func TestUnwrap(t *testing.T) {
	cause := stderrors.New("throttled")
	err := Wrapf(TypeNetwork, cause, "fetch %s", "us-east-1")

	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if !err.Is(TypeNetwork) {
		t.Error("expected NETWORK_ERROR")
	}
}
