package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(CodeStorageUnavailable, "storage is unavailable", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}

	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error via errors.As")
	}
	if de.Code != CodeStorageUnavailable {
		t.Fatalf("unexpected code %s", de.Code)
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{NewValidationError("bad input"), CodeValidation},
		{NewNotFoundError("question", "q-1"), CodeNotFound},
		{NewForbiddenError("nope"), CodeForbidden},
		{NewInvalidCredentialsError(), CodeInvalidCredentials},
		{fmt.Errorf("wrapped: %w", NewNotFoundError("answer", "a-1")), CodeNotFound},
		{errors.New("something else"), CodeStorageUnavailable},
	}

	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.code {
			t.Errorf("CodeOf(%v) = %s, want %s", tc.err, got, tc.code)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := NewNotFoundError("user", "u-1")
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected IsCode to match NOT_FOUND")
	}
	if IsCode(err, CodeForbidden) {
		t.Fatalf("expected IsCode to reject a different code")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatalf("expected IsCode(nil) to be false")
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFoundError("question", "q-42")
	if err.Message == "" {
		t.Fatalf("expected a message")
	}
	if err.Error() == "" {
		t.Fatalf("expected Error() output")
	}
}
