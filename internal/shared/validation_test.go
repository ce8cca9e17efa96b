package shared

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type signupForm struct {
	Email    string  `json:"email" validate:"required,address"`
	Password string  `json:"password" validate:"required,min=6"`
	Nick     *string `json:"nick" validate:"omitnil,min=1"`
}

var signupMessages = Messages{
	"email.required":    "Email is required",
	"email.address":     "Invalid email format",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
	"nick.type":         "Nick must be a string",
}

func TestValidateReportsFirstFailure(t *testing.T) {
	empty := ""
	cases := []struct {
		name string
		form signupForm
		want string
	}{
		{"missing email", signupForm{Password: "secret1"}, "Email is required"},
		{"bad email", signupForm{Email: "a@b", Password: "secret1"}, "Invalid email format"},
		{"email with space", signupForm{Email: "a b@c.io", Password: "secret1"}, "Invalid email format"},
		{"missing password", signupForm{Email: "a@b.io"}, "Password is required"},
		{"short password", signupForm{Email: "a@b.io", Password: "12345"}, "Password must be at least 6 characters"},
		{"unmapped rule", signupForm{Email: "a@b.io", Password: "secret1", Nick: &empty}, "Invalid nick"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.form, signupMessages)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	if err := Validate(signupForm{Email: "ops@zerogrid.io", Password: "secret1"}, signupMessages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeErrorUsesFieldMessage(t *testing.T) {
	var form signupForm
	err := json.NewDecoder(strings.NewReader(`{"email":42}`)).Decode(&form)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	got := DecodeError(err, signupMessages)
	if got.Error() != "Email is required" {
		t.Fatalf("expected required message, got %q", got.Error())
	}

	err = json.NewDecoder(strings.NewReader(`{"nick":true}`)).Decode(&form)
	if got := DecodeError(err, signupMessages); got.Error() != "Nick must be a string" {
		t.Fatalf("expected type message, got %q", got.Error())
	}

	err = json.NewDecoder(strings.NewReader(`{`)).Decode(&form)
	if got := DecodeError(err, signupMessages); got.Error() != "Invalid request body" {
		t.Fatalf("expected generic message, got %q", got.Error())
	}
}

func TestErrorUnwrapsToKind(t *testing.T) {
	err := Forbidden("Not authorized to access this issue")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden kind")
	}
	msg, ok := Message(err)
	if !ok || msg != "Not authorized to access this issue" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, ok := Message(errors.New("boom")); ok {
		t.Fatalf("plain errors carry no client message")
	}
}
