package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/munmentor/munmentor/internal/security"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "empty", password: "", wantErr: security.ErrPasswordTooShort},
		{name: "seven chars", password: "1234567", wantErr: security.ErrPasswordTooShort},
		{name: "exactly eight", password: "12345678", wantErr: nil},
		{name: "long", password: "longenough", wantErr: nil},
		{name: "eight runes multibyte", password: "pässwörd", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := security.ValidatePassword(tc.password)

			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tc.password, err, tc.wantErr)
			}
		})
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	const plain = "correct horse battery"

	h1, err := security.HashPassword(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	h2, err := security.HashPassword(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt missing")
	}

	if strings.Contains(h1, plain) {
		t.Error("hash embeds the plaintext password")
	}

	if err := security.CheckPassword(h1, plain); err != nil {
		t.Errorf("first hash does not verify: %v", err)
	}

	if err := security.CheckPassword(h2, plain); err != nil {
		t.Errorf("second hash does not verify: %v", err)
	}
}

func TestCheckPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("longenough")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if err := security.CheckPassword(hash, "wrongwrong"); err == nil {
		t.Error("wrong password verified")
	}
}
