package crypto

import (
	"strings"
	"testing"
)

func TestRandomPassword(t *testing.T) {
	for _, length := range []int{MinRandomPasswordLength, 16, 64} {
		pw, err := RandomPassword(length)
		if err != nil {
			t.Fatalf("RandomPassword(%d) unexpected error: %v", length, err)
		}
		if len(pw) != length {
			t.Errorf("len = %d, want %d", len(pw), length)
		}

		for _, class := range []string{upperChars, lowerChars, digitChars, symbolChars} {
			if !strings.ContainsAny(pw, class) {
				t.Errorf("RandomPassword(%d) = %q has no character from %q", length, pw, class)
			}
		}
		if strings.ContainsAny(pw, "0O1lI") {
			t.Errorf("RandomPassword(%d) = %q contains a look-alike character", length, pw)
		}
	}
}

func TestRandomPassword_TooShort(t *testing.T) {
	if _, err := RandomPassword(MinRandomPasswordLength - 1); err != ErrPasswordLength {
		t.Errorf("RandomPassword() error = %v, want %v", err, ErrPasswordLength)
	}
}

func TestRandomPassword_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		pw, err := RandomPassword(16)
		if err != nil {
			t.Fatalf("RandomPassword() unexpected error: %v", err)
		}
		if seen[pw] {
			t.Fatalf("duplicate password generated: %s", pw)
		}
		seen[pw] = true
	}
}
