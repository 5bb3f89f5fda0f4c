package auth

import "testing"

func TestHashAndVerifySecret(t *testing.T) {
	hashed, err := HashSecret("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifySecret(hashed, "correct horse") {
		t.Fatal("expected secret to verify")
	}
	if VerifySecret(hashed, "wrong horse") {
		t.Fatal("expected wrong secret to fail")
	}
	if VerifySecret("", "correct horse") {
		t.Fatal("empty hash must never verify")
	}
}

func TestHashSecretRejectsShort(t *testing.T) {
	if _, err := HashSecret("short"); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestVerifier(t *testing.T) {
	hashed, err := HashSecret("hashed-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name      string
		plain     string
		hash      string
		candidate string
		want      bool
	}{
		{name: "plain match", plain: "plain-secret", candidate: "plain-secret", want: true},
		{name: "plain mismatch", plain: "plain-secret", candidate: "other", want: false},
		{name: "hash match", hash: hashed, candidate: "hashed-secret", want: true},
		{name: "either form", plain: "plain-secret", hash: hashed, candidate: "hashed-secret", want: true},
		{name: "empty candidate", plain: "plain-secret", candidate: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(tt.plain, tt.hash)
			if err != nil {
				t.Fatalf("new verifier: %v", err)
			}
			if got := v.Verify(tt.candidate); got != tt.want {
				t.Fatalf("Verify(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier("", "  "); err == nil {
		t.Fatal("expected error without any secret")
	}
	if _, err := NewVerifier("", "not-a-bcrypt-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
