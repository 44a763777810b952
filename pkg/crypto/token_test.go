package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

func TestGenerateToken_CreateToken(t *testing.T) {
	tests := []struct {
		name           string
		byteLength     int
		expectedLength int
	}{
		{name: "zero uses default", byteLength: 0, expectedLength: DefaultTokenLength},
		{name: "negative uses default", byteLength: -10, expectedLength: DefaultTokenLength},
		{name: "16 bytes", byteLength: 16, expectedLength: 16},
		{name: "64 bytes", byteLength: 64, expectedLength: 64},
		{name: "1 byte minimum", byteLength: 1, expectedLength: 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			token, err := generateToken(test.byteLength)

			// Assert
			if err != nil {
				t.Fatalf("generateToken() error = %v", err)
			}
			decoded, err := base64.RawURLEncoding.DecodeString(token)
			if err != nil {
				t.Fatalf("failed to decode token: %v", err)
			}
			if len(decoded) != test.expectedLength {
				t.Errorf("token length = %d bytes, want %d", len(decoded), test.expectedLength)
			}
			if strings.ContainsAny(token, "+/= ") {
				t.Errorf("token contains URL-unsafe characters: %q", token)
			}
		})
	}
}

func TestTokenHasher_Generate_Unique(t *testing.T) {
	// Arrange
	h := NewTokenHasher("01234567890123456789012345678901")
	seen := make(map[string]bool)

	// Act & Assert
	for i := 0; i < 500; i++ {
		pair, err := h.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[pair.Token] {
			t.Fatalf("duplicate token at iteration %d", i)
		}
		seen[pair.Token] = true
	}
}

func TestTokenHasher_Generate_TooManyArgs(t *testing.T) {
	_, err := NewTokenHasher("").Generate(16, 32)
	if err != ErrTooManyArgs {
		t.Fatalf("Generate() error = %v, want ErrTooManyArgs", err)
	}
}

// Requirement: the stored hash is keyed by the server secret.
func TestTokenHasher_Hash(t *testing.T) {
	plain := sha256.Sum256([]byte("token"))

	tests := []struct {
		name      string
		secret    string
		wantPlain bool
	}{
		{name: "no secret falls back to sha256", secret: "", wantPlain: true},
		{name: "secret uses hmac", secret: "server-secret", wantPlain: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := NewTokenHasher(test.secret).Hash("token")

			if len(got) != 64 {
				t.Errorf("Hash() length = %d, want 64 hex chars", len(got))
			}
			if (got == hex.EncodeToString(plain[:])) != test.wantPlain {
				t.Errorf("Hash() = %q, plain sha256 expected = %v", got, test.wantPlain)
			}
		})
	}

	if NewTokenHasher("a").Hash("token") == NewTokenHasher("b").Hash("token") {
		t.Error("different secrets should produce different hashes")
	}
}

func TestTokenHasher_Verify(t *testing.T) {
	h := NewTokenHasher("server-secret")
	pair, err := h.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		hash    string
		wantOk  bool
		wantErr bool
	}{
		{name: "valid pair", token: pair.Token, hash: pair.Hash, wantOk: true},
		{name: "wrong token", token: "other", hash: pair.Hash, wantOk: false},
		{name: "other secret", token: pair.Token, hash: NewTokenHasher("x").Hash(pair.Token), wantOk: false},
		{name: "empty token", token: "", hash: pair.Hash, wantErr: true},
		{name: "empty hash", token: pair.Token, hash: "", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := h.Verify(test.token, test.hash)
			if (err != nil) != test.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, test.wantErr)
			}
			if ok != test.wantOk {
				t.Errorf("Verify() = %v, want %v", ok, test.wantOk)
			}
		})
	}
}
