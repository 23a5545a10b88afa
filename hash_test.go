package marrow

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestArgon2_Hash(t *testing.T) {
	h := Argon2()
	plaintext := []byte("password123")

	hash, err := h.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("Hash() = %q, want prefix $argon2id$", hash)
	}
}

func TestArgon2_DifferentSalts(t *testing.T) {
	h := Argon2()
	plaintext := []byte("password123")

	hash1, _ := h.Hash(plaintext)
	hash2, _ := h.Hash(plaintext)

	if hash1 == hash2 {
		t.Error("same plaintext should produce different hashes (random salt)")
	}
}

func TestArgon2WithParams(t *testing.T) {
	params := Argon2Params{
		Time:    2,
		Memory:  32 * 1024,
		Threads: 2,
		KeyLen:  16,
		SaltLen: 8,
	}
	h := Argon2WithParams(params)

	hash, err := h.Hash([]byte("test"))
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("Hash() = %q, want prefix $argon2id$", hash)
	}
}

func TestBcrypt_Hash(t *testing.T) {
	h := BcryptWithCost(BcryptMinCost)
	plaintext := []byte("password123")

	hash, err := h.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), plaintext); err != nil {
		t.Errorf("CompareHashAndPassword() error: %v", err)
	}
}

func TestSHA256Hasher_Deterministic(t *testing.T) {
	h := SHA256Hasher()

	hash1, err := h.Hash([]byte("fingerprint"))
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	hash2, _ := h.Hash([]byte("fingerprint"))

	if hash1 != hash2 {
		t.Error("sha256 should be deterministic")
	}
	if len(hash1) != 64 {
		t.Errorf("Hash() length = %d, want 64 hex chars", len(hash1))
	}
}

func TestSHA512Hasher(t *testing.T) {
	h := SHA512Hasher()

	hash, err := h.Hash([]byte("fingerprint"))
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if len(hash) != 128 {
		t.Errorf("Hash() length = %d, want 128 hex chars", len(hash))
	}
}

func TestDefaultHashers(t *testing.T) {
	for _, algo := range []HashAlgo{HashArgon2, HashBcrypt, HashSHA256, HashSHA512} {
		if _, ok := defaultHashers[algo]; !ok {
			t.Errorf("defaultHashers missing %q", algo)
		}
	}
}
