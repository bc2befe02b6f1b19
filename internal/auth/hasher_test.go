package auth

import (
	"strings"
	"testing"
)

// ラウンドトリップ: hash(p)はverify(p, ·)で必ず受理される。
func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if digest == "" || digest == "secret1" {
		t.Fatalf("digest = %q, want non-empty hash distinct from plaintext", digest)
	}

	if !h.Verify("secret1", digest) {
		t.Error("Verify(plaintext, hash(plaintext)) = false, want true")
	}
}

func TestBcryptHasher_WrongPassword_ReturnsFalse(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if h.Verify("secret2", digest) {
		t.Error("Verify with wrong password = true, want false")
	}
}

// 破損したダイジェストはエラーではなくfalseを返す。
func TestBcryptHasher_CorruptedDigest_ReturnsFalse(t *testing.T) {
	h := NewBcryptHasher()

	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty digest", digest: ""},
		{name: "not a bcrypt digest", digest: "plainly-not-a-hash"},
		{name: "truncated digest", digest: "$2a$12$abc"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if h.Verify("secret1", test.digest) {
				t.Errorf("Verify against corrupted digest = true, want false")
			}
		})
	}
}

// 同一平文でもソルトにより毎回異なるダイジェストになる。
func TestBcryptHasher_DigestsAreSalted(t *testing.T) {
	h := NewBcryptHasher()

	d1, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	d2, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if d1 == d2 {
		t.Error("two hashes of the same plaintext are identical, want salted digests")
	}
}

// ダイジェストは固定ワークファクタを自己記述する。
func TestBcryptHasher_DigestEncodesWorkFactor(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if !strings.Contains(digest, "$12$") {
		t.Errorf("digest = %q, should encode cost %d", digest, hashCost)
	}
}
