package auth

import "testing"

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher()

	digest, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "s3cret!" {
		t.Fatalf("digest must differ from plaintext")
	}
	if !h.Verify("s3cret!", digest) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify("wrong", digest) {
		t.Fatalf("expected mismatch to fail")
	}
	if h.Verify("s3cret!", "not-a-bcrypt-digest") {
		t.Fatalf("expected malformed digest to fail")
	}

	again, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if again == digest {
		t.Fatalf("expected distinct salts")
	}
}
