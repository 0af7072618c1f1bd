package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("swordfish")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if hash == "swordfish" {
		t.Fatal("hash equals plaintext")
	}
	if !Verify("swordfish", hash) {
		t.Error("correct password rejected")
	}
	if Verify("Swordfish", hash) {
		t.Error("wrong password accepted")
	}
	if Verify("", hash) {
		t.Error("empty password accepted")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("swordfish")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := Hash("swordfish")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	c := HashToken("other-refresh-token")

	if a != b {
		t.Error("token hashing must be deterministic")
	}
	if a == c {
		t.Error("different tokens share a hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
	if a == "some-refresh-token" {
		t.Error("hash equals plaintext")
	}
}
