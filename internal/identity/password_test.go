package identity

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("pw123", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("pw124", hash) {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestPasswordHashIsSalted(t *testing.T) {
	first, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if string(first) == string(second) {
		t.Fatal("expected distinct hashes for the same password")
	}
}
