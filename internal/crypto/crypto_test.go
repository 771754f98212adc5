package crypto

import "testing"

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sealed, err := Encrypt(testKey, "sk-ant-secret-key")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == "sk-ant-secret-key" {
		t.Fatal("ciphertext equals plaintext")
	}
	opened, err := Decrypt(testKey, sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if opened != "sk-ant-secret-key" {
		t.Fatalf("got %q", opened)
	}
}

func TestEncryptRejectsShortKey(t *testing.T) {
	if _, err := Encrypt("too-short", "value"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	sealed, err := Encrypt(testKey, "value")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	other := "ffffffffffffffffffffffffffffffff"
	if _, err := Decrypt(other, sealed); err == nil {
		t.Fatal("expected error for wrong key")
	}
}

func TestDecryptTruncated(t *testing.T) {
	if _, err := Decrypt(testKey, "YWJj"); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}
