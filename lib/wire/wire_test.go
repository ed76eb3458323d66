package wire

import "testing"

func TestNewCodec(t *testing.T) {
	if _, err := NewCodec([]byte("short")); err != nil {
		t.Fatalf("NewCodec with short key failed: %v", err)
	}
	if _, err := NewCodec([]byte("this-is-a-32-byte-key-for-aes!!!")); err != nil {
		t.Fatalf("NewCodec with 32-byte key failed: %v", err)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	c, err := NewCodec([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	original := ResumeToken{SessionID: "sess-123", IssuedAt: 1700000000}
	encoded, err := c.Sign(original)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if len(encoded) == 0 {
		t.Fatal("Sign returned empty string")
	}

	decoded, err := c.Verify(encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID = %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.IssuedAt != original.IssuedAt {
		t.Errorf("IssuedAt = %d, want %d", decoded.IssuedAt, original.IssuedAt)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	c, err := NewCodec([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	original := ResumeToken{SessionID: "sess-456", IssuedAt: 1700000001}
	encoded, err := c.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decoded, err := c.Open(encoded)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID = %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.IssuedAt != original.IssuedAt {
		t.Errorf("IssuedAt = %d, want %d", decoded.IssuedAt, original.IssuedAt)
	}
}

func TestEncryptedRoundTripCarriesSnapshot(t *testing.T) {
	c, err := NewCodec([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	original := ResumeToken{SessionID: "sess-789", IssuedAt: 1700000002, Snapshot: []byte{0x81, 0x01, 0x02}}
	encoded, err := c.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decoded, err := c.Open(encoded)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(decoded.Snapshot) != string(original.Snapshot) {
		t.Errorf("Snapshot = %v, want %v", decoded.Snapshot, original.Snapshot)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	c, err := NewCodec([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	encoded, err := c.Sign(ResumeToken{SessionID: "s", IssuedAt: 1})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	tampered := encoded[:len(encoded)-2] + "XX"

	if _, err := c.Verify(tampered); err != ErrInvalidToken {
		t.Errorf("Verify(tampered) error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	c, err := NewCodec([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	encoded, err := c.Encrypt(ResumeToken{SessionID: "s", IssuedAt: 1})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	tampered := encoded[:len(encoded)-2] + "XX"

	if _, err := c.Open(tampered); err != ErrInvalidToken {
		t.Errorf("Open(tampered) error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestVerifyRejectsMissingSeparator(t *testing.T) {
	c, err := NewCodec([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	if _, err := c.Verify("nodothere"); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestDifferentKeysCannotVerify(t *testing.T) {
	c1, _ := NewCodec([]byte("key-one"))
	c2, _ := NewCodec([]byte("key-two"))

	encoded, err := c1.Sign(ResumeToken{SessionID: "s", IssuedAt: 1})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := c2.Verify(encoded); err == nil {
		t.Error("Verify with a different key should fail")
	}
}

func TestChangeMapRoundTrip(t *testing.T) {
	original := map[string]any{
		"0":      "hello",
		"static": []string{"<p>", "</p>"},
	}

	data, err := EncodeChangeMap(original)
	if err != nil {
		t.Fatalf("EncodeChangeMap failed: %v", err)
	}

	decoded, err := DecodeChangeMap(data)
	if err != nil {
		t.Fatalf("DecodeChangeMap failed: %v", err)
	}
	if decoded["0"] != "hello" {
		t.Errorf("decoded[\"0\"] = %v, want %q", decoded["0"], "hello")
	}
}
