// Package wire implements the encodings that cross the process boundary
// around an Engine: a signed/encrypted session-resume token, and a
// MessagePack codec for a change map, both patterned after the teacher's
// props encoder but built around this package's own payload types instead
// of generic encodable values.
package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ResumeToken identifies a session well enough for a reconnecting client to
// resume it without replaying a full render: the session id a transport
// layer assigned it, when this token was issued, and a
// MessagePack-encoded SessionState snapshot (see the root package's
// SessionState.Snapshot/RestoreSessionState) good enough to pick the
// render back up where it left off. There is no server-side session store
// in this design - the token is self-contained, which is why Snapshot is
// carried inside it rather than looked up by SessionID.
type ResumeToken struct {
	SessionID string `msgpack:"session_id"`
	IssuedAt  int64  `msgpack:"issued_at"`
	Snapshot  []byte `msgpack:"snapshot,omitempty"`
}

// ErrInvalidToken is returned by Verify/Open for any malformed,
// truncated, or tampered-with encoded string.
var ErrInvalidToken = errors.New("wire: invalid token")

// Codec signs or encrypts a ResumeToken for transmission to a client, and
// recovers it on the way back in. Signed mode (Sign/Verify) keeps the
// token's bytes visible but tamper-evident; encrypted mode (Encrypt/Open)
// makes them fully opaque. Both share one key.
type Codec struct {
	key []byte
	gcm cipher.AEAD
}

// NewCodec derives a Codec from key. Keys that are not exactly 32 bytes
// long are hashed to 32 bytes via SHA-256 - a caller handing in an
// application secret of any length gets a usable AES-256 key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		sum := sha256.Sum256(key)
		key = sum[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{key: key, gcm: gcm}, nil
}

// Sign returns a base64-encoded, HMAC-tagged token: visible to the client,
// but any edit to the payload invalidates the signature.
func (c *Codec) Sign(t ResumeToken) (string, error) {
	packed, err := msgpack.Marshal(t)
	if err != nil {
		return "", err
	}

	b64 := base64.RawURLEncoding.EncodeToString(packed)
	mac := hmac.New(sha256.New, c.key)
	mac.Write(packed)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
	return b64 + "." + sig, nil
}

// Verify recovers a token produced by Sign, rejecting anything whose
// signature does not match.
func (c *Codec) Verify(encoded string) (ResumeToken, error) {
	parts := strings.SplitN(encoded, ".", 2)
	if len(parts) != 2 {
		return ResumeToken{}, ErrInvalidToken
	}

	packed, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ResumeToken{}, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ResumeToken{}, ErrInvalidToken
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write(packed)
	expected := mac.Sum(nil)[:16]
	if !hmac.Equal(sig, expected) {
		return ResumeToken{}, ErrInvalidToken
	}

	var t ResumeToken
	if err := msgpack.Unmarshal(packed, &t); err != nil {
		return ResumeToken{}, ErrInvalidToken
	}
	return t, nil
}

// Encrypt returns a fully opaque, AES-256-GCM sealed token.
func (c *Codec) Encrypt(t ResumeToken) (string, error) {
	packed, err := msgpack.Marshal(t)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := c.gcm.Seal(nonce, nonce, packed, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Open recovers a token produced by Encrypt.
func (c *Codec) Open(encoded string) (ResumeToken, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return ResumeToken{}, ErrInvalidToken
	}
	if len(ciphertext) < c.gcm.NonceSize() {
		return ResumeToken{}, ErrInvalidToken
	}

	nonce := ciphertext[:c.gcm.NonceSize()]
	body := ciphertext[c.gcm.NonceSize():]
	packed, err := c.gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return ResumeToken{}, ErrInvalidToken
	}

	var t ResumeToken
	if err := msgpack.Unmarshal(packed, &t); err != nil {
		return ResumeToken{}, ErrInvalidToken
	}
	return t, nil
}

// EncodeChangeMap packs a change map as MessagePack, a more compact
// alternative to the JSON shape of §6 for transports that prefer a binary
// frame.
func EncodeChangeMap(v map[string]any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeChangeMap reverses EncodeChangeMap.
func DecodeChangeMap(data []byte) (map[string]any, error) {
	var v map[string]any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
