package reservation

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedIntent is returned when an external reference cannot be trusted
// or parsed. Callers treat it as terminal for the callback.
var ErrMalformedIntent = errors.New("malformed reservation intent")

var encoding = base64.RawURLEncoding

// Codec signs intents into external references and verifies them on the way back.
// Reference format: base64url(json) "." base64url(HMAC-SHA256(json part)).
type Codec struct {
	key []byte
}

// NewCodec creates a codec keyed with the server-held signing secret
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("intent signing secret is required")
	}
	return &Codec{key: []byte(secret)}, nil
}

// Encode validates the intent and serializes it into a signed reference
func (c *Codec) Encode(intent Intent) (string, error) {
	if err := intent.Validate(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(intent)
	if err != nil {
		return "", fmt.Errorf("failed to marshal intent: %w", err)
	}

	payload := encoding.EncodeToString(raw)
	return payload + "." + encoding.EncodeToString(c.sign(payload)), nil
}

// Decode verifies the reference signature and parses the intent back
func (c *Codec) Decode(reference string) (Intent, error) {
	payload, signature, ok := strings.Cut(reference, ".")
	if !ok || payload == "" || signature == "" {
		return Intent{}, fmt.Errorf("%w: missing signature", ErrMalformedIntent)
	}

	mac, err := encoding.DecodeString(signature)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: bad signature encoding", ErrMalformedIntent)
	}
	if !hmac.Equal(mac, c.sign(payload)) {
		return Intent{}, fmt.Errorf("%w: signature mismatch", ErrMalformedIntent)
	}

	raw, err := encoding.DecodeString(payload)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: bad payload encoding", ErrMalformedIntent)
	}

	var intent Intent
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&intent); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrMalformedIntent, err)
	}

	if err := intent.Validate(); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrMalformedIntent, err)
	}

	return intent, nil
}

func (c *Codec) sign(payload string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
