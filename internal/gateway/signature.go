package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"storefront/pkg/utils"
)

// Signer signs and verifies webhook bodies with HMAC-SHA256 over the exact
// raw bytes. Signatures travel hex encoded, optionally prefixed "sha256=".
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(body []byte, signature string) error {
	if len(s.secret) == 0 {
		return utils.ErrInvalidSignature
	}
	sig := strings.TrimSpace(signature)
	sig = strings.TrimPrefix(sig, "sha256=")
	if sig == "" {
		return utils.ErrInvalidSignature
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return utils.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return utils.ErrInvalidSignature
	}
	return nil
}
