package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"storefront/pkg/utils"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("whsec_test")
	body := []byte(`{"event_type":"payment.succeeded","payment_id":"pay_1"}`)

	sig := s.Sign(body)
	assert.NoError(t, s.Verify(body, sig))
	assert.NoError(t, s.Verify(body, "sha256="+sig))
	assert.NoError(t, s.Verify(body, " "+sig+" "))
}

func TestSigner_Rejects(t *testing.T) {
	s := NewSigner("whsec_test")
	body := []byte(`{"event_type":"payment.succeeded","payment_id":"pay_1"}`)
	valid := s.Sign(body)

	tests := []struct {
		name string
		body []byte
		sig  string
	}{
		{"missing", body, ""},
		{"not hex", body, "zzzz"},
		{"other secret", body, NewSigner("other").Sign(body)},
		{"tampered body", append([]byte(`{"x":1}`), body...), valid},
		{"one byte appended", append(append([]byte{}, body...), ' '), valid},
		{"truncated signature", body, valid[:len(valid)-2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Verify(tt.body, tt.sig), utils.ErrInvalidSignature)
		})
	}
}

func TestSigner_EmptySecretNeverVerifies(t *testing.T) {
	s := NewSigner("")
	body := []byte(`{}`)
	assert.ErrorIs(t, s.Verify(body, s.Sign(body)), utils.ErrInvalidSignature)
}
