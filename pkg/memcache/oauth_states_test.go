package mem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOAuthStates_ConsumeIsSingleUse(t *testing.T) {
	s := NewOAuthStates()
	s.Set("abc", "gateway", time.Minute)

	p, ok := s.Peek("abc")
	assert.True(t, ok)
	assert.Equal(t, "gateway", p)

	assert.Equal(t, "gateway", s.Consume("abc"))
	assert.Equal(t, "", s.Consume("abc"))
}

func TestOAuthStates_Expired(t *testing.T) {
	s := NewOAuthStates()
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Set("abc", "gateway", time.Minute)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok := s.Peek("abc")
	assert.False(t, ok)
	assert.Equal(t, "", s.Consume("abc"))
}

func TestOAuthStates_SetPrunesExpired(t *testing.T) {
	s := NewOAuthStates()
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Set("old", "gateway", time.Second)

	s.now = func() time.Time { return now.Add(time.Minute) }
	s.Set("new", "gateway", time.Minute)

	assert.Len(t, s.data, 1)
}
