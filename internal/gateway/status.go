package gateway

import "strings"

// Outcome is the closed set of interpretations of a gateway status string.
type Outcome int

const (
	Indeterminate Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "indeterminate"
	}
}

var successTokens = map[string]struct{}{
	"succeeded":  {},
	"success":    {},
	"successful": {},
	"approved":   {},
	"captured":   {},
	"completed":  {},
	"authorized": {},
	"paid":       {},
}

var failedTokens = map[string]struct{}{
	"failed":    {},
	"failure":   {},
	"declined":  {},
	"cancelled": {},
	"canceled":  {},
	"rejected":  {},
	"expired":   {},
}

// ParseStatus maps a free-text gateway status onto an Outcome. Unknown
// tokens are Indeterminate, never success.
func ParseStatus(status string) Outcome {
	token := strings.ToLower(strings.TrimSpace(status))
	if _, ok := successTokens[token]; ok {
		return Succeeded
	}
	if _, ok := failedTokens[token]; ok {
		return Failed
	}
	return Indeterminate
}
