package push

import (
	"regexp"
	"strings"

	"remindly/config"
)

var (
	// FCM registration tokens are base64url-ish with colon separators.
	tokenAlphabet = regexp.MustCompile(`^[A-Za-z0-9:_-]+$`)
	topicPattern  = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Validator classifies a token string as well-formed for the push provider.
// Pure function of (token, mode); it never touches storage or the network.
type Validator struct {
	MinLen        int
	MaxLen        int
	Sandbox       bool
	SandboxPrefix string
}

// NewValidatorFromConfig builds a Validator from the loaded app config. The
// length bounds are provider-specific and deliberately not hardcoded.
func NewValidatorFromConfig() *Validator {
	return &Validator{
		MinLen:        config.AppConfig.PushTokenMinLen,
		MaxLen:        config.AppConfig.PushTokenMaxLen,
		Sandbox:       config.AppConfig.PushSandboxMode,
		SandboxPrefix: config.AppConfig.PushSandboxPrefix,
	}
}

// WellFormed reports whether the token is acceptable to persist or send to.
// In sandbox mode any non-empty token carrying the sandbox prefix passes.
func (v *Validator) WellFormed(token string) bool {
	if token == "" {
		return false
	}
	if v.Sandbox && v.SandboxPrefix != "" && strings.HasPrefix(token, v.SandboxPrefix) {
		return true
	}
	if len(token) < v.MinLen || len(token) > v.MaxLen {
		return false
	}
	return tokenAlphabet.MatchString(token)
}

// Filter returns the subset of tokens that are well-formed.
func (v *Validator) Filter(tokens []string) []string {
	valid := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if v.WellFormed(t) {
			valid = append(valid, t)
		}
	}
	return valid
}

// ValidTopic reports whether a topic name uses only letters, digits, dashes,
// underscores and dots.
func ValidTopic(topic string) bool {
	return topic != "" && topicPattern.MatchString(topic)
}
