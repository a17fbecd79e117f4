package ai

import "errors"

// ErrorClass is the three-way gateway failure classification callers act on.
type ErrorClass int

const (
	ClassGeneric ErrorClass = iota
	ClassRateLimit
	ClassAuth
)

func (c ErrorClass) String() string {
	switch c {
	case ClassRateLimit:
		return "rate_limit"
	case ClassAuth:
		return "auth"
	}
	return "generic"
}

// Classify reduces any gateway error to an ErrorClass.
func Classify(err error) ErrorClass {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return ClassRateLimit
	}
	var ae *AuthError
	if errors.As(err, &ae) || errors.Is(err, ErrMissingAPIKey) {
		return ClassAuth
	}
	return ClassGeneric
}

// UserMessage is the fixed user-facing text for an error class.
func UserMessage(c ErrorClass) string {
	switch c {
	case ClassRateLimit:
		return "AI service quota exceeded. Please try again later."
	case ClassAuth:
		return "AI service configuration error. Please check API key."
	}
	return "Failed to get response from AI service."
}
