package generator

import (
	"fmt"
	"strings"
)

// Error codes carried by GenerationError.
const (
	CodeInvalidPrompt       = "INVALID_PROMPT"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeProviderFailed      = "PROVIDER_FAILED"
	CodeInvalidDraft        = "INVALID_DRAFT"
)

// GenerationError represents a failure to turn a prompt into assumptions.
type GenerationError struct {
	Code    string
	Message string
	Details []string
	Err     error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Details, "; "))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
