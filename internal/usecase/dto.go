package usecase

import "strings"

// SimulateReplyInput is the operator-facing request body for feeding a
// reply through the deterministic interpreter.
type SimulateReplyInput struct {
	Message string `json:"message"`
}

func (i SimulateReplyInput) Validate() error {
	if strings.TrimSpace(i.Message) == "" {
		return ValidationError{Field: "message", Message: "is required"}
	}
	return nil
}
