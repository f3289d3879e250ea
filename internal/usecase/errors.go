package usecase

import "fmt"

// ValidationError reports missing or malformed caller input. Handlers
// map it to a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
