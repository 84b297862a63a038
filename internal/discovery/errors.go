package discovery

import "fmt"

// ExtractError represents a failure extracting links from HTML.
type ExtractError struct {
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction error: %s", e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}
