package docs

import "fmt"

// ValidationError reports a documentation URL that cannot be read.
type ValidationError struct {
	URL    string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid URL: %s. %s", e.URL, e.Reason)
}
