package googleauth

import "fmt"

// ProviderError wraps any failure talking to the identity provider, whether
// transport-level or an error status from the token endpoint.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("googleauth: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("googleauth: %s: provider returned status %d", e.Op, e.StatusCode)
}

func (e *ProviderError) Unwrap() error { return e.Err }
