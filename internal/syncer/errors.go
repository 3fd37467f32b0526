package syncer

import "fmt"

// ValidationError reports a product that cannot be sent to the store. It is
// raised before any network call.
type ValidationError struct {
	SKU    string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.SKU == "" {
		return fmt.Sprintf("invalid product: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid product %q: %s %s", e.SKU, e.Field, e.Reason)
}
