package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every lookup failure raised while composing a quote.
	ErrNotFound = errors.New("pricing: not found")
	// ErrInvalidRequest is returned when a sell request is structurally invalid.
	ErrInvalidRequest = errors.New("pricing: invalid request")
)

// Entity kinds reported by NotFoundError.
const (
	KindRate     = "rate"
	KindOffer    = "offer"
	KindContract = "contract"
)

// NotFoundError reports a catalog reference that could not be resolved.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pricing: %s %q not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
