package operator

import (
	"context"
	"errors"
)

// ErrNotFound is returned for usernames with no stored account.
var ErrNotFound = errors.New("operator not found")

// Repository persists operator accounts keyed by username.
type Repository interface {
	Put(ctx context.Context, op *Operator) error
	Get(ctx context.Context, username string) (*Operator, error)
	List(ctx context.Context) ([]Operator, error)
}
