package visit

import "context"

// Repository persists visits. The production implementation posts to the
// external scripting endpoint, which owns all visit storage.
type Repository interface {
	Save(ctx context.Context, v *Visit) error
}
