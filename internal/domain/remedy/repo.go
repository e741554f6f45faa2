package remedy

import "context"

type Repository interface {
	// Replace swaps in a freshly synced catalog wholesale.
	Replace(ctx context.Context, remedies []Remedy) error
	All(ctx context.Context) ([]Remedy, error)
	Count(ctx context.Context) (int, error)

	// SheetURL remembers the last export URL a sync actually used.
	SheetURL(ctx context.Context) (string, bool, error)
	SetSheetURL(ctx context.Context, url string) error
}
