package processor

import (
	"context"

	"redditactions/pkg/models"
)

// Source is the platform saved items are read from and unsaved on
type Source interface {
	Authenticate(ctx context.Context) error
	Saved() models.ItemIterator
	Unsave(ctx context.Context, item models.SavedItem) error
}

// Destination is the read-later service items are forwarded to
type Destination interface {
	Authenticate(ctx context.Context) error
	Add(ctx context.Context, item models.SavedItem) error
}
