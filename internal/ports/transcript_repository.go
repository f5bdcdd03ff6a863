package ports

import (
	"context"

	"github.com/rwslabs/oneshot/internal/domain"
)

// TranscriptRepository persists the record of the most recent exchange.
type TranscriptRepository interface {
	// Load retrieves the last saved exchange.
	// Returns an empty exchange and nil error if none was saved.
	Load(ctx context.Context) (domain.Exchange, error)

	// Save replaces the stored exchange atomically.
	Save(ctx context.Context, exchange domain.Exchange) error
}
