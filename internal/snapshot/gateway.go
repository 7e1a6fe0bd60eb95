// Package snapshot persists the full store state as a single JSON document.
package snapshot

import (
	"context"
	"errors"

	"github.com/fairyhunter13/retail-checkout-service/internal/model"
)

// Gateway is the durable store the transaction engine commits through.
// Save must be atomic from the engine's point of view: either the whole
// snapshot replaces the previous one or the previous one stays readable.
type Gateway interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
}

// ErrCorrupt marks a snapshot that parsed or validated wrong: unknown or
// missing fields, negative quantities, or a loyalty/orders mismatch.
// Distinguished from plain IO failure, which is retryable.
var ErrCorrupt = errors.New("corrupt snapshot")
