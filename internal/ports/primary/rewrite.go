package primary

import "context"

// RewriteService defines the primary port behind POST /api/mutate.
type RewriteService interface {
	// Mutate validates req and returns the rewritten sentence.
	Mutate(ctx context.Context, req MutateRequest) (string, error)
}

// MutateRequest carries the raw decoded request body. Stage is kept loosely
// typed so validation can accept numbers and numeric strings.
type MutateRequest struct {
	Text  any
	Stage any
}
