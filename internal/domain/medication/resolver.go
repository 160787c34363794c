package medication

import (
	"context"
	"strings"
)

// Resolver resolves a client lookup (by code and/or name) against the store.
//
// Code takes precedence when both are supplied. A name that matches several
// records resolves to the oldest match by default; with Strict set the
// lookup fails with AmbiguousQuery instead.
type Resolver struct {
	store Store
	// Strict rejects name lookups that match more than one record.
	Strict bool
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve finds the record for a code/name query.
func (r *Resolver) Resolve(ctx context.Context, code, name string) (Record, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if code == "" && name == "" {
		return Record{}, InvalidArgumentf("either code or name must be provided")
	}

	if code != "" {
		return r.store.GetByCode(ctx, code)
	}

	matches, err := r.store.FindByName(ctx, name)
	if err != nil {
		return Record{}, err
	}
	switch {
	case len(matches) == 0:
		return Record{}, NewError(CodeNotFound, "medication not found", nil)
	case len(matches) > 1 && r.Strict:
		return Record{}, NewError(CodeAmbiguousQuery, "multiple medications share this name, query by code instead", nil)
	default:
		return matches[0], nil
	}
}
