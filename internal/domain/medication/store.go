package medication

import "context"

// Store persists medication records. Implementations must treat codes as
// case-insensitive unique keys, serialize concurrent writes to the same
// code, and return FindByName results in insertion order.
type Store interface {
	// Put inserts a new record. Returns CodeConflict if the code exists.
	Put(ctx context.Context, rec Record) (Record, error)
	// Update replaces the mutable fields of an existing record. The code
	// is immutable. Returns CodeNotFound if the record does not exist.
	Update(ctx context.Context, rec Record) (Record, error)
	// Delete removes a record. Returns CodeNotFound if absent.
	Delete(ctx context.Context, code string) (Record, error)
	// GetByCode retrieves a record by code, case-insensitively.
	GetByCode(ctx context.Context, code string) (Record, error)
	// FindByName returns all records whose name matches case-insensitively,
	// oldest first.
	FindByName(ctx context.Context, name string) ([]Record, error)
}
