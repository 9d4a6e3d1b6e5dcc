// Package repository stores scored rows of a batch run.
package repository

import (
	"context"

	"github.com/okian/dscore/internal/domain/types"
)

// Store provides read/write access to scored rows keyed by file id.
type Store interface {
	// Put inserts or replaces the row for its file id.
	Put(ctx context.Context, row types.Row) error

	// List returns all rows ordered by file id.
	List(ctx context.Context) ([]types.Row, error)

	// Count returns the number of rows held.
	Count(ctx context.Context) int
}
