package directory

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means the dialed number is not assigned to any contractor.
	ErrNotFound = errors.New("directory: contractor not found")
	// ErrUnavailable means the directory backend could not be queried.
	ErrUnavailable = errors.New("directory: unavailable")
)

// Contractor is the subset of contractor profile data the pipeline needs.
type Contractor struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Resolver maps a dialed number to the contractor who owns it.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, dialed string) (Contractor, error)
}
