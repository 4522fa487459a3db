package storage

import (
	"context"
)

// Entry is a single key-value pair written by PutMany.
type Entry struct {
	Key   string
	Value string
}

// Storage defines the key-value persistence medium the catalog is saved to
type Storage interface {
	// Get returns the value stored under key.
	// ok is false when nothing was ever written under key.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// PutMany writes all entries as one unit: a concurrent Get never observes
	// some of them applied and others not.
	PutMany(ctx context.Context, entries []Entry) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
