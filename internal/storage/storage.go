package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage persists session snapshots between process runs.

// Store keeps one serialized session snapshot per account.
type Store interface {
	Close() error
	SaveSession(account string, snapshot []byte) error
	// LoadSession returns the stored snapshot and whether one exists.
	LoadSession(account string) ([]byte, bool, error)
	DeleteSession(account string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	// Sessions older than this are treated as stale: the remote side has
	// long since invalidated their tokens, so restoring them only invites
	// challenge flows.
	defaultSessionTTL      = 90 * 24 * time.Hour
	defaultCleanupInterval = 24 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                             { return nil }
func (noopStore) SaveSession(string, []byte) error         { return nil }
func (noopStore) LoadSession(string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) DeleteSession(string) error               { return nil }
