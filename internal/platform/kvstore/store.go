// Package kvstore provides namespaced key-value persistence for small local
// state (the durable audit queue). Backends are pluggable: memory for tests,
// files for single-host deployments, SQLite for an embedded database.
package kvstore

import (
	"context"
	"fmt"
	"regexp"

	"miniminds/internal/sentinel"
)

// Error Contract:
// - Get returns sentinel.ErrNotFound when the key has never been set or was removed
// - Remove of a missing key is not an error
// - Invalid namespaces or keys return sentinel.ErrInvalidInput

// Backend is implemented by the concrete storage engines.
// Implementations must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Remove(ctx context.Context, namespace, key string) error
}

// Store is the capability handed to consumers: get/set/remove within one namespace.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

var validName = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

func validate(namespace, key string) error {
	if !validName.MatchString(namespace) {
		return fmt.Errorf("namespace %q: %w", namespace, sentinel.ErrInvalidInput)
	}
	if !validName.MatchString(key) {
		return fmt.Errorf("key %q: %w", key, sentinel.ErrInvalidInput)
	}
	return nil
}

// Scoped binds a backend to one namespace.
type Scoped struct {
	backend   Backend
	namespace string
}

// Scope returns a Store whose keys live under namespace.
func Scope(backend Backend, namespace string) *Scoped {
	return &Scoped{backend: backend, namespace: namespace}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validate(s.namespace, key); err != nil {
		return nil, err
	}
	return s.backend.Get(ctx, s.namespace, key)
}

func (s *Scoped) Set(ctx context.Context, key string, value []byte) error {
	if err := validate(s.namespace, key); err != nil {
		return err
	}
	return s.backend.Set(ctx, s.namespace, key, value)
}

func (s *Scoped) Remove(ctx context.Context, key string) error {
	if err := validate(s.namespace, key); err != nil {
		return err
	}
	return s.backend.Remove(ctx, s.namespace, key)
}
