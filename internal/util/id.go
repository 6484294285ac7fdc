// Package util provides shared utility functions.
package util

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultShortIDLength is the default number of characters for short IDs.
	DefaultShortIDLength = 8
	// MinPrefixLength is the shortest prefix accepted in place of a full ID.
	MinPrefixLength = 4
	// MaxAmbiguousCandidates is the max number of candidates to show in ambiguous error.
	MaxAmbiguousCandidates = 5
)

// Errors returned by ID resolution functions.
var (
	ErrAmbiguousID = errors.New("ambiguous ID prefix")
	ErrNotFound    = errors.New("not found")
)

// ShortID returns a shortened version of an ID.
// If n is 0 or negative, DefaultShortIDLength (8) is used.
func ShortID(id string, n int) string {
	if n <= 0 {
		n = DefaultShortIDLength
	}
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// IDPrefixResolver finds task IDs by prefix.
// This is implemented by task.Repository.
type IDPrefixResolver interface {
	FindIDsByPrefix(prefix string) ([]string, error)
}

// ResolveTaskID resolves a task ID or prefix to a full task ID.
//
// Resolution rules:
//  1. An exact (case-insensitive) match wins.
//  2. A prefix of at least MinPrefixLength characters matching exactly one ID resolves to it.
//  3. Multiple matches return ErrAmbiguousID with candidates.
//  4. No matches, or a shorter prefix, return ErrNotFound.
func ResolveTaskID(resolver IDPrefixResolver, idOrPrefix string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", fmt.Errorf("task ID: %w", ErrNotFound)
	}

	candidates, err := resolver.FindIDsByPrefix(idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("find task IDs: %w", err)
	}
	for _, c := range candidates {
		if strings.EqualFold(c, idOrPrefix) {
			return c, nil
		}
	}
	if len(idOrPrefix) < MinPrefixLength {
		return "", fmt.Errorf("task with prefix %q: %w (use at least %d characters)", idOrPrefix, ErrNotFound, MinPrefixLength)
	}
	return resolveFromCandidates(idOrPrefix, candidates)
}

// resolveFromCandidates handles the common resolution logic.
func resolveFromCandidates(prefix string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("task with prefix %q: %w", prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		shown := candidates
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d tasks: %v",
			ErrAmbiguousID, prefix, len(candidates), shown)
	}
}
