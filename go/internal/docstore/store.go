// Package docstore is a small document database abstraction: collections of
// JSON documents addressed by slash paths, with equality and array-contains
// filters, batched writes and transactions.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("docstore: document not found")
	ErrAlreadyExists = errors.New("docstore: document already exists")
)

// Ref addresses one document. Collection may itself be a nested path such
// as "users/u1/leagues".
type Ref struct {
	Collection string
	ID         string
}

// Doc builds a reference.
func Doc(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

// Path returns the slash-joined document path.
func (r Ref) Path() string {
	return r.Collection + "/" + r.ID
}

// Sub returns the path of a collection nested under r.
func (r Ref) Sub(collection string) string {
	return r.Path() + "/" + collection
}

func (r Ref) validate() error {
	if r.Collection == "" || r.ID == "" || strings.Contains(r.ID, "/") {
		return fmt.Errorf("docstore: invalid reference %q", r.Path())
	}
	return nil
}

// Op is a filter operator
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

// Filter restricts Find results. Field may be a dotted path.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds a filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Snapshot is a document read by Find.
type Snapshot struct {
	Ref  Ref
	Data json.RawMessage
}

// DataTo decodes the document into dst.
func (s Snapshot) DataTo(dst any) error {
	return json.Unmarshal(s.Data, dst)
}

// Write is one entry of a batch.
type Write struct {
	Ref   Ref
	Value any
}

// Tx is the view of the store inside RunTransaction. Writes become visible
// to other callers only when the transaction function returns nil.
type Tx interface {
	Get(ref Ref, dst any) error
	Create(ref Ref, v any) error
	Set(ref Ref, v any) error
}

// Store is implemented by every driver.
type Store interface {
	Get(ctx context.Context, ref Ref, dst any) error
	Create(ctx context.Context, ref Ref, v any) error
	Set(ctx context.Context, ref Ref, v any) error
	Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error)
	SetAll(ctx context.Context, writes []Write) error
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// FindAs runs Find and decodes every snapshot into T.
func FindAs[T any](ctx context.Context, s Store, collection string, filters ...Filter) ([]T, error) {
	snaps, err := s.Find(ctx, collection, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return data, nil
}

// containment builds the JSON object a document must contain to satisfy f.
func containment(f Filter) map[string]any {
	var leaf any = f.Value
	if f.Op == OpArrayContains {
		leaf = []any{f.Value}
	}
	parts := strings.Split(f.Field, ".")
	for i := len(parts) - 1; i > 0; i-- {
		leaf = map[string]any{parts[i]: leaf}
	}
	return map[string]any{parts[0]: leaf}
}

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if f.Field == "" {
			return errors.New("docstore: filter field is required")
		}
		switch f.Op {
		case OpEqual, OpArrayContains:
		default:
			return fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}
	return nil
}
