package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps documents in process. Transactions are serialized.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]json.RawMessage)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(ctx context.Context, ref Ref, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ref.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	data, ok := m.lookup(ref)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, dst)
}

func (m *MemoryStore) Create(ctx context.Context, ref Ref, v any) error {
	return m.RunTransaction(ctx, func(_ context.Context, tx Tx) error {
		return tx.Create(ref, v)
	})
}

func (m *MemoryStore) Set(ctx context.Context, ref Ref, v any) error {
	return m.SetAll(ctx, []Write{{Ref: ref, Value: v}})
}

func (m *MemoryStore) SetAll(ctx context.Context, writes []Write) error {
	return m.RunTransaction(ctx, func(_ context.Context, tx Tx) error {
		for _, w := range writes {
			if err := tx.Set(w.Ref, w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *MemoryStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Snapshot
	for _, id := range ids {
		data := m.docs[collection][id]
		ok, err := matchesAll(data, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Snapshot{Ref: Doc(collection, id), Data: append(json.RawMessage(nil), data...)})
		}
	}
	return out, nil
}

func (m *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{store: m, staged: make(map[string]stagedWrite)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, w := range tx.order {
		s := tx.staged[w]
		coll, ok := m.docs[s.ref.Collection]
		if !ok {
			coll = make(map[string]json.RawMessage)
			m.docs[s.ref.Collection] = coll
		}
		coll[s.ref.ID] = s.data
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) lookup(ref Ref) (json.RawMessage, bool) {
	data, ok := m.docs[ref.Collection][ref.ID]
	return data, ok
}

type stagedWrite struct {
	ref  Ref
	data json.RawMessage
}

type memoryTx struct {
	store  *MemoryStore
	staged map[string]stagedWrite
	order  []string
}

func (t *memoryTx) Get(ref Ref, dst any) error {
	if err := ref.validate(); err != nil {
		return err
	}
	if s, ok := t.staged[ref.Path()]; ok {
		return json.Unmarshal(s.data, dst)
	}
	data, ok := t.store.lookup(ref)
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, dst)
}

func (t *memoryTx) Create(ref Ref, v any) error {
	if err := ref.validate(); err != nil {
		return err
	}
	if _, ok := t.staged[ref.Path()]; ok {
		return ErrAlreadyExists
	}
	if _, ok := t.store.lookup(ref); ok {
		return ErrAlreadyExists
	}
	return t.Set(ref, v)
}

func (t *memoryTx) Set(ref Ref, v any) error {
	if err := ref.validate(); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return err
	}
	key := ref.Path()
	if _, ok := t.staged[key]; !ok {
		t.order = append(t.order, key)
	}
	t.staged[key] = stagedWrite{ref: ref, data: data}
	return nil
}

func matchesAll(data json.RawMessage, filters []Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	for _, f := range filters {
		want, err := normalize(f.Value)
		if err != nil {
			return false, err
		}
		got, ok := field(doc, f.Field)
		if !ok {
			return false, nil
		}
		switch f.Op {
		case OpEqual:
			if !reflect.DeepEqual(got, want) {
				return false, nil
			}
		case OpArrayContains:
			items, isArray := got.([]any)
			if !isArray || !containsValue(items, want) {
				return false, nil
			}
		}
	}
	return true, nil
}

func field(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func containsValue(items []any, want any) bool {
	for _, item := range items {
		if reflect.DeepEqual(item, want) {
			return true
		}
	}
	return false
}

// normalize puts a Go value in the same shape json.Unmarshal produces.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}
