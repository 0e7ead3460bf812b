package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore maps the Store contract onto Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore opens a client for projectID. When FIRESTORE_EMULATOR_HOST
// is set the client connects to the emulator without credentials.
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		opts = append(opts, option.WithoutAuthentication())
		log.Info().Str("project_id", projectID).Msg("connecting to Firestore emulator")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) doc(ref Ref) (*firestore.DocumentRef, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}
	d := s.client.Doc(ref.Path())
	if d == nil {
		return nil, fmt.Errorf("docstore: invalid firestore path %q", ref.Path())
	}
	return d, nil
}

func (s *FirestoreStore) Get(ctx context.Context, ref Ref, dst any) error {
	d, err := s.doc(ref)
	if err != nil {
		return err
	}
	snap, err := d.Get(ctx)
	if err != nil {
		return translate(err)
	}
	return decodeSnapshot(snap, dst)
}

func (s *FirestoreStore) Create(ctx context.Context, ref Ref, v any) error {
	d, err := s.doc(ref)
	if err != nil {
		return err
	}
	m, err := toMap(v)
	if err != nil {
		return err
	}
	_, err = d.Create(ctx, m)
	return translate(err)
}

func (s *FirestoreStore) Set(ctx context.Context, ref Ref, v any) error {
	d, err := s.doc(ref)
	if err != nil {
		return err
	}
	m, err := toMap(v)
	if err != nil {
		return err
	}
	_, err = d.Set(ctx, m)
	return translate(err)
}

func (s *FirestoreStore) SetAll(ctx context.Context, writes []Write) error {
	return s.RunTransaction(ctx, func(_ context.Context, tx Tx) error {
		for _, w := range writes {
			if err := tx.Set(w.Ref, w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *FirestoreStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	coll := s.client.Collection(collection)
	if coll == nil {
		return nil, fmt.Errorf("docstore: invalid firestore collection %q", collection)
	}
	q := coll.Query
	for _, f := range filters {
		q = q.Where(f.Field, string(f.Op), f.Value)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Snapshot, 0, len(docs))
	for _, d := range docs {
		data, err := json.Marshal(d.Data())
		if err != nil {
			return nil, fmt.Errorf("docstore: encode %s: %w", d.Ref.Path, err)
		}
		out = append(out, Snapshot{Ref: Doc(collection, d.Ref.ID), Data: data})
	}
	return out, nil
}

// RunTransaction uses Firestore's optimistic transactions, which retry on
// contention. Reads must precede writes inside fn. A Create conflict is
// reported when the transaction commits.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{store: s, tx: tx})
	})
	return translate(err)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) Get(ref Ref, dst any) error {
	d, err := t.store.doc(ref)
	if err != nil {
		return err
	}
	snap, err := t.tx.Get(d)
	if err != nil {
		return translate(err)
	}
	return decodeSnapshot(snap, dst)
}

func (t *firestoreTx) Create(ref Ref, v any) error {
	d, err := t.store.doc(ref)
	if err != nil {
		return err
	}
	m, err := toMap(v)
	if err != nil {
		return err
	}
	return t.tx.Create(d, m)
}

func (t *firestoreTx) Set(ref Ref, v any) error {
	d, err := t.store.doc(ref)
	if err != nil {
		return err
	}
	m, err := toMap(v)
	if err != nil {
		return err
	}
	return t.tx.Set(d, m)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	}
	return err
}

// toMap round-trips v through JSON so documents keep the same field names in
// every driver.
func toMap(v any) (map[string]any, error) {
	data, err := encode(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("docstore: document must be an object: %w", err)
	}
	return m, nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot, dst any) error {
	data, err := json.Marshal(snap.Data())
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", snap.Ref.Path, err)
	}
	return json.Unmarshal(data, dst)
}
