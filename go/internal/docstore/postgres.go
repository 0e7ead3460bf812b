package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/survivor/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops)`,
}

// PostgresStore keeps every document as a JSONB row keyed by (collection, id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects, pings and ensures the documents table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the documents table and its containment index.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Debug().Msg("documents schema ready")
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ref Ref, dst any) error {
	return pgGet(ctx, s.pool, ref, dst, false)
}

func (s *PostgresStore) Create(ctx context.Context, ref Ref, v any) error {
	return pgCreate(ctx, s.pool, ref, v)
}

func (s *PostgresStore) Set(ctx context.Context, ref Ref, v any) error {
	return pgSet(ctx, s.pool, ref, v)
}

func (s *PostgresStore) SetAll(ctx context.Context, writes []Write) error {
	return s.RunTransaction(ctx, func(_ context.Context, tx Tx) error {
		for _, w := range writes {
			if err := tx.Set(w.Ref, w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []any{collection}
	for _, f := range filters {
		doc, err := json.Marshal(containment(f))
		if err != nil {
			return nil, fmt.Errorf("docstore: encode filter: %w", err)
		}
		args = append(args, doc)
		fmt.Fprintf(&sb, ` AND data @> $%d::jsonb`, len(args))
	}
	sb.WriteString(` ORDER BY id`)

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, Snapshot{Ref: Doc(collection, id), Data: data})
	}
	return out, rows.Err()
}

// RunTransaction reads with SELECT ... FOR UPDATE so concurrent
// read-modify-write cycles on one document serialize.
func (s *PostgresStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return sqlutil.Run(ctx, s.pool,
		func(tx pgx.Tx) *pgTx { return &pgTx{ctx: ctx, tx: tx} },
		func(tx *pgTx) error { return fn(ctx, tx) },
	)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgTx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *pgTx) Get(ref Ref, dst any) error  { return pgGet(t.ctx, t.tx, ref, dst, true) }
func (t *pgTx) Create(ref Ref, v any) error { return pgCreate(t.ctx, t.tx, ref, v) }
func (t *pgTx) Set(ref Ref, v any) error    { return pgSet(t.ctx, t.tx, ref, v) }

func pgGet(ctx context.Context, db dbtx, ref Ref, dst any, forUpdate bool) error {
	if err := ref.validate(); err != nil {
		return err
	}
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var data []byte
	err := db.QueryRow(ctx, query, ref.Collection, ref.ID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", ref.Path(), err)
	}
	return json.Unmarshal(data, dst)
}

func pgCreate(ctx context.Context, db dbtx, ref Ref, v any) error {
	if err := ref.validate(); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO NOTHING`,
		ref.Collection, ref.ID, []byte(data))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", ref.Path(), err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func pgSet(ctx context.Context, db dbtx, ref Ref, v any) error {
	if err := ref.validate(); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		ref.Collection, ref.ID, []byte(data))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", ref.Path(), err)
	}
	return nil
}
