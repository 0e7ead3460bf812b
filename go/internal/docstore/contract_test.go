package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Round   int      `json:"round"`
	Members []string `json:"members"`
	Owner   struct {
		Name string `json:"name"`
	} `json:"owner"`
}

// runContract exercises the behaviour every driver must share.
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		var d testDoc
		assert.ErrorIs(t, s.Get(ctx, Doc("leagues", "nope"), &d), ErrNotFound)
	})

	t.Run("create then conflict", func(t *testing.T) {
		s := newStore(t)
		ref := Doc("leagues", "l1")
		require.NoError(t, s.Create(ctx, ref, testDoc{ID: "l1", Status: "active"}))
		assert.ErrorIs(t, s.Create(ctx, ref, testDoc{ID: "l1"}), ErrAlreadyExists)

		var d testDoc
		require.NoError(t, s.Get(ctx, ref, &d))
		assert.Equal(t, "active", d.Status)
	})

	t.Run("set upserts", func(t *testing.T) {
		s := newStore(t)
		ref := Doc("leagues", "l1")
		require.NoError(t, s.Set(ctx, ref, testDoc{ID: "l1", Round: 1}))
		require.NoError(t, s.Set(ctx, ref, testDoc{ID: "l1", Round: 2}))

		var d testDoc
		require.NoError(t, s.Get(ctx, ref, &d))
		assert.Equal(t, 2, d.Round)
	})

	t.Run("find filters", func(t *testing.T) {
		s := newStore(t)
		a := testDoc{ID: "a", Status: "active", Round: 1, Members: []string{"u1", "u2"}}
		a.Owner.Name = "ann"
		b := testDoc{ID: "b", Status: "active", Round: 2, Members: []string{"u2"}}
		c := testDoc{ID: "c", Status: "completed", Round: 1, Members: []string{"u1"}}
		require.NoError(t, s.SetAll(ctx, []Write{
			{Ref: Doc("leagues", "a"), Value: a},
			{Ref: Doc("leagues", "b"), Value: b},
			{Ref: Doc("leagues", "c"), Value: c},
			{Ref: Doc("other", "a"), Value: a},
		}))

		got, err := FindAs[testDoc](ctx, s, "leagues", Where("status", OpEqual, "active"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(got))

		got, err = FindAs[testDoc](ctx, s, "leagues", Where("members", OpArrayContains, "u1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids(got))

		got, err = FindAs[testDoc](ctx, s, "leagues",
			Where("members", OpArrayContains, "u1"),
			Where("round", OpEqual, 1),
			Where("status", OpEqual, "active"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))

		got, err = FindAs[testDoc](ctx, s, "leagues", Where("owner.name", OpEqual, "ann"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))

		all, err := s.Find(ctx, "leagues")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("nested collections", func(t *testing.T) {
		s := newStore(t)
		user := Doc("users", "u1")
		require.NoError(t, s.Set(ctx, Doc(user.Sub("leagues"), "l1"), testDoc{ID: "l1"}))
		require.NoError(t, s.Set(ctx, Doc(Doc("users", "u2").Sub("leagues"), "l2"), testDoc{ID: "l2"}))

		got, err := FindAs[testDoc](ctx, s, user.Sub("leagues"))
		require.NoError(t, err)
		assert.Equal(t, []string{"l1"}, ids(got))
	})

	t.Run("transaction commits atomically", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, Doc("leagues", "l1"), testDoc{ID: "l1", Round: 1}))

		err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			var d testDoc
			if err := tx.Get(Doc("leagues", "l1"), &d); err != nil {
				return err
			}
			d.Round++
			if err := tx.Set(Doc("leagues", "l1"), d); err != nil {
				return err
			}
			return tx.Set(Doc("leagues", "l2"), testDoc{ID: "l2"})
		})
		require.NoError(t, err)

		var d testDoc
		require.NoError(t, s.Get(ctx, Doc("leagues", "l1"), &d))
		assert.Equal(t, 2, d.Round)
		require.NoError(t, s.Get(ctx, Doc("leagues", "l2"), &d))
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		s := newStore(t)
		boom := errors.New("boom")

		err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			if err := tx.Set(Doc("leagues", "l1"), testDoc{ID: "l1"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var d testDoc
		assert.ErrorIs(t, s.Get(ctx, Doc("leagues", "l1"), &d), ErrNotFound)
	})

	t.Run("invalid reference", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.Set(ctx, Doc("leagues", ""), testDoc{}))
		assert.Error(t, s.Set(ctx, Doc("leagues", "a/b"), testDoc{}))
	})
}

func ids(docs []testDoc) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
