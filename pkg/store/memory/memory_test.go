package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/plantjournal/plantjournal/pkg/store/document"
)

func TestInsertOneMintsID(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.InsertOne(ctx, "plant", document.Document{"name": "monstera"})
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	docs, err := s.Find(ctx, "plant", document.ByID(id), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "monstera", docs[0]["name"])
	assert.Equal(t, id, docs[0]["_id"])
}

func TestInsertOneKeepsExplicitID(t *testing.T) {
	ctx := context.Background()
	s := New()

	want := primitive.NewObjectID()
	got, err := s.InsertOne(ctx, "plant", document.Document{"_id": want, "name": "fern"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindEmptyResultIsNotError(t *testing.T) {
	ctx := context.Background()
	s := New()

	docs, err := s.Find(ctx, "plant", document.NewFilter().Eq("name", "nope"), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFindPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.InsertOne(ctx, "plant", document.Document{"name": name})
		require.NoError(t, err)
	}

	docs, err := s.Find(ctx, "plant", nil, nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "b", docs[1]["name"])
	assert.Equal(t, "c", docs[2]["name"])
}

func TestFindSortAndLimit(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"b", "c", "a"} {
		_, err := s.InsertOne(ctx, "plant", document.Document{"name": name})
		require.NoError(t, err)
	}

	docs, err := s.Find(ctx, "plant", nil, &document.FindOptions{
		Sort:  []document.SortField{{Field: "name", Order: document.Asc}},
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "b", docs[1]["name"])
}

func TestContainsMatchesArrayMembership(t *testing.T) {
	ctx := context.Background()
	s := New()

	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	_, err := s.InsertOne(ctx, "note", document.Document{"plantIds": primitive.A{p1, p2}})
	require.NoError(t, err)
	_, err = s.InsertOne(ctx, "note", document.Document{"plantIds": primitive.A{p2}})
	require.NoError(t, err)

	docs, err := s.Find(ctx, "note", document.NewFilter().Contains("plantIds", p1), nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.Find(ctx, "note", document.NewFilter().Contains("plantIds", p2), nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestInOverIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := New()

	var ids []primitive.ObjectID
	for i := 0; i < 3; i++ {
		id, err := s.InsertOne(ctx, "note", document.Document{"n": int64(i)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	docs, err := s.Find(ctx, "note", document.NewFilter().In("_id", ids[:2]), nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestEqResolvesDottedPaths(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.InsertOne(ctx, "user", document.Document{
		"facebook": document.Document{"id": "fb-1", "displayName": "Ada"},
	})
	require.NoError(t, err)
	_, err = s.InsertOne(ctx, "user", document.Document{
		"facebook": primitive.M{"id": "fb-2"},
	})
	require.NoError(t, err)

	docs, err := s.Find(ctx, "user", document.NewFilter().Eq("facebook.id", "fb-2"), nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.Find(ctx, "user", document.NewFilter().Eq("facebook.id", "fb-3"), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReplaceOne(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.InsertOne(ctx, "plant", document.Document{"name": "before"})
	require.NoError(t, err)

	matched, err := s.ReplaceOne(ctx, "plant", id, document.Document{"name": "after"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	docs, err := s.Find(ctx, "plant", document.ByID(id), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "after", docs[0]["name"])
	assert.Equal(t, id, docs[0]["_id"])

	matched, err = s.ReplaceOne(ctx, "plant", primitive.NewObjectID(), document.Document{"name": "x"})
	require.NoError(t, err)
	assert.Zero(t, matched)
}

func TestDeleteManyCountsAndZeroMatchesIsNotError(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		_, err := s.InsertOne(ctx, "note", document.Document{"kind": "water"})
		require.NoError(t, err)
	}
	_, err := s.InsertOne(ctx, "note", document.Document{"kind": "repot"})
	require.NoError(t, err)

	count, err := s.DeleteMany(ctx, "note", document.NewFilter().Eq("kind", "water"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = s.DeleteMany(ctx, "note", document.NewFilter().Eq("kind", "water"))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.InsertOne(ctx, "note", document.Document{"plantIds": primitive.A{primitive.NewObjectID()}})
	require.NoError(t, err)

	docs, err := s.Find(ctx, "note", document.ByID(id), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs[0]["plantIds"] = primitive.A{}
	docs[0]["mutated"] = true

	again, err := s.Find(ctx, "note", document.ByID(id), nil)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Len(t, again[0]["plantIds"], 1)
	assert.NotContains(t, again[0], "mutated")
}
