package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/social-feed/app/models"
)

func TestLoadSeed_Default(t *testing.T) {
	seed, err := LoadSeed("")
	require.NoError(t, err)
	assert.Len(t, seed.Users, 4)
	assert.Len(t, seed.Feeds, 4)
	require.Len(t, seed.FeedItems, 2)

	assert.Equal(t, "ugh.", seed.FeedItems[0].Contents.Text)
	assert.Equal(t, []models.ID{"2", "3"}, seed.FeedItems[0].LikeCounter)
	assert.Len(t, seed.FeedItems[0].Comments, 2)
	assert.Equal(t, models.ID("4"), seed.FeedItems[1].Contents.Author)
	assert.Equal(t, int64(1458231460117), seed.FeedItems[1].Contents.PostDate)
}

func TestLoadSeed_File(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "seed.yml")
	data := "users:\n  - id: \"10\"\n    fullName: Test User\n    feed: \"10\"\nfeeds:\n  - id: \"10\"\n    contents: []\n"
	require.NoError(t, os.WriteFile(fname, []byte(data), 0600))

	seed, err := LoadSeed(fname)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: "10", FullName: "Test User", FeedID: "10"}}, seed.Users)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "no-such-file.yml"))
	assert.Error(t, err)
}

func TestBoltStore_Reset(t *testing.T) {
	s := prepStore(t)
	ctx := context.Background()

	u, err := s.Users().Get(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "4", FullName: "John Vilk", FeedID: "4"}, u)

	f, err := s.Feeds().Get(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"2", "1"}, f.Contents)

	// changes are dropped by the next reset
	require.NoError(t, s.FeedItems().Delete(ctx, "1"))
	_, err = s.FeedItems().Insert(ctx, models.FeedItem{Type: models.StatusUpdateType})
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	ids, err := s.FeedItems().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"1", "2"}, ids)
}

func TestCollection_InsertAfterSeed(t *testing.T) {
	s := prepStore(t)
	ctx := context.Background()

	item, err := s.FeedItems().Insert(ctx, models.FeedItem{Type: models.StatusUpdateType,
		Contents: models.StatusUpdate{Author: "4", Text: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, models.ID("3"), item.ID, "ids continue after seeded ones")

	got, err := s.FeedItems().Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	item2, err := s.FeedItems().Insert(ctx, models.FeedItem{Type: models.StatusUpdateType})
	require.NoError(t, err)
	assert.Equal(t, models.ID("4"), item2.ID)
}

func TestCollection_PutDeleteNotFound(t *testing.T) {
	s := prepStore(t)
	ctx := context.Background()

	_, err := s.Users().Get(ctx, "100")
	assert.True(t, errors.Is(err, models.ErrNotFound), err)

	err = s.Feeds().Put(ctx, models.Feed{ID: "100"})
	assert.True(t, errors.Is(err, models.ErrNotFound), err)

	err = s.FeedItems().Delete(ctx, "100")
	assert.True(t, errors.Is(err, models.ErrNotFound), err)

	ids, err := s.Feeds().List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, models.ID("100"), "put doesn't create absent documents")
}

func TestCollection_PutOverwrites(t *testing.T) {
	s := prepStore(t)
	ctx := context.Background()

	require.NoError(t, s.Feeds().Put(ctx, models.Feed{ID: "1", Contents: []models.ID{"2"}}))
	f, err := s.Feeds().Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"2"}, f.Contents)

	require.NoError(t, s.Feeds().Delete(ctx, "1"))
	ids, err := s.Feeds().List(ctx)
	require.NoError(t, err)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []models.ID{"2", "3", "4"}, ids)
}

func TestCollection_UsersInsert(t *testing.T) {
	s := prepStore(t)
	ctx := context.Background()

	u, err := s.Users().Insert(ctx, models.User{FullName: "New Person", FeedID: "5"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("5"), u.ID)

	f, err := s.Feeds().Insert(ctx, models.Feed{Contents: []models.ID{}})
	require.NoError(t, err)
	assert.Equal(t, models.ID("5"), f.ID)

	ids, err := s.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
}

func TestCollection_CanceledContext(t *testing.T) {
	s := prepStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Users().Get(ctx, "1")
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, context.Canceled, s.Reset(ctx))
}

func prepStore(t *testing.T) *BoltStore {
	seed, err := LoadSeed("")
	require.NoError(t, err)
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.bdb"), seed)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Reset(context.Background()))
	return s
}
