package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cursor"
)

func TestPagerLimit(t *testing.T) {
	p := NewPager(20, 100, time.Second, zap.NewNop())

	tests := []struct {
		requested, want int
	}{
		{0, 20},
		{-5, 20},
		{1, 1},
		{20, 20},
		{100, 100},
		{101, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Limit(tt.requested), "requested %d", tt.requested)
	}
}

func TestPagerKeysetOverFetches(t *testing.T) {
	p := NewPager(20, 100, time.Second, zap.NewNop())

	ks, limit := p.keyset(models.PageRequest{Limit: 5})
	assert.Equal(t, 5, limit)
	assert.Equal(t, 6, ks.Limit)
	assert.Nil(t, ks.After)

	at := time.Unix(0, 1_700_000_000_123_456_789).UTC()
	ks, _ = p.keyset(models.PageRequest{Cursor: cursor.Encode(at, "r1")})
	require.NotNil(t, ks.After)
	assert.True(t, at.Equal(ks.After.CreatedAt))
	assert.Equal(t, "r1", ks.After.ID)

	ks, limit = p.keyset(models.PageRequest{Cursor: "!!not-a-cursor!!"})
	assert.Nil(t, ks.After)
	assert.Equal(t, 20, limit)
}

func TestBuildPage(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	rows := []models.Rating{
		{ID: "c", CreatedAt: base.Add(2 * time.Second)},
		{ID: "b", CreatedAt: base.Add(time.Second)},
		{ID: "a", CreatedAt: base},
	}

	page := buildPage(rows, 2)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, cursor.Encode(rows[1].CreatedAt, "b"), page.NextCursor)

	page = buildPage(rows, 3)
	assert.Len(t, page.Items, 3)
	assert.Empty(t, page.NextCursor)

	page = buildPage[models.Rating](nil, 3)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

// Items created at [5,4,4,3,2] (ids e,d,c,b,a) paged two at a time.
func TestRatingFeedTieBreakScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "espresso")

	base := time.Unix(1_700_000_000, 0).UTC()
	for _, r := range []struct {
		id  string
		sec int
	}{{"a", 2}, {"b", 3}, {"c", 4}, {"d", 4}, {"e", 5}} {
		require.NoError(t, env.ratingRepo.Create(ctx, &models.Rating{
			ID: r.id, StuffID: stuff.ID, UserID: alice.ID, Score: 7,
			CreatedAt: base.Add(time.Duration(r.sec) * time.Second),
		}))
	}

	page, err := env.ratings.ListAll(ctx, models.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d"}, ratingIDs(page))
	require.NotEmpty(t, page.NextCursor)

	page, err = env.ratings.ListAll(ctx, models.PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ratingIDs(page))
	require.NotEmpty(t, page.NextCursor)

	page, err = env.ratings.ListAll(ctx, models.PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ratingIDs(page))
	assert.Empty(t, page.NextCursor)
}

func TestFeedPagesAcrossEpoch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "vinyl")

	epoch := time.Unix(0, 0).UTC()
	for _, r := range []struct {
		id  string
		off time.Duration
	}{{"a", -3 * time.Second}, {"b", -2 * time.Second}, {"c", -time.Second}, {"d", time.Second}} {
		require.NoError(t, env.ratingRepo.Create(ctx, &models.Rating{
			ID: r.id, StuffID: stuff.ID, UserID: alice.ID, Score: 6,
			CreatedAt: epoch.Add(r.off),
		}))
	}

	var seen []string
	req := models.PageRequest{Limit: 1}
	for i := 0; i < 5; i++ {
		page, err := env.ratings.ListAll(ctx, req)
		require.NoError(t, err)
		seen = append(seen, ratingIDs(page)...)
		if page.NextCursor == "" {
			break
		}
		req.Cursor = page.NextCursor
	}

	assert.Equal(t, []string{"d", "c", "b", "a"}, seen)
}

func TestFeedExactMultipleEmitsNoTrailingCursor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "tea")
	for i := 0; i < 4; i++ {
		env.rate(t, alice, stuff, 5)
	}

	page, err := env.ratings.ListAll(ctx, models.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.NotEmpty(t, page.NextCursor)

	page, err = env.ratings.ListAll(ctx, models.PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)
}

func TestInvalidCursorServesFirstPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "tea")
	for i := 0; i < 3; i++ {
		env.rate(t, alice, stuff, 5)
	}

	first, err := env.ratings.ListAll(ctx, models.PageRequest{Limit: 2})
	require.NoError(t, err)

	for _, token := range []string{"garbage", "%%%", "MTIz", "MTI6"} {
		page, err := env.ratings.ListAll(ctx, models.PageRequest{Limit: 2, Cursor: token})
		require.NoError(t, err, "token %q", token)
		assert.Equal(t, ratingIDs(first), ratingIDs(page), "token %q", token)
	}
}

func TestCursorOfDeletedRowStillWorks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "tea")
	var created []*models.Rating
	for i := 0; i < 4; i++ {
		created = append(created, env.rate(t, alice, stuff, 5))
	}

	page, err := env.ratings.ListAll(ctx, models.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{created[3].ID, created[2].ID}, ratingIDs(page))

	// delete the row the cursor points at and the next one
	require.NoError(t, env.ratings.Delete(ctx, alice.ID, created[2].ID))
	require.NoError(t, env.ratings.Delete(ctx, alice.ID, created[1].ID))

	page, err = env.ratings.ListAll(ctx, models.PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{created[0].ID}, ratingIDs(page))
	assert.Empty(t, page.NextCursor)
}

func TestFeedDatastoreFailureIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Close())

	_, err := env.ratings.ListAll(context.Background(), models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrUnavailable)

	_, err = env.activities.List(context.Background(), "someone", models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrUnavailable)

	_, err = env.ratings.ListByStuff(context.Background(), "stuff", models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrUnavailable)
	assert.NotErrorIs(t, err, pkg.ErrNotFound)
}
