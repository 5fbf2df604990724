package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
)

func TestRatingCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "Espresso", "Coffee")

	r, err := env.ratings.Create(ctx, alice.ID, stuff.ID, &models.CreateRatingRequest{Score: 9, Content: "  great  "})
	require.NoError(t, err)
	assert.Equal(t, "Espresso", r.StuffName)
	assert.Equal(t, "alice", r.Username)
	assert.Equal(t, "great", r.Content)

	_, err = env.ratings.Create(ctx, alice.ID, stuff.ID, &models.CreateRatingRequest{Score: 11})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = env.ratings.Create(ctx, alice.ID, "missing", &models.CreateRatingRequest{Score: 5})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	got, err := env.stuffSvc.Get(ctx, stuff.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RatingCount)
	require.NotNil(t, got.AverageScore)
	assert.InDelta(t, 9.0, *got.AverageScore, 0.001)
	assert.Equal(t, []string{"coffee"}, got.Tags)
}

func TestRatingScopeNotFoundVersusEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	stuff := env.newStuff(t, alice, "unrated", "lonely")

	_, err := env.ratings.ListByStuff(ctx, "no-such-stuff", models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.ratings.ListByTag(ctx, "no-such-tag", models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.ratings.ListByUser(ctx, "nobody", models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	page, err := env.ratings.ListByStuff(ctx, stuff.ID, models.PageRequest{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)

	page, err = env.ratings.ListByTag(ctx, "LONELY", models.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = env.ratings.ListByUser(ctx, "alice", models.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestRatingScopes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	coffee := env.newStuff(t, alice, "espresso", "coffee")
	tea := env.newStuff(t, alice, "sencha", "tea")

	r1 := env.rate(t, alice, coffee, 8)
	r2 := env.rate(t, bob, coffee, 6)
	r3 := env.rate(t, bob, tea, 4)

	page, err := env.ratings.ListByStuff(ctx, coffee.ID, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{r2.ID, r1.ID}, ratingIDs(page))

	page, err = env.ratings.ListByTag(ctx, "tea", models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{r3.ID}, ratingIDs(page))

	page, err = env.ratings.ListByUser(ctx, "BOB", models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{r3.ID, r2.ID}, ratingIDs(page))

	page, err = env.ratings.ListAll(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{r3.ID, r2.ID, r1.ID}, ratingIDs(page))
}

func TestRatingDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	stuff := env.newStuff(t, alice, "espresso")
	r := env.rate(t, alice, stuff, 8)

	_, err := env.comments.Create(ctx, bob.ID, r.ID, &models.CreateCommentRequest{Content: "nice"})
	require.NoError(t, err)
	env.notifier.take()

	err = env.ratings.Delete(ctx, bob.ID, r.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	require.NoError(t, env.ratings.Delete(ctx, alice.ID, r.ID))
	assert.Equal(t, []string{alice.ID}, env.notifier.take())

	_, err = env.ratings.Get(ctx, r.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	page, err := env.activities.List(ctx, alice.ID, models.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = env.comments.ListByRating(ctx, r.ID, models.PageRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	err = env.ratings.Delete(ctx, alice.ID, r.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
