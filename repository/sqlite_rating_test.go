package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cursor"
)

// walk pages through the feed k rows at a time, deriving each cursor from
// the last row returned, and returns the ids in the order seen.
func walk(t *testing.T, repo RatingRepository, filter RatingFilter, k int) []string {
	t.Helper()
	ctx := context.Background()

	var seen []string
	var after *cursor.Position
	for i := 0; i < 100; i++ {
		rows, err := repo.List(ctx, filter, Keyset{After: after, Limit: k})
		require.NoError(t, err)
		for _, r := range rows {
			seen = append(seen, r.ID)
		}
		if len(rows) < k {
			return seen
		}
		last := rows[len(rows)-1]
		after = &cursor.Position{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	t.Fatal("pagination did not terminate")
	return nil
}

func TestRatingListOrderAndCollisions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRatingRepo(db.Conn)

	alice := seedUser(t, db, "alice")
	stuff := seedStuff(t, db, alice, "Espresso")

	// many rows share timestamps so page boundaries fall inside tie groups
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var want []string
	for i := 29; i >= 0; i-- {
		id := fmt.Sprintf("r%02d", i)
		require.NoError(t, repo.Create(ctx, &models.Rating{
			ID:        id,
			StuffID:   stuff.ID,
			UserID:    alice.ID,
			Score:     5,
			CreatedAt: base.Add(time.Duration(i/4) * time.Nanosecond),
		}))
	}
	for i := 29; i >= 0; i-- {
		want = append(want, fmt.Sprintf("r%02d", i))
	}

	for _, k := range []int{1, 2, 3, 4, 5, 7, 30, 31, 100} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			assert.Equal(t, want, walk(t, repo, RatingFilter{}, k))
		})
	}
}

func TestRatingListSoftDeleteBetweenPages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRatingRepo(db.Conn)

	alice := seedUser(t, db, "alice")
	stuff := seedStuff(t, db, alice, "Espresso")

	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Create(ctx, &models.Rating{
			ID: id, StuffID: stuff.ID, UserID: alice.ID, Score: 7,
			CreatedAt: time.Unix(int64(i+1), 0),
		}))
	}

	page1, err := repo.List(ctx, RatingFilter{}, Keyset{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"e", "d"}, ids(page1))

	// delete the cursor row itself and a row on the next page
	require.NoError(t, repo.SoftDelete(ctx, "d", time.Now()))
	require.NoError(t, repo.SoftDelete(ctx, "c", time.Now()))

	last := page1[len(page1)-1]
	page2, err := repo.List(ctx, RatingFilter{}, Keyset{
		After: &cursor.Position{CreatedAt: last.CreatedAt, ID: last.ID},
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(page2))

	_, err = repo.GetByID(ctx, "d")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	assert.ErrorIs(t, repo.SoftDelete(ctx, "d", time.Now()), pkg.ErrNotFound)
}

func TestRatingListScopes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRatingRepo(db.Conn)
	tags := NewSQLiteTagRepo(db.Conn)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	coffee := seedStuff(t, db, alice, "Espresso")
	tea := seedStuff(t, db, alice, "Sencha")

	tag, err := tags.Upsert(ctx, "hot")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, tea.ID, tag.ID))

	create := func(id string, s *models.Stuff, u *models.User, sec int64) {
		require.NoError(t, repo.Create(ctx, &models.Rating{
			ID: id, StuffID: s.ID, UserID: u.ID, Score: 8, CreatedAt: time.Unix(sec, 0),
		}))
	}
	create("r1", coffee, alice, 1)
	create("r2", tea, alice, 2)
	create("r3", coffee, bob, 3)
	create("r4", tea, bob, 4)

	list := func(f RatingFilter) []string {
		rows, err := repo.List(ctx, f, Keyset{Limit: 10})
		require.NoError(t, err)
		return ids(rows)
	}

	assert.Equal(t, []string{"r4", "r3", "r2", "r1"}, list(RatingFilter{}))
	assert.Equal(t, []string{"r3", "r1"}, list(RatingFilter{StuffID: coffee.ID}))
	assert.Equal(t, []string{"r4", "r3"}, list(RatingFilter{UserID: bob.ID}))
	assert.Equal(t, []string{"r4", "r2"}, list(RatingFilter{TagID: tag.ID}))
	assert.Empty(t, list(RatingFilter{StuffID: "missing"}))
}

func TestRatingCreateAssignsULID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRatingRepo(db.Conn)

	alice := seedUser(t, db, "alice")
	stuff := seedStuff(t, db, alice, "Espresso")

	r := &models.Rating{StuffID: stuff.ID, UserID: alice.ID, Score: 10, Content: "great"}
	require.NoError(t, repo.Create(ctx, r))
	assert.Len(t, r.ID, 26)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(r.CreatedAt))
	assert.Equal(t, "Espresso", got.StuffName)
	assert.Equal(t, "alice", got.Username)
	assert.Zero(t, got.VoteScore)
}

func ids(rows []models.Rating) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
