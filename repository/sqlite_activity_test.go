package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cursor"
)

func TestActivityFeedAndSoftDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	stuff := seedStuff(t, db, alice, "Espresso")

	ratings := NewSQLiteRatingRepo(db.Conn)
	rating := &models.Rating{StuffID: stuff.ID, UserID: alice.ID, Score: 9}
	require.NoError(t, ratings.Create(ctx, rating))

	comments := NewSQLiteCommentRepo(db.Conn)
	comment := &models.Comment{RatingID: rating.ID, UserID: bob.ID, Content: "agreed"}
	require.NoError(t, comments.Create(ctx, comment))

	repo := NewSQLiteActivityRepo(db.Conn)
	vote := &models.Activity{UserID: alice.ID, ActorID: bob.ID, Type: models.ActivityVote, RatingID: rating.ID}
	require.NoError(t, repo.Create(ctx, vote))
	reply := &models.Activity{
		UserID: alice.ID, ActorID: bob.ID, Type: models.ActivityComment,
		RatingID: rating.ID, CommentID: &comment.ID,
	}
	require.NoError(t, repo.Create(ctx, reply))

	feed, err := repo.ListByUser(ctx, alice.ID, Keyset{Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, reply.ID, feed[0].ID)
	assert.Equal(t, "bob", feed[0].ActorUsername)
	require.NotNil(t, feed[0].CommentID)
	assert.Equal(t, comment.ID, *feed[0].CommentID)
	assert.False(t, feed[0].Read)

	// cursor from the first row yields only the older one
	next, err := repo.ListByUser(ctx, alice.ID, Keyset{
		After: &cursor.Position{CreatedAt: feed[0].CreatedAt, ID: feed[0].ID},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, vote.ID, next[0].ID)

	unread, err := repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, repo.MarkAllRead(ctx, alice.ID, time.Now()))
	unread, err = repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	recipients, err := repo.SoftDeleteVote(ctx, rating.ID, bob.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, recipients)

	recipients, err = repo.SoftDeleteByRating(ctx, rating.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, recipients)

	feed, err = repo.ListByUser(ctx, alice.ID, Keyset{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, feed)

	// nothing left to delete
	recipients, err = repo.SoftDeleteByComment(ctx, comment.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, recipients)
}
