package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *recordingNotifier) NotifyUser(userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func (n *recordingNotifier) take() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	got := n.users
	n.users = nil
	return got
}

type testEnv struct {
	db       *database.DB
	notifier *recordingNotifier
	pager    *Pager

	users      repository.UserRepository
	stuff      repository.StuffRepository
	tags       repository.TagRepository
	ratingRepo repository.RatingRepository

	ratings    RatingService
	comments   CommentService
	votes      VoteService
	activities ActivityService
	stuffSvc   StuffService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "rso.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:         db,
		notifier:   &recordingNotifier{},
		pager:      NewPager(20, 100, 5*time.Second, zap.NewNop()),
		users:      repository.NewSQLiteUserRepo(db.Conn),
		stuff:      repository.NewSQLiteStuffRepo(db.Conn),
		tags:       repository.NewSQLiteTagRepo(db.Conn),
		ratingRepo: repository.NewSQLiteRatingRepo(db.Conn),
	}

	env.ratings = NewRatingService(db.Conn, env.ratingRepo, env.stuff, env.tags, env.users, env.pager, env.notifier)
	env.comments = NewCommentService(db.Conn, repository.NewSQLiteCommentRepo(db.Conn), env.ratingRepo, env.pager, env.notifier)
	env.votes = NewVoteService(db.Conn, env.notifier)
	env.activities = NewActivityService(repository.NewSQLiteActivityRepo(db.Conn), env.pager)
	env.stuffSvc = NewStuffService(db.Conn, env.stuff, env.tags)
	return env
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) newStuff(t *testing.T, owner *models.User, name string, tags ...string) *models.Stuff {
	t.Helper()
	s, err := e.stuffSvc.Create(context.Background(), owner.ID, &models.CreateStuffRequest{Name: name, Tags: tags})
	require.NoError(t, err)
	return s
}

func (e *testEnv) rate(t *testing.T, author *models.User, stuff *models.Stuff, score int) *models.Rating {
	t.Helper()
	r, err := e.ratings.Create(context.Background(), author.ID, stuff.ID, &models.CreateRatingRequest{Score: score})
	require.NoError(t, err)
	return r
}

func ratingIDs(page *models.Page[models.Rating]) []string {
	out := make([]string, len(page.Items))
	for i, r := range page.Items {
		out[i] = r.ID
	}
	return out
}
