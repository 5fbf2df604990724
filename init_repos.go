package main

import (
	"database/sql"

	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

// Repositories holds the pool-bound repository instances. Services that
// need atomic writes build tx-bound copies inside database.WithTx instead.
type Repositories struct {
	User     repository.UserRepository
	Session  repository.SessionRepository
	Invite   repository.InviteRepository
	Stuff    repository.StuffRepository
	Tag      repository.TagRepository
	Rating   repository.RatingRepository
	Comment  repository.CommentRepository
	Activity repository.ActivityRepository
}

// *sql.DB is a goroutine-safe pool, so every repository shares it.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:     repository.NewSQLiteUserRepo(conn),
		Session:  repository.NewSQLiteSessionRepo(conn),
		Invite:   repository.NewSQLiteInviteRepo(conn),
		Stuff:    repository.NewSQLiteStuffRepo(conn),
		Tag:      repository.NewSQLiteTagRepo(conn),
		Rating:   repository.NewSQLiteRatingRepo(conn),
		Comment:  repository.NewSQLiteCommentRepo(conn),
		Activity: repository.NewSQLiteActivityRepo(conn),
	}
}
