package main

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/config"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ratelimit"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
	"github.com/photosunthesis/rate-stuff.online-sub001/ws"
)

// Services holds every service instance.
type Services struct {
	Auth     services.AuthService
	Invite   services.InviteService
	Stuff    services.StuffService
	Rating   services.RatingService
	Comment  services.CommentService
	Vote     services.VoteService
	Activity services.ActivityService
}

// RateLimiters holds the keyed limiters. Login is keyed by client IP,
// Write by user id.
type RateLimiters struct {
	Login ratelimit.Limiter
	Write ratelimit.Limiter
}

func initServices(
	db *sql.DB,
	repos *Repositories,
	notifier ws.Notifier,
	rdb redis.UniversalClient,
	cfg *config.Config,
	log *zap.Logger,
) (*Services, *RateLimiters) {
	// one pager so every feed shares limits and query timeout
	pager := services.NewPager(cfg.Feed.DefaultLimit, cfg.Feed.MaxLimit, cfg.Feed.QueryTimeout, log.Named("feed"))

	svcs := &Services{
		Auth: services.NewAuthService(
			db, repos.User, repos.Session,
			cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry,
			cfg.Invites.Required,
		),
		Invite:   services.NewInviteService(repos.Invite),
		Stuff:    services.NewStuffService(db, repos.Stuff, repos.Tag),
		Rating:   services.NewRatingService(db, repos.Rating, repos.Stuff, repos.Tag, repos.User, pager, notifier),
		Comment:  services.NewCommentService(db, repos.Comment, repos.Rating, pager, notifier),
		Vote:     services.NewVoteService(db, notifier),
		Activity: services.NewActivityService(repos.Activity, pager),
	}

	rl := cfg.RateLimit
	limiters := &RateLimiters{}
	if rdb != nil {
		limiters.Login = ratelimit.NewRedisLimiter(rdb, "rl:login", rl.LoginAttempts, rl.LoginWindow)
		limiters.Write = ratelimit.NewRedisLimiter(rdb, "rl:write", rl.WriteRequests, rl.WriteWindow)
	} else {
		limiters.Login = ratelimit.NewMemoryLimiter(rl.LoginAttempts, rl.LoginWindow)
		limiters.Write = ratelimit.NewMemoryLimiter(rl.WriteRequests, rl.WriteWindow)
	}

	return svcs, limiters
}
