package main

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/config"
	"github.com/photosunthesis/rate-stuff.online-sub001/handlers"
	"github.com/photosunthesis/rate-stuff.online-sub001/ws"
)

// Handlers holds every HTTP handler.
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Invite   *handlers.InviteHandler
	Stuff    *handlers.StuffHandler
	Rating   *handlers.RatingHandler
	Comment  *handlers.CommentHandler
	Vote     *handlers.VoteHandler
	Activity *handlers.ActivityHandler
	WS       *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, db *sql.DB, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		Health:   handlers.NewHealthHandler(db),
		Auth:     handlers.NewAuthHandler(svcs.Auth, limiters.Login, log.Named("auth")),
		Invite:   handlers.NewInviteHandler(svcs.Invite),
		Stuff:    handlers.NewStuffHandler(svcs.Stuff),
		Rating:   handlers.NewRatingHandler(svcs.Rating),
		Comment:  handlers.NewCommentHandler(svcs.Comment),
		Vote:     handlers.NewVoteHandler(svcs.Vote),
		Activity: handlers.NewActivityHandler(svcs.Activity),
		WS: ws.NewHandler(hub, svcs.Auth, ws.Options{
			PingInterval: cfg.WS.PingInterval,
			PongWait:     cfg.WS.PongWait,
		}, log.Named("ws")),
	}
}
