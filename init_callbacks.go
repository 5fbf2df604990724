package main

import (
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/ws"
)

// registerHubCallbacks logs when a user's notification channel comes up
// and when the last of their connections goes away. Callbacks run outside
// the hub loop.
func registerHubCallbacks(hub *ws.Hub, log *zap.Logger) {
	hub.OnUserFirstConnect(func(userID string) {
		log.Debug("user online", zap.String("user_id", userID))
	})

	hub.OnUserFullyDisconnected(func(userID string) {
		log.Debug("user offline", zap.String("user_id", userID))
	})
}
