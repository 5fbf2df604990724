// Package ws implements the per-user notification channel.
//
// Every authenticated WebSocket connection is registered under its user id.
// NotifyUser writes the single text frame SignalNewActivity to every
// connection of that user; clients react by re-fetching their feed. The
// channel carries no payload and no ordering guarantees.
package ws

// SignalNewActivity is the only message the server sends to clients.
const SignalNewActivity = "NEW_ACTIVITY"

// Notifier tells a user's connected clients that their feed changed.
// Implementations never block the caller and never report delivery errors.
type Notifier interface {
	NotifyUser(userID string)
}
