package services

import "github.com/photosunthesis/rate-stuff.online-sub001/ws"

// notifyAll signals each recipient after a committed write. Delivery is
// fire-and-forget and never affects the write.
func notifyAll(n ws.Notifier, userIDs ...string) {
	if n == nil {
		return
	}
	for _, id := range userIDs {
		if id != "" {
			n.NotifyUser(id)
		}
	}
}
