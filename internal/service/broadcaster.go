package service

// Broadcaster is the group-send primitive the services fan events out
// through. The realtime hub implements it. Sends are fire-and-forget:
// a failed or dropped delivery never bubbles back into the operation
// that triggered it.
type Broadcaster interface {
	Publish(channelID, event string, payload any)
	PublishAll(event string, payload any)
}
