package realtime

import "sync"

// TypingCoordinator keeps the ephemeral (channel, identity) typing table.
// It is purely reactive: clients announce keystrokes and stops, and the
// auto-clear timer lives on the client side. A client that disconnects
// mid-typing leaves a stale entry until its next signal; typing state is
// advisory and never persisted, so that is accepted.
type TypingCoordinator struct {
	mu sync.Mutex

	// channel id -> external id -> display name
	typing map[string]map[string]string
}

func NewTypingCoordinator() *TypingCoordinator {
	return &TypingCoordinator{typing: make(map[string]map[string]string)}
}

// Set records a typing signal and reports whether the table changed.
// Repeated keystroke signals from the same user collapse into one entry,
// so the room is not flooded with duplicate broadcasts.
func (t *TypingCoordinator) Set(channelID, externalID, name string, isTyping bool) bool {
	if channelID == "" || externalID == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	typists, ok := t.typing[channelID]
	if isTyping {
		if !ok {
			typists = make(map[string]string)
			t.typing[channelID] = typists
		}
		if _, already := typists[externalID]; already {
			return false
		}
		typists[externalID] = name
		return true
	}

	if !ok {
		return false
	}
	if _, present := typists[externalID]; !present {
		return false
	}
	delete(typists, externalID)
	if len(typists) == 0 {
		delete(t.typing, channelID)
	}
	return true
}

// Typists returns the display names of everyone currently typing in a
// channel, keyed by external id.
func (t *TypingCoordinator) Typists(channelID string) map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]string, len(t.typing[channelID]))
	for externalID, name := range t.typing[channelID] {
		out[externalID] = name
	}
	return out
}
