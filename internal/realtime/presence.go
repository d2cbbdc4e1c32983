package realtime

import "sync"

// PresenceEntry is one online identity as shown to clients.
type PresenceEntry struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
}

type presenceInfo struct {
	name  string
	count int
}

// PresenceRegistry is the reference-counted table of connected identities.
// Several connections from the same identity (tabs, devices) collapse into
// one entry until the last of them drops. Nothing else reads or writes the
// connection counts.
type PresenceRegistry struct {
	mu     sync.Mutex
	online map[string]*presenceInfo
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{online: make(map[string]*presenceInfo)}
}

// MarkConnected bumps the connection count for an identity, creating the
// entry at count one. It reports whether the table was mutated.
func (p *PresenceRegistry) MarkConnected(externalID, name string) bool {
	if externalID == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if info, ok := p.online[externalID]; ok {
		info.count++
		return true
	}
	p.online[externalID] = &presenceInfo{name: name, count: 1}
	return true
}

// MarkDisconnected drops one connection for an identity and removes the
// entry when the last one is gone. Disconnecting an identity with no entry
// is a no-op; the count never goes negative.
func (p *PresenceRegistry) MarkDisconnected(externalID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, ok := p.online[externalID]
	if !ok {
		return false
	}

	info.count--
	if info.count <= 0 {
		delete(p.online, externalID)
	}
	return true
}

// Snapshot returns the online identities, one entry each, in no particular
// order.
func (p *PresenceRegistry) Snapshot() []PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := make([]PresenceEntry, 0, len(p.online))
	for externalID, info := range p.online {
		list = append(list, PresenceEntry{ExternalID: externalID, Name: info.name})
	}
	return list
}

// OnlineCount reports how many identities are currently online.
func (p *PresenceRegistry) OnlineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.online)
}
