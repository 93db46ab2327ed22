package collab

import (
	"slices"
	"sync"
)

// PresenceManager tracks where each user in a room is pointing and what
// they have selected.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

func (pm *PresenceManager) Get(userID string) (*PresencePayload, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.presences[userID]
	return p, ok
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

// Deselect drops a removed reference from every user's selection.
func (pm *PresenceManager) Deselect(referenceID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for userID, p := range pm.presences {
		if !slices.Contains(p.Selection, referenceID) {
			continue
		}
		next := *p
		next.Selection = slices.DeleteFunc(slices.Clone(p.Selection), func(id string) bool {
			return id == referenceID
		})
		pm.presences[userID] = &next
	}
}

func (pm *PresenceManager) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}
