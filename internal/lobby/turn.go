package lobby

import "time"

// Start launches the match: host-only, open-phase only, at least two
// members, every member holding a country, and a structured initial
// payload. On success the lobby is started, the payload installed at
// version max(1, v+1), and the turn baton handed to the host.
func (l *Lobby) Start(playerID string, payload map[string]interface{}) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if playerID != l.HostPlayerID {
		return Snapshot{}, forbidden("Only host can launch the match.")
	}
	if l.Status != StatusOpen {
		return Snapshot{}, conflict("Match already started.")
	}
	if len(l.Players) < 2 {
		return Snapshot{}, conflict("Need at least 2 players to start.")
	}
	for _, p := range l.Players {
		if p.CountryID == "" {
			return Snapshot{}, conflict("All players must pick a country first.")
		}
	}
	if payload == nil {
		return Snapshot{}, badRequest("Missing initial game payload.")
	}

	l.Status = StatusStarted
	l.Payload = payload
	l.PayloadVersion = max(1, l.PayloadVersion+1)
	l.ActivePlayerID = l.HostPlayerID
	l.UpdatedAt = time.Now()
	return l.snapshotLocked(false, 0), nil
}

// Handoff replaces the shared payload wholesale and passes the turn baton
// to the next roster member in cyclic order. Only the current active player
// may write; everyone else gets Conflict and the lobby is left untouched.
// The payload is never merged, by design.
func (l *Lobby) Handoff(playerID string, payload map[string]interface{}) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Status != StatusStarted {
		return Snapshot{}, conflict("Match has not started.")
	}
	if playerID != l.ActivePlayerID {
		return Snapshot{}, conflict("It is not this player's turn.")
	}
	if payload == nil {
		return Snapshot{}, badRequest("Missing handoff payload.")
	}

	l.Payload = payload
	l.PayloadVersion++
	l.ActivePlayerID = l.nextPlayerIDLocked(playerID)
	l.UpdatedAt = time.Now()
	return l.snapshotLocked(false, 0), nil
}

// nextPlayerIDLocked returns the roster entry after current in cyclic
// order, or the first entry when current is not on the roster.
func (l *Lobby) nextPlayerIDLocked(current string) string {
	if len(l.Players) == 0 {
		return ""
	}
	for i, p := range l.Players {
		if p.ID == current {
			return l.Players[(i+1)%len(l.Players)].ID
		}
	}
	return l.Players[0].ID
}
