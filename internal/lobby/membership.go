package lobby

import (
	"time"

	"github.com/untilzero/lanlobby/internal/ident"
)

// JoinRequest carries the raw fields for a join attempt.
type JoinRequest struct {
	PlayerName string
	CountryID  string
}

// Join appends a new member to the roster tail, allocating the lowest free
// owner slot. The requested country is granted only when it is valid and
// not already held; otherwise the player starts unassigned. Fails with
// Conflict when the match has started, the lobby is full, or no slot is
// free.
func (l *Lobby) Join(req JoinRequest) (*Player, Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Status != StatusOpen {
		return nil, Snapshot{}, conflict("Match already started.")
	}
	if len(l.Players) >= l.MaxPlayers {
		return nil, Snapshot{}, conflict("Lobby is full.")
	}
	slot := l.freeOwnerSlotLocked()
	if slot == "" {
		// Unreachable while the roster is under the four-slot cap, but the
		// invariant is cheap to hold explicitly.
		return nil, Snapshot{}, conflict("Lobby has no available commander slots.")
	}

	countryID := NormalizeCountry(req.CountryID)
	if countryID != "" && l.countryTakenLocked(countryID, "") {
		countryID = ""
	}

	now := time.Now()
	p := &Player{
		ID:        ident.New("player"),
		Name:      SanitizeName(req.PlayerName),
		CountryID: countryID,
		OwnerSlot: slot,
		JoinedAt:  now,
		LastSeen:  now,
	}
	l.Players = append(l.Players, p)
	l.normalizeOwnerSlotsLocked()
	l.UpdatedAt = now
	return p, l.snapshotLocked(false, 0), nil
}

// Leave removes the player from the roster. Host departure or an emptied
// roster dissolves the lobby (reported through removed=true); otherwise, if
// the departed player held the turn baton, it snaps to the first roster
// member. That reset deliberately does not preserve rotation order relative
// to the departed player.
func (l *Lobby) Leave(playerID string) (removed bool, snap Snapshot) {
	l.mu.Lock()

	kept := l.Players[:0]
	for _, p := range l.Players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	l.Players = kept

	if playerID == l.HostPlayerID || len(l.Players) == 0 {
		onEmpty := l.onEmpty
		l.mu.Unlock()
		if onEmpty != nil {
			onEmpty(l.ID)
		}
		return true, Snapshot{}
	}

	if l.findPlayer(l.ActivePlayerID) == nil {
		l.ActivePlayerID = l.Players[0].ID
	}
	l.UpdatedAt = time.Now()
	snap = l.snapshotLocked(false, 0)
	l.mu.Unlock()
	return false, snap
}

// SelectCountry assigns a country to a member and refreshes its liveness.
// Fails with BadRequest for a country outside the fixed set, Forbidden for
// a non-member, and Conflict when another member already holds it.
func (l *Lobby) SelectCountry(playerID, countryID string) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !CountryIDs[countryID] {
		return Snapshot{}, badRequest("Invalid country selection.")
	}
	p := l.findPlayer(playerID)
	if p == nil {
		return Snapshot{}, forbidden("Player is not in this lobby.")
	}
	if l.countryTakenLocked(countryID, playerID) {
		return Snapshot{}, conflict("Country already selected by another player.")
	}

	p.CountryID = countryID
	p.LastSeen = time.Now()
	l.UpdatedAt = p.LastSeen
	return l.snapshotLocked(false, 0), nil
}

// SettingsRequest carries the raw fields for a host settings update.
type SettingsRequest struct {
	PlayerID   string
	MaxPlayers interface{}
	AIEnabled  bool
	Settings   map[string]interface{}
}

// UpdateSettings replaces the lobby configuration. Host-only, open-phase
// only, and the new capacity may not undercut the current roster.
func (l *Lobby) UpdateSettings(req SettingsRequest) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if req.PlayerID != l.HostPlayerID {
		return Snapshot{}, forbidden("Only host can update settings.")
	}
	if l.Status != StatusOpen {
		return Snapshot{}, conflict("Cannot change settings after launch.")
	}
	maxPlayers := NormalizeMaxPlayers(req.MaxPlayers)
	if maxPlayers < len(l.Players) {
		return Snapshot{}, conflict("Max players cannot be below joined players.")
	}

	l.MaxPlayers = maxPlayers
	l.AIEnabled = req.AIEnabled
	l.Settings = NormalizeSettings(req.Settings)
	l.UpdatedAt = time.Now()
	return l.snapshotLocked(false, 0), nil
}
