// Package lobby implements the session state machine for LAN matches:
// lobby creation, membership with liveness expiry, commander-slot and
// country allocation, turn rotation, and the versioned payload handoff.
package lobby

import (
	"sync"
	"time"
)

// Lobby status values. The transition is one-way: open -> started.
const (
	StatusOpen    = "open"
	StatusStarted = "started"
)

// OwnerSlots is the fixed commander-seat set in priority order. Slots are
// allocated lowest-free-first and are unique within a lobby.
var OwnerSlots = []string{"player", "ai1", "ai2", "ai3"}

// CountryIDs is the fixed faction set. A non-empty country is held by at
// most one member of a lobby at a time.
var CountryIDs = map[string]bool{
	"united-states":  true,
	"united-kingdom": true,
	"japan":          true,
	"south-africa":   true,
	"russia":         true,
	"india":          true,
	"brazil":         true,
}

// Settings is the fixed-shape match configuration. PlayMode is pinned to
// "network"; the rest is host-editable while the lobby is open.
type Settings struct {
	PlayMode     string `json:"playMode"`
	MapPreset    string `json:"mapPreset"`
	RulesPreset  string `json:"rulesPreset"`
	Difficulty   string `json:"difficulty"`
	CampaignMode string `json:"campaignMode"`
	PassPlayers  int    `json:"passPlayers"`
}

// Player is a roster member. Roster order is insertion order and determines
// turn rotation. LastSeen is refreshed by any request carrying the player's
// ID; members beyond the staleness TTL are evicted on the next refresh.
type Player struct {
	ID        string
	Name      string
	CountryID string
	OwnerSlot string
	JoinedAt  time.Time
	LastSeen  time.Time
}

// Lobby is one ephemeral match session. All fields are guarded by mu; every
// exported operation locks for its full duration so no caller observes a
// partially applied mutation. Lobbies are independent of each other.
type Lobby struct {
	ID             string
	Room           string
	HostPlayerID   string
	Status         string
	MaxPlayers     int
	AIEnabled      bool
	Settings       Settings
	Players        []*Player
	ActivePlayerID string
	Payload        map[string]interface{}
	PayloadVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// onEmpty is invoked (without mu held) when a mutation leaves the lobby
	// without a viable roster: host gone or zero members. Wired by the Store
	// at creation time to delete the entry, mirroring how the store learns
	// about lobbies that dissolve from the inside.
	onEmpty func(lobbyID string)

	mu sync.Mutex
}

// PlayerInfo is the wire form of a roster member.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CountryID string `json:"countryId"`
	OwnerSlot string `json:"ownerSlot"`
	IsHost    bool   `json:"isHost"`
}

// Snapshot is the wire form of a lobby. Payload is non-nil only on detail
// fetches whose version is beyond the caller's since watermark; timestamps
// are Unix milliseconds.
type Snapshot struct {
	ID             string                 `json:"id"`
	Room           string                 `json:"room"`
	Status         string                 `json:"status"`
	HostPlayerID   string                 `json:"hostPlayerId"`
	MaxPlayers     int                    `json:"maxPlayers"`
	AIEnabled      bool                   `json:"aiEnabled"`
	Settings       Settings               `json:"settings"`
	PlayerCount    int                    `json:"playerCount"`
	Players        []PlayerInfo           `json:"players"`
	ActivePlayerID string                 `json:"activePlayerId"`
	PayloadVersion int                    `json:"payloadVersion"`
	Payload        map[string]interface{} `json:"payload"`
	CreatedAt      int64                  `json:"createdAt"`
	UpdatedAt      int64                  `json:"updatedAt"`
}

// Poll returns a detail snapshot. A recognized playerID refreshes that
// member's liveness; the payload is included only when PayloadVersion is
// strictly greater than since.
func (l *Lobby) Poll(playerID string, since int) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if playerID != "" {
		if p := l.findPlayer(playerID); p != nil {
			p.LastSeen = time.Now()
			l.UpdatedAt = p.LastSeen
		}
	}
	return l.snapshotLocked(true, since)
}

// View returns a summary snapshot without the payload.
func (l *Lobby) View() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked(false, 0)
}

func (l *Lobby) snapshotLocked(includePayload bool, since int) Snapshot {
	if since < 0 {
		since = 0
	}
	players := make([]PlayerInfo, 0, len(l.Players))
	for _, p := range l.Players {
		slot := p.OwnerSlot
		if !isValidOwnerSlot(slot) {
			slot = ""
		}
		players = append(players, PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			CountryID: p.CountryID,
			OwnerSlot: slot,
			IsHost:    p.ID == l.HostPlayerID,
		})
	}
	snap := Snapshot{
		ID:             l.ID,
		Room:           l.Room,
		Status:         l.Status,
		HostPlayerID:   l.HostPlayerID,
		MaxPlayers:     l.MaxPlayers,
		AIEnabled:      l.AIEnabled,
		Settings:       l.Settings,
		PlayerCount:    len(l.Players),
		Players:        players,
		ActivePlayerID: l.ActivePlayerID,
		PayloadVersion: l.PayloadVersion,
		CreatedAt:      l.CreatedAt.UnixMilli(),
		UpdatedAt:      l.UpdatedAt.UnixMilli(),
	}
	if includePayload && l.Payload != nil && l.PayloadVersion > since {
		snap.Payload = l.Payload
	}
	return snap
}

func (l *Lobby) findPlayer(id string) *Player {
	for _, p := range l.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (l *Lobby) countryTakenLocked(countryID, exceptPlayerID string) bool {
	for _, p := range l.Players {
		if p.ID != exceptPlayerID && p.CountryID == countryID {
			return true
		}
	}
	return false
}

func isValidOwnerSlot(slot string) bool {
	for _, s := range OwnerSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// freeOwnerSlotLocked returns the lowest-priority slot not held by a member,
// or "" when all four are taken.
func (l *Lobby) freeOwnerSlotLocked() string {
	taken := make(map[string]bool, len(l.Players))
	for _, p := range l.Players {
		if isValidOwnerSlot(p.OwnerSlot) {
			taken[p.OwnerSlot] = true
		}
	}
	for _, slot := range OwnerSlots {
		if !taken[slot] {
			return slot
		}
	}
	return ""
}

// normalizeOwnerSlotsLocked re-establishes slot uniqueness: members keep a
// valid, first-claimed slot; anyone holding an invalid or duplicated slot is
// reassigned the lowest free one. Idempotent.
func (l *Lobby) normalizeOwnerSlotsLocked() {
	taken := make(map[string]bool, len(l.Players))
	for _, p := range l.Players {
		if isValidOwnerSlot(p.OwnerSlot) && !taken[p.OwnerSlot] {
			taken[p.OwnerSlot] = true
			continue
		}
		next := ""
		for _, slot := range OwnerSlots {
			if !taken[slot] {
				next = slot
				break
			}
		}
		p.OwnerSlot = next
		if next != "" {
			taken[next] = true
		}
	}
}

// refreshLocked drops members not seen within ttl and re-establishes the
// roster invariants. Reports false when the lobby is no longer viable
// (empty roster or host evicted) and should be deleted by the caller.
func (l *Lobby) refreshLocked(now time.Time, ttl time.Duration) bool {
	kept := l.Players[:0]
	for _, p := range l.Players {
		if now.Sub(p.LastSeen) <= ttl {
			kept = append(kept, p)
		}
	}
	l.Players = kept
	if len(l.Players) == 0 {
		return false
	}
	if l.findPlayer(l.HostPlayerID) == nil {
		return false
	}
	// MaxPlayers can drop below the roster size only through settings
	// edits; truncate in existing order.
	if len(l.Players) > l.MaxPlayers {
		l.Players = l.Players[:l.MaxPlayers]
	}
	l.normalizeOwnerSlotsLocked()
	if l.Status == StatusStarted && l.findPlayer(l.ActivePlayerID) == nil {
		l.ActivePlayerID = l.Players[0].ID
	}
	return true
}
