package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/untilzero/lanlobby/internal/ident"
)

// DefaultPlayerTTL is the staleness threshold: members silent for longer
// are evicted on the next liveness refresh.
const DefaultPlayerTTL = 45 * time.Second

// Store manages active ephemeral lobbies in memory. It provides thread-safe
// access to create, fetch, list, and delete lobbies, and owns the liveness
// policy. There is no persistence; a process restart drops everything.
type Store struct {
	mu        sync.Mutex
	lobbies   map[string]*Lobby
	playerTTL time.Duration
	log       *logrus.Logger
}

// NewStore returns an empty Store evicting members silent longer than
// playerTTL; a non-positive TTL selects DefaultPlayerTTL.
func NewStore(log *logrus.Logger, playerTTL time.Duration) *Store {
	if playerTTL <= 0 {
		playerTTL = DefaultPlayerTTL
	}
	return &Store{
		lobbies:   make(map[string]*Lobby),
		playerTTL: playerTTL,
		log:       log,
	}
}

// CreateRequest carries the raw, unsanitized fields for a new lobby.
// MaxPlayers is untyped because clients send it as either a number or a
// string; the sanitizer sorts it out.
type CreateRequest struct {
	Room       string
	PlayerName string
	CountryID  string
	MaxPlayers interface{}
	AIEnabled  bool
	Settings   map[string]interface{}
}

// Create registers a new open lobby whose sole member is the host, holding
// the first owner slot and the initial turn baton. It never fails.
func (s *Store) Create(req CreateRequest) (*Lobby, *Player) {
	now := time.Now()
	host := &Player{
		ID:        ident.New("player"),
		Name:      SanitizeName(req.PlayerName),
		CountryID: NormalizeCountry(req.CountryID),
		OwnerSlot: OwnerSlots[0],
		JoinedAt:  now,
		LastSeen:  now,
	}
	l := &Lobby{
		ID:             ident.New("lobby"),
		Room:           SanitizeRoom(req.Room),
		HostPlayerID:   host.ID,
		Status:         StatusOpen,
		MaxPlayers:     NormalizeMaxPlayers(req.MaxPlayers),
		AIEnabled:      req.AIEnabled,
		Settings:       NormalizeSettings(req.Settings),
		Players:        []*Player{host},
		ActivePlayerID: host.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	l.onEmpty = func(lobbyID string) {
		s.Delete(lobbyID)
	}

	s.mu.Lock()
	s.lobbies[l.ID] = l
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"lobby": l.ID,
		"room":  l.Room,
		"host":  host.ID,
	}).Info("lobby created")
	return l, host
}

// Fetch returns the lobby after a liveness refresh, touching its updatedAt.
// A missing entry, or one whose refresh leaves it without a viable roster,
// reports NotFound; the dead entry is removed on the way out.
func (s *Store) Fetch(id string) (*Lobby, error) {
	s.mu.Lock()
	l, ok := s.lobbies[id]
	s.mu.Unlock()
	if !ok {
		return nil, notFound("Lobby not found.")
	}

	now := time.Now()
	l.mu.Lock()
	alive := l.refreshLocked(now, s.playerTTL)
	if alive {
		l.UpdatedAt = now
	}
	l.mu.Unlock()

	if !alive {
		s.Delete(id)
		return nil, notFound("Lobby is no longer active.")
	}
	return l, nil
}

// ListOpen refreshes every lobby, drops the dead ones, and returns summary
// snapshots of those still in open status, in no particular order.
func (s *Store) ListOpen() []Snapshot {
	open := []Snapshot{}
	for _, l := range s.all() {
		l.mu.Lock()
		if !l.refreshLocked(time.Now(), s.playerTTL) {
			l.mu.Unlock()
			s.Delete(l.ID)
			continue
		}
		if l.Status == StatusOpen {
			open = append(open, l.snapshotLocked(false, 0))
		}
		l.mu.Unlock()
	}
	return open
}

// Delete removes a lobby unconditionally. Safe to call for IDs that are
// already gone.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, ok := s.lobbies[id]
	if ok {
		delete(s.lobbies, id)
	}
	s.mu.Unlock()
	if ok {
		s.log.WithField("lobby", id).Info("lobby deleted")
	}
}

// Len reports the number of lobbies currently held, dead or alive.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lobbies)
}

// RunSweeper evicts stale lobbies on a fixed interval until ctx is done.
// Liveness is still enforced lazily on every read; the sweep only bounds
// worst-case memory for lobbies nobody polls anymore.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	swept := 0
	for _, l := range s.all() {
		l.mu.Lock()
		alive := l.refreshLocked(time.Now(), s.playerTTL)
		l.mu.Unlock()
		if !alive {
			s.Delete(l.ID)
			swept++
		}
	}
	if swept > 0 {
		s.log.WithField("count", swept).Info("swept stale lobbies")
	}
}

// all returns a snapshot of the current lobby pointers so callers can
// iterate without holding the store lock.
func (s *Store) all() []*Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Lobby, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		out = append(out, l)
	}
	return out
}
