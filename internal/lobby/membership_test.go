package lobby

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAllocatesSlotsInOrder(t *testing.T) {
	s := newTestStore(t)
	l, _ := s.Create(CreateRequest{})

	var slots []string
	for _, name := range []string{"Two", "Three", "Four"} {
		p, _, err := l.Join(JoinRequest{PlayerName: name})
		require.NoError(t, err)
		slots = append(slots, p.OwnerSlot)
	}
	assert.Equal(t, []string{"ai1", "ai2", "ai3"}, slots)
	assertUniqueSlots(t, l)
}

func TestJoinFullLobby(t *testing.T) {
	s := newTestStore(t)
	l, _ := s.Create(CreateRequest{MaxPlayers: float64(2)})
	_, _, err := l.Join(JoinRequest{PlayerName: "Two"})
	require.NoError(t, err)

	_, _, err = l.Join(JoinRequest{PlayerName: "Three"})
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, CodeConflict, lerr.Code)
	assert.Equal(t, "Lobby is full.", lerr.Message)
}

func TestJoinAfterStart(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{CountryID: "japan"})
	_, _, err := l.Join(JoinRequest{PlayerName: "Two", CountryID: "india"})
	require.NoError(t, err)
	_, err = l.Start(host.ID, map[string]interface{}{"turn": float64(1)})
	require.NoError(t, err)

	_, _, err = l.Join(JoinRequest{PlayerName: "Late"})
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, CodeConflict, lerr.Code)
}

func TestJoinCountryConflictLeavesUnassigned(t *testing.T) {
	s := newTestStore(t)
	l, _ := s.Create(CreateRequest{CountryID: "japan"})

	p, _, err := l.Join(JoinRequest{PlayerName: "Two", CountryID: "japan"})
	require.NoError(t, err)
	assert.Equal(t, "", p.CountryID, "conflicting request joins unassigned")

	q, _, err := l.Join(JoinRequest{PlayerName: "Three", CountryID: "atlantis"})
	require.NoError(t, err)
	assert.Equal(t, "", q.CountryID, "unknown country joins unassigned")

	// No two members share a non-empty country.
	seen := map[string]bool{}
	for _, m := range l.Players {
		if m.CountryID == "" {
			continue
		}
		assert.False(t, seen[m.CountryID])
		seen[m.CountryID] = true
	}
}

func TestLeaveHostDestroysLobby(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{})
	_, _, err := l.Join(JoinRequest{PlayerName: "Two"})
	require.NoError(t, err)

	removed, _ := l.Leave(host.ID)
	assert.True(t, removed)

	_, err = s.Fetch(l.ID)
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLeaveLastPlayerDestroysLobby(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{})

	removed, _ := l.Leave(host.ID)
	assert.True(t, removed)
	assert.Equal(t, 0, s.Len())
}

func TestLeaveActivePlayerResetsBaton(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{CountryID: "japan"})
	second, _, err := l.Join(JoinRequest{PlayerName: "Two", CountryID: "india"})
	require.NoError(t, err)
	third, _, err := l.Join(JoinRequest{PlayerName: "Three", CountryID: "brazil"})
	require.NoError(t, err)

	_, err = l.Start(host.ID, map[string]interface{}{"turn": float64(1)})
	require.NoError(t, err)
	_, err = l.Handoff(host.ID, map[string]interface{}{"turn": float64(2)})
	require.NoError(t, err)
	require.Equal(t, second.ID, l.ActivePlayerID)

	// The baton holder leaves: ownership snaps to the first roster member,
	// not to the member after the departed one.
	removed, snap := l.Leave(second.ID)
	assert.False(t, removed)
	assert.Equal(t, host.ID, snap.ActivePlayerID)
	assert.NotEqual(t, third.ID, snap.ActivePlayerID)
}

func TestLeaveNonActivePlayerKeepsBaton(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{CountryID: "japan"})
	second, _, err := l.Join(JoinRequest{PlayerName: "Two", CountryID: "india"})
	require.NoError(t, err)
	_, _, err = l.Join(JoinRequest{PlayerName: "Three", CountryID: "brazil"})
	require.NoError(t, err)

	_, err = l.Start(host.ID, map[string]interface{}{"turn": float64(1)})
	require.NoError(t, err)

	removed, snap := l.Leave(second.ID)
	assert.False(t, removed)
	assert.Equal(t, host.ID, snap.ActivePlayerID)
}

func TestSelectCountry(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{})
	second, _, err := l.Join(JoinRequest{PlayerName: "Two"})
	require.NoError(t, err)

	t.Run("invalid country", func(t *testing.T) {
		_, err := l.SelectCountry(host.ID, "atlantis")
		var lerr *Error
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, CodeBadRequest, lerr.Code)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := l.SelectCountry("player-ghost", "japan")
		var lerr *Error
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, CodeForbidden, lerr.Code)
	})

	t.Run("grants and refreshes liveness", func(t *testing.T) {
		before := time.Now().Add(-time.Minute)
		host.LastSeen = before
		_, err := l.SelectCountry(host.ID, "japan")
		require.NoError(t, err)
		assert.Equal(t, "japan", host.CountryID)
		assert.True(t, host.LastSeen.After(before))
	})

	t.Run("conflict with another member", func(t *testing.T) {
		_, err := l.SelectCountry(second.ID, "japan")
		var lerr *Error
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, CodeConflict, lerr.Code)
	})

	t.Run("reselecting own country is allowed", func(t *testing.T) {
		_, err := l.SelectCountry(host.ID, "japan")
		require.NoError(t, err)
	})
}

func TestUpdateSettings(t *testing.T) {
	s := newTestStore(t)
	l, host := s.Create(CreateRequest{})
	second, _, err := l.Join(JoinRequest{PlayerName: "Two"})
	require.NoError(t, err)

	t.Run("non-host forbidden", func(t *testing.T) {
		_, err := l.UpdateSettings(SettingsRequest{PlayerID: second.ID})
		var lerr *Error
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, CodeForbidden, lerr.Code)
	})

	t.Run("capacity below roster rejected", func(t *testing.T) {
		_, _, err := l.Join(JoinRequest{PlayerName: "Three"})
		require.NoError(t, err)
		_, err = l.UpdateSettings(SettingsRequest{
			PlayerID:   host.ID,
			MaxPlayers: float64(2),
			AIEnabled:  true,
		})
		var lerr *Error
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, CodeConflict, lerr.Code)
	})

	t.Run("host update applies", func(t *testing.T) {
		snap, err := l.UpdateSettings(SettingsRequest{
			PlayerID:   host.ID,
			MaxPlayers: float64(3),
			AIEnabled:  false,
			Settings:   map[string]interface{}{"difficulty": "hard"},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, snap.MaxPlayers)
		assert.False(t, snap.AIEnabled)
		assert.Equal(t, "hard", snap.Settings.Difficulty)
	})

	t.Run("rejected after start", func(t *testing.T) {
		for i, p := range l.Players {
			p.CountryID = []string{"japan", "india", "brazil"}[i]
		}
		_, err := l.Start(host.ID, map[string]interface{}{"turn": float64(1)})
		require.NoError(t, err)

		_, err = l.UpdateSettings(SettingsRequest{PlayerID: host.ID, MaxPlayers: float64(4), AIEnabled: true})
		var lerr *Error
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, CodeConflict, lerr.Code)
	})
}

func TestNormalizeOwnerSlots(t *testing.T) {
	s := newTestStore(t)
	l, _ := s.Create(CreateRequest{})
	_, _, err := l.Join(JoinRequest{PlayerName: "Two"})
	require.NoError(t, err)
	_, _, err = l.Join(JoinRequest{PlayerName: "Three"})
	require.NoError(t, err)

	// Corrupt the slots: a duplicate and an out-of-set value.
	l.Players[1].OwnerSlot = "player"
	l.Players[2].OwnerSlot = "captain"

	l.normalizeOwnerSlotsLocked()
	assert.Equal(t, "player", l.Players[0].OwnerSlot)
	assert.Equal(t, "ai1", l.Players[1].OwnerSlot)
	assert.Equal(t, "ai2", l.Players[2].OwnerSlot)
	assertUniqueSlots(t, l)

	// Idempotent.
	l.normalizeOwnerSlotsLocked()
	assert.Equal(t, "ai1", l.Players[1].OwnerSlot)
}
