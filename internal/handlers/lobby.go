package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/untilzero/lanlobby/internal/lobby"
)

type createLobbyRequest struct {
	Room       string                 `json:"room"`
	PlayerName string                 `json:"playerName"`
	CountryID  string                 `json:"countryId"`
	MaxPlayers interface{}            `json:"maxPlayers"`
	AIEnabled  *bool                  `json:"aiEnabled"`
	Settings   map[string]interface{} `json:"settings"`
}

type joinRequest struct {
	PlayerName string `json:"playerName"`
	CountryID  string `json:"countryId"`
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

type settingsRequest struct {
	PlayerID   string                 `json:"playerId"`
	MaxPlayers interface{}            `json:"maxPlayers"`
	AIEnabled  *bool                  `json:"aiEnabled"`
	Settings   map[string]interface{} `json:"settings"`
}

type selectCountryRequest struct {
	PlayerID  string `json:"playerId"`
	CountryID string `json:"countryId"`
}

type payloadRequest struct {
	PlayerID string                 `json:"playerId"`
	Payload  map[string]interface{} `json:"payload"`
}

// aiEnabled defaults to true when the field is absent; only an explicit
// false disables it.
func aiEnabled(v *bool) bool {
	return v == nil || *v
}

func (s *Server) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"lobbies": s.store.ListOpen(),
	})
}

func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var body createLobbyRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	l, host := s.store.Create(lobby.CreateRequest{
		Room:       body.Room,
		PlayerName: body.PlayerName,
		CountryID:  body.CountryID,
		MaxPlayers: body.MaxPlayers,
		AIEnabled:  aiEnabled(body.AIEnabled),
		Settings:   body.Settings,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"playerId": host.ID,
		"lobby":    l.View(),
	})
}

// fetchLobby resolves the route's lobby ID through the store's liveness
// refresh, writing the 404 envelope itself when the lobby is gone.
func (s *Server) fetchLobby(w http.ResponseWriter, r *http.Request) (*lobby.Lobby, bool) {
	l, err := s.store.Fetch(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeLobbyError(w, err)
		return nil, false
	}
	return l, true
}

func (s *Server) handlePollLobby(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	playerID := r.URL.Query().Get("playerId")
	since, _ := strconv.Atoi(r.URL.Query().Get("since"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"lobby": l.Poll(playerID, since),
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	var body joinRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, snap, err := l.Join(lobby.JoinRequest{
		PlayerName: body.PlayerName,
		CountryID:  body.CountryID,
	})
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"playerId": p.ID,
		"lobby":    snap,
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	var body playerRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	removed, snap := l.Leave(body.PlayerID)
	if removed {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "removed": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "lobby": snap})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	var body settingsRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := l.UpdateSettings(lobby.SettingsRequest{
		PlayerID:   body.PlayerID,
		MaxPlayers: body.MaxPlayers,
		AIEnabled:  aiEnabled(body.AIEnabled),
		Settings:   body.Settings,
	})
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "lobby": snap})
}

func (s *Server) handleSelectCountry(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	var body selectCountryRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := l.SelectCountry(body.PlayerID, body.CountryID)
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "lobby": snap})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	var body payloadRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := l.Start(body.PlayerID, body.Payload)
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "lobby": snap})
}

func (s *Server) handleHandoff(w http.ResponseWriter, r *http.Request) {
	l, ok := s.fetchLobby(w, r)
	if !ok {
		return
	}
	var body payloadRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := l.Handoff(body.PlayerID, body.Payload)
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "lobby": snap})
}
