package lobby

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonicalization bounds and fallbacks. Sanitizers are total: any input,
// however malformed, maps to a valid bounded value.
const (
	DefaultRoom       = "empires-room"
	DefaultPlayerName = "Commander"

	maxRoomLen = 32
	maxNameLen = 24

	minLobbyPlayers     = 2
	maxLobbyPlayers     = 4
	defaultLobbyPlayers = 4

	minPassPlayers     = 2
	maxPassPlayers     = 6
	defaultPassPlayers = 2
)

// DefaultSettings are the values substituted for missing or invalid fields.
var DefaultSettings = Settings{
	PlayMode:     "network",
	MapPreset:    "world-1850",
	RulesPreset:  "classic",
	Difficulty:   "very-easy",
	CampaignMode: "deathmatch",
	PassPlayers:  defaultPassPlayers,
}

var (
	roomJunk  = regexp.MustCompile(`[^a-z0-9-]+`)
	spaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeRoom canonicalizes a room label: trimmed, lowercased, runs of
// characters outside [a-z0-9-] collapsed to single hyphens, edge hyphens
// stripped, truncated to 32 chars, falling back to DefaultRoom when empty.
func SanitizeRoom(value string) string {
	raw := strings.ToLower(strings.TrimSpace(value))
	cleaned := roomJunk.ReplaceAllString(raw, "-")
	cleaned = strings.Trim(cleaned, "-")
	if len(cleaned) > maxRoomLen {
		cleaned = cleaned[:maxRoomLen]
	}
	if cleaned == "" {
		return DefaultRoom
	}
	return cleaned
}

// SanitizeName canonicalizes a display name: trimmed, internal whitespace
// runs collapsed to single spaces, truncated to 24 chars, falling back to
// DefaultPlayerName when empty.
func SanitizeName(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return DefaultPlayerName
	}
	collapsed := spaceRuns.ReplaceAllString(raw, " ")
	runes := []rune(collapsed)
	if len(runes) > maxNameLen {
		runes = runes[:maxNameLen]
	}
	return string(runes)
}

// NormalizeCountry accepts only members of the fixed country set; anything
// else means unassigned.
func NormalizeCountry(value string) string {
	if CountryIDs[value] {
		return value
	}
	return ""
}

// NormalizeMaxPlayers parses the lobby capacity from an untyped JSON value
// and clamps it to [2,4], defaulting to 4 when missing or unparseable.
func NormalizeMaxPlayers(value interface{}) int {
	n, ok := coerceInt(value)
	if !ok || n == 0 {
		n = defaultLobbyPlayers
	}
	return clampInt(n, minLobbyPlayers, maxLobbyPlayers)
}

// NormalizeSettings coerces an untyped settings object into the fixed shape,
// substituting defaults for missing or invalid fields. PlayMode is always
// "network"; PassPlayers is clamped to [2,6].
func NormalizeSettings(source map[string]interface{}) Settings {
	s := DefaultSettings
	s.MapPreset = coerceString(source["mapPreset"], DefaultSettings.MapPreset)
	s.RulesPreset = coerceString(source["rulesPreset"], DefaultSettings.RulesPreset)
	s.Difficulty = coerceString(source["difficulty"], DefaultSettings.Difficulty)
	s.CampaignMode = coerceString(source["campaignMode"], DefaultSettings.CampaignMode)
	if n, ok := coerceInt(source["passPlayers"]); ok && n != 0 {
		s.PassPlayers = clampInt(n, minPassPlayers, maxPassPlayers)
	}
	return s
}

func coerceString(value interface{}, fallback string) string {
	switch v := value.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case bool:
		if v {
			return "true"
		}
	}
	return fallback
}

func coerceInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
