// Package ident produces tag-prefixed opaque identifiers for lobbies and
// players.
package ident

import "github.com/google/uuid"

// New returns an identifier of the form "<prefix>-<uuid>". The uuid portion
// is a v4 drawn from crypto/rand, so identifiers are collision-resistant and
// not guessable. The prefix exists purely for debuggability.
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
