package services

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/striolo29112007-arch/nakama-game/shared"
)

const seedAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const seedLength = 7

// NewFreshnessToken generates the pre-round seed written when a room is
// created or reset, so clients can tell one room generation from another.
func NewFreshnessToken() (string, error) {
	return gonanoid.Generate(seedAlphabet, seedLength)
}

// ComposeSeed builds the opaque round token the client splits on "|":
// random segment, custom word (or NONE), game mode, event flag. eventRoll
// is the caller's uniform [0,1) draw; the event only ever fires in AKUMA
// mode. The server never parses this token back.
func ComposeSeed(customWord string, gameMode string, eventRoll float64) (string, error) {
	random, err := gonanoid.Generate(seedAlphabet, seedLength)
	if err != nil {
		return "", err
	}

	word := shared.SeedWordNone
	if trimmed := strings.TrimSpace(customWord); trimmed != "" {
		word = strings.ToUpper(trimmed)
	}

	mode := strings.ToUpper(strings.TrimSpace(gameMode))
	if mode == "" {
		mode = shared.GameModeClassic
	}

	event := shared.SeedNoEvent
	if mode == shared.GameModeAkuma && eventRoll < shared.EventChance {
		event = shared.SeedEventRoom
	}

	return strings.Join([]string{random, word, mode, event}, shared.SeedDelimiter), nil
}
