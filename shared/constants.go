package shared

import "time"

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// HTTP Status Codes
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
)

// RoomTTL is how long a room may live before a join recycles it. The clock
// starts at the oldest member's join time, not at last activity.
const RoomTTL = 30 * time.Minute

// DefaultAdminName is the reserved super-admin name used when ADMIN_NAME is unset.
const DefaultAdminName = "STRIOLO"

// Game modes
const (
	GameModeClassic = "CLASSIC"
	GameModeAkuma   = "AKUMA"
)

// Seed token segments. The token is opaque to the server: it is composed,
// stored and handed to clients, never parsed back.
const (
	SeedDelimiter = "|"
	SeedWordNone  = "NONE"
	SeedEventRoom = "EVENT_ROOM"
	SeedNoEvent   = "NO_EVENT"
)

// EventChance is the probability of the event segment firing in AKUMA mode.
const EventChance = 0.15

// SkipOutcome is the ejection result written when a tally runs with zero votes.
const SkipOutcome = "SKIP"

// Read bounds
const (
	MaxListedRooms  = 10
	MaxChatMessages = 50
)
