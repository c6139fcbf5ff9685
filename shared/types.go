package shared

import (
	"time"

	"gorm.io/gorm"
)

// State carries the process-wide dependencies handed to every service.
type State struct {
	Database    *gorm.DB
	Environment string
	Authorizer  Authorizer
}

// Member is one (room, player) row. The composite primary key makes joins
// idempotent; a partial unique index on (room_code) WHERE is_leader keeps
// the single-leader invariant even under racing creates.
type Member struct {
	RoomCode   string    `json:"room"     gorm:"column:room_code;primaryKey"`
	PlayerName string    `json:"player"   gorm:"column:player_name;primaryKey"`
	IsLeader   bool      `json:"isLeader" gorm:"column:is_leader"`
	JoinedAt   time.Time `json:"joinedAt" gorm:"column:joined_at"`
}

func (Member) TableName() string {
	return "members"
}

// RoomStatus holds the round state for a room. It exists exactly while the
// room has had at least one member since its last recycling. EjectedPlayer
// is nil until a tally completes.
type RoomStatus struct {
	RoomCode      string  `json:"room"    gorm:"column:room_code;primaryKey"`
	Started       bool    `json:"started" gorm:"column:started"`
	GameSeed      string  `json:"seed"    gorm:"column:game_seed"`
	EjectedPlayer *string `json:"ejected" gorm:"column:ejected_player"`
}

func (RoomStatus) TableName() string {
	return "room_status"
}

// RoundPhase is the explicit round state derived from Started/EjectedPlayer.
type RoundPhase string

const (
	PhaseLobby         RoundPhase = "lobby"
	PhaseInRound       RoundPhase = "in_round"
	PhaseAwaitingReset RoundPhase = "awaiting_reset"
)

// Phase collapses the two status fields into the tagged round state.
func (rs *RoomStatus) Phase() RoundPhase {
	if rs.EjectedPlayer != nil {
		return PhaseAwaitingReset
	}
	if rs.Started {
		return PhaseInRound
	}
	return PhaseLobby
}

// Vote is keyed by (room, voter) so a resubmission overwrites the previous
// target instead of stacking rows.
type Vote struct {
	RoomCode string `json:"room"   gorm:"column:room_code;primaryKey"`
	Voter    string `json:"voter"  gorm:"column:voter;primaryKey"`
	Target   string `json:"target" gorm:"column:target"`
}

func (Vote) TableName() string {
	return "votes"
}

// ChatMessage is the append-only room chat row, purged with its room.
type ChatMessage struct {
	Id         int64     `json:"id"        gorm:"column:id;primaryKey;autoIncrement"`
	RoomCode   string    `json:"-"         gorm:"column:room_code;index"`
	PlayerName string    `json:"player"    gorm:"column:player_name"`
	Content    string    `json:"content"   gorm:"column:content"`
	ReplyTo    *int64    `json:"replyTo"   gorm:"column:reply_to"`
	CreatedAt  time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (ChatMessage) TableName() string {
	return "messages"
}
