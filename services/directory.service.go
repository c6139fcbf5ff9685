package services

import (
	"errors"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/striolo29112007-arch/nakama-game/logger"
	"github.com/striolo29112007-arch/nakama-game/shared"
)

// DirectoryService is the room lifecycle authority: it decides whether a
// room is fresh, stale or absent, and orchestrates creation and recycling.
type DirectoryService struct {
	state  *shared.State
	roster *RosterService
}

func NewDirectoryService(state *shared.State, roster *RosterService) *DirectoryService {
	return &DirectoryService{
		state:  state,
		roster: roster,
	}
}

// JoinOutcome tells the client whether it created the room, joined an
// existing one, or merely reconnected.
type JoinOutcome string

const (
	JoinCreated     JoinOutcome = "created"
	JoinJoined      JoinOutcome = "joined"
	JoinReconnected JoinOutcome = "reconnected"
)

// Join is create-on-join. An absent or stale room is purged and recreated
// with the caller as sole leader; otherwise the caller reconnects (no-op)
// or enrolls as a non-leader member. If two creators race, the store's
// unique indexes fail the loser's transaction and it falls through to
// enroll in the winner's fresh room.
func (directoryService *DirectoryService) Join(room string, player string) (JoinOutcome, error) {
	var members []shared.Member
	err := directoryService.state.Database.
		Where("room_code = ?", room).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		logger.Error("failed to read members of %s: %v", room, err)
		return "", err
	}

	stale := len(members) > 0 && time.Since(members[0].JoinedAt) > shared.RoomTTL

	if len(members) == 0 || stale {
		outcome, err := directoryService.recreate(room, player)
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("failed to recreate room %s: %v", room, err)
			return "", err
		}
		// lost the creation race; join whoever won
	} else {
		for _, member := range members {
			if member.PlayerName == player {
				return JoinReconnected, nil
			}
		}
	}

	return directoryService.enroll(room, player)
}

// purgeRoom drops every entity belonging to the room code.
func purgeRoom(tx *gorm.DB, room string) error {
	for _, model := range []interface{}{
		&shared.Vote{},
		&shared.Member{},
		&shared.RoomStatus{},
		&shared.ChatMessage{},
	} {
		if err := tx.Where("room_code = ?", room).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (directoryService *DirectoryService) recreate(room string, player string) (JoinOutcome, error) {
	token, err := NewFreshnessToken()
	if err != nil {
		return "", err
	}

	err = directoryService.state.Database.Transaction(func(tx *gorm.DB) error {
		if err := purgeRoom(tx, room); err != nil {
			return err
		}

		status := &shared.RoomStatus{RoomCode: room, Started: false, GameSeed: token}
		if err := tx.Create(status).Error; err != nil {
			return err
		}

		return tx.Create(&shared.Member{
			RoomCode:   room,
			PlayerName: player,
			IsLeader:   true,
			JoinedAt:   time.Now(),
		}).Error
	})
	if err != nil {
		return "", err
	}

	logger.Info("room %s created by %s", room, player)
	return JoinCreated, nil
}

func (directoryService *DirectoryService) enroll(room string, player string) (JoinOutcome, error) {
	err := directoryService.state.Database.Create(&shared.Member{
		RoomCode:   room,
		PlayerName: player,
		IsLeader:   false,
		JoinedAt:   time.Now(),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// someone inserted this name between our read and our write
		return JoinReconnected, nil
	}
	if err != nil {
		logger.Error("failed to enroll %s in %s: %v", player, room, err)
		return "", err
	}
	return JoinJoined, nil
}

// RoomListing is one row of the public room directory.
type RoomListing struct {
	RoomCode  string    `json:"room_code"`
	Count     int64     `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the most recently active rooms, newest first, with member
// counts. Activity is the latest member join time.
func (directoryService *DirectoryService) List() ([]RoomListing, error) {
	var listings []RoomListing
	err := directoryService.state.Database.Model(&shared.Member{}).
		Select("room_code, COUNT(*) AS count, MAX(joined_at) AS created_at").
		Group("room_code").
		Order("created_at DESC").
		Limit(shared.MaxListedRooms).
		Scan(&listings).Error
	if err != nil {
		logger.Error("failed to list rooms: %v", err)
		return nil, err
	}
	return listings, nil
}

// Clean is the terminal purge, allowed to the leader or the admin. After a
// clean, get reports the room as gone.
func (directoryService *DirectoryService) Clean(room string, requester string) error {
	leader, err := directoryService.roster.IsLeader(room, requester)
	if err != nil {
		return err
	}
	if !directoryService.state.Authorizer.CanModerate(requester, leader) {
		return shared.ErrForbidden
	}

	err = directoryService.state.Database.Transaction(func(tx *gorm.DB) error {
		return purgeRoom(tx, room)
	})
	if err != nil {
		logger.Error("failed to clean room %s: %v", room, err)
		return err
	}

	logger.Info("room %s cleaned by %s", room, requester)
	return nil
}

// Start is leader-only. It composes the round seed and flips the status to
// started, creating the status row if it went missing rather than failing
// an update against nothing.
func (directoryService *DirectoryService) Start(room string, requester string, gameMode string, customWord string) (string, error) {
	leader, err := directoryService.roster.IsLeader(room, requester)
	if err != nil {
		return "", err
	}
	if !leader {
		return "", shared.ErrForbidden
	}

	seed, err := ComposeSeed(customWord, gameMode, rand.Float64())
	if err != nil {
		logger.Error("failed to compose seed for %s: %v", room, err)
		return "", err
	}

	err = directoryService.state.Database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"started", "game_seed"}),
	}).Create(&shared.RoomStatus{
		RoomCode: room,
		Started:  true,
		GameSeed: seed,
	}).Error
	if err != nil {
		logger.Error("failed to start round in %s: %v", room, err)
		return "", err
	}

	logger.Info("room %s started by %s", room, requester)
	return seed, nil
}
