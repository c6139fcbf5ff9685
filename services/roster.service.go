package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/striolo29112007-arch/nakama-game/logger"
	"github.com/striolo29112007-arch/nakama-game/shared"
)

// RosterService owns membership and the leader flag for a room.
type RosterService struct {
	state *shared.State
}

func NewRosterService(state *shared.State) *RosterService {
	return &RosterService{
		state: state,
	}
}

// IsLeader is the authorization predicate for start, reset, kick and clean.
// An absent member is simply not a leader.
func (rosterService *RosterService) IsLeader(room string, player string) (bool, error) {
	var member shared.Member
	err := rosterService.state.Database.
		Where("room_code = ? AND player_name = ?", room, player).
		Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		logger.Error("failed to look up leader flag for %s in %s: %v", player, room, err)
		return false, err
	}
	return member.IsLeader, nil
}

// IsMember reports whether the player currently belongs to the room.
func (rosterService *RosterService) IsMember(room string, player string) (bool, error) {
	var count int64
	err := rosterService.state.Database.Model(&shared.Member{}).
		Where("room_code = ? AND player_name = ?", room, player).
		Count(&count).Error
	if err != nil {
		logger.Error("failed to check membership of %s in %s: %v", player, room, err)
		return false, err
	}
	return count > 0, nil
}

// RoomSnapshot is everything a polling client needs in one response.
type RoomSnapshot struct {
	Restart  bool              `json:"restart"`
	Players  []string          `json:"players,omitempty"`
	Leader   string            `json:"leader,omitempty"`
	Started  bool              `json:"started"`
	Seed     string            `json:"seed,omitempty"`
	Ejected  *string           `json:"ejected"`
	HasVoted bool              `json:"hasVoted"`
	Votes    map[string]int    `json:"votes,omitempty"`
	Phase    shared.RoundPhase `json:"phase,omitempty"`
}

// Get returns the room as seen by one player. Restart=true covers both "the
// room is gone" and "you are no longer in it"; the client reacts to either
// by returning to the join screen.
func (rosterService *RosterService) Get(room string, player string) (*RoomSnapshot, error) {
	db := rosterService.state.Database

	var members []shared.Member
	err := db.Where("room_code = ?", room).Order("joined_at ASC").Find(&members).Error
	if err != nil {
		logger.Error("failed to fetch members of %s: %v", room, err)
		return nil, err
	}

	if len(members) == 0 {
		return &RoomSnapshot{Restart: true}, nil
	}

	snapshot := &RoomSnapshot{
		Players: make([]string, 0, len(members)),
		Votes:   map[string]int{},
	}
	present := false
	for _, member := range members {
		snapshot.Players = append(snapshot.Players, member.PlayerName)
		if member.IsLeader {
			snapshot.Leader = member.PlayerName
		}
		if member.PlayerName == player {
			present = true
		}
	}
	if !present {
		return &RoomSnapshot{Restart: true}, nil
	}

	// A missing status row is tolerated with defaults rather than failed.
	var status shared.RoomStatus
	err = db.Where("room_code = ?", room).Take(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status = shared.RoomStatus{RoomCode: room, GameSeed: "default"}
	} else if err != nil {
		logger.Error("failed to fetch status of %s: %v", room, err)
		return nil, err
	}
	snapshot.Started = status.Started
	snapshot.Seed = status.GameSeed
	snapshot.Ejected = status.EjectedPlayer
	snapshot.Phase = status.Phase()

	var myVotes int64
	err = db.Model(&shared.Vote{}).
		Where("room_code = ? AND voter = ?", room, player).
		Count(&myVotes).Error
	if err != nil {
		logger.Error("failed to fetch vote of %s in %s: %v", player, room, err)
		return nil, err
	}
	snapshot.HasVoted = myVotes > 0

	counts, err := countVotesByTarget(db, room)
	if err != nil {
		return nil, err
	}
	for _, row := range counts {
		snapshot.Votes[row.Target] = row.Count
	}

	return snapshot, nil
}

// Kick removes a member. If the member held the leader flag the earliest
// remaining joiner is promoted in the same transaction, so no concurrent
// get can observe a populated room without a leader. Votes cast by the
// target go with them; votes cast against the target stay in the tally.
func (rosterService *RosterService) Kick(room string, requester string, target string) error {
	leader, err := rosterService.IsLeader(room, requester)
	if err != nil {
		return err
	}
	if !rosterService.state.Authorizer.CanModerate(requester, leader) {
		return shared.ErrForbidden
	}

	err = rosterService.state.Database.Transaction(func(tx *gorm.DB) error {
		var victim shared.Member
		err := tx.Where("room_code = ? AND player_name = ?", room, target).Take(&victim).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		err = tx.Where("room_code = ? AND player_name = ?", room, target).
			Delete(&shared.Member{}).Error
		if err != nil {
			return err
		}

		err = tx.Where("room_code = ? AND voter = ?", room, target).
			Delete(&shared.Vote{}).Error
		if err != nil {
			return err
		}

		if !victim.IsLeader {
			return nil
		}

		var heir shared.Member
		err = tx.Where("room_code = ?", room).Order("joined_at ASC").Take(&heir).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// last member kicked; the room empties out and the next
			// join recycles it
			return nil
		}
		if err != nil {
			return err
		}

		return tx.Model(&shared.Member{}).
			Where("room_code = ? AND player_name = ?", room, heir.PlayerName).
			Update("is_leader", true).Error
	})
	if err != nil {
		logger.Error("failed to kick %s from %s: %v", target, room, err)
		return err
	}

	logger.Info("kicked %s from %s (by %s)", target, room, requester)
	return nil
}
