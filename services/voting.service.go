package services

import (
	"math/rand"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/striolo29112007-arch/nakama-game/logger"
	"github.com/striolo29112007-arch/nakama-game/shared"
)

// VotingService records votes and resolves the ejection once every member
// has voted.
type VotingService struct {
	state  *shared.State
	roster *RosterService

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewVotingService(state *shared.State, roster *RosterService) *VotingService {
	return &VotingService{
		state:  state,
		roster: roster,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type targetCount struct {
	Target string
	Count  int
}

func countVotesByTarget(db *gorm.DB, room string) ([]targetCount, error) {
	var rows []targetCount
	err := db.Model(&shared.Vote{}).
		Select("target, COUNT(*) AS count").
		Where("room_code = ?", room).
		Group("target").
		Scan(&rows).Error
	if err != nil {
		logger.Error("failed to group votes for %s: %v", room, err)
		return nil, err
	}
	return rows, nil
}

// Vote upserts the voter's row (a resubmission replaces the old target) and
// tallies when the live vote count reaches the live member count. The >= is
// deliberate: a kick can leave more votes than members.
func (votingService *VotingService) Vote(room string, voter string, target string) error {
	member, err := votingService.roster.IsMember(room, voter)
	if err != nil {
		return err
	}
	if !member {
		return shared.ErrForbidden
	}

	db := votingService.state.Database

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_code"}, {Name: "voter"}},
		DoUpdates: clause.AssignmentColumns([]string{"target"}),
	}).Create(&shared.Vote{RoomCode: room, Voter: voter, Target: target}).Error
	if err != nil {
		logger.Error("failed to record vote of %s in %s: %v", voter, room, err)
		return err
	}

	var memberCount, voteCount int64
	err = db.Model(&shared.Member{}).Where("room_code = ?", room).Count(&memberCount).Error
	if err != nil {
		logger.Error("failed to count members of %s: %v", room, err)
		return err
	}
	err = db.Model(&shared.Vote{}).Where("room_code = ?", room).Count(&voteCount).Error
	if err != nil {
		logger.Error("failed to count votes of %s: %v", room, err)
		return err
	}

	if voteCount >= memberCount {
		return votingService.tally(room)
	}
	return nil
}

// tally groups votes by target and writes the winner to the status row.
// Ties at the maximum are broken uniformly at random; SKIP is only possible
// with zero vote rows. Re-running on late votes just re-applies the rule.
func (votingService *VotingService) tally(room string) error {
	db := votingService.state.Database

	rows, err := countVotesByTarget(db, room)
	if err != nil {
		return err
	}

	ejected := shared.SkipOutcome
	if len(rows) > 0 {
		max := 0
		for _, row := range rows {
			if row.Count > max {
				max = row.Count
			}
		}
		tied := make([]string, 0, len(rows))
		for _, row := range rows {
			if row.Count == max {
				tied = append(tied, row.Target)
			}
		}
		ejected = tied[0]
		if len(tied) > 1 {
			ejected = votingService.pickTied(tied)
		}
	}

	err = db.Model(&shared.RoomStatus{}).
		Where("room_code = ?", room).
		Update("ejected_player", ejected).Error
	if err != nil {
		logger.Error("failed to write tally outcome for %s: %v", room, err)
		return err
	}

	logger.Info("room %s tallied, ejected %s", room, ejected)
	return nil
}

func (votingService *VotingService) pickTied(tied []string) string {
	votingService.rngMu.Lock()
	defer votingService.rngMu.Unlock()
	return tied[votingService.rng.Intn(len(tied))]
}

// Reset is leader-only. It clears all votes and the round flags but keeps
// membership, and rotates the freshness token so clients can tell a reset
// room from one where no round ever ran.
func (votingService *VotingService) Reset(room string, requester string) error {
	leader, err := votingService.roster.IsLeader(room, requester)
	if err != nil {
		return err
	}
	if !leader {
		return shared.ErrForbidden
	}

	token, err := NewFreshnessToken()
	if err != nil {
		logger.Error("failed to generate reset token for %s: %v", room, err)
		return err
	}

	err = votingService.state.Database.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("room_code = ?", room).Delete(&shared.Vote{}).Error
		if err != nil {
			return err
		}
		return tx.Model(&shared.RoomStatus{}).
			Where("room_code = ?", room).
			Updates(map[string]interface{}{
				"started":        false,
				"ejected_player": nil,
				"game_seed":      token,
			}).Error
	})
	if err != nil {
		logger.Error("failed to reset room %s: %v", room, err)
		return err
	}

	logger.Info("room %s reset by %s", room, requester)
	return nil
}
