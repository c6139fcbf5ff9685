package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/striolo29112007-arch/nakama-game/shared"
)

func TestIsLeader(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB")

	leader, err := l.roster.IsLeader("ROOM1", "ALICE")
	require.NoError(t, err)
	assert.True(t, leader)

	leader, err = l.roster.IsLeader("ROOM1", "BOB")
	require.NoError(t, err)
	assert.False(t, leader)

	leader, err = l.roster.IsLeader("ROOM1", "NOBODY")
	require.NoError(t, err)
	assert.False(t, leader)
}

func TestGetSignalsRestartForMissingRoom(t *testing.T) {
	l := newTestLobby(t)

	snapshot, err := l.roster.Get("NOROOM", "ALICE")
	require.NoError(t, err)
	assert.True(t, snapshot.Restart)
}

func TestGetSignalsRestartForNonMember(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE")

	snapshot, err := l.roster.Get("ROOM1", "BOB")
	require.NoError(t, err)
	assert.True(t, snapshot.Restart)
}

func TestGetReturnsFullSnapshot(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB", "CAROL")
	require.NoError(t, l.voting.Vote("ROOM1", "BOB", "CAROL"))

	snapshot, err := l.roster.Get("ROOM1", "BOB")
	require.NoError(t, err)

	assert.False(t, snapshot.Restart)
	assert.Equal(t, []string{"ALICE", "BOB", "CAROL"}, snapshot.Players)
	assert.Equal(t, "ALICE", snapshot.Leader)
	assert.False(t, snapshot.Started)
	assert.NotEmpty(t, snapshot.Seed)
	assert.Nil(t, snapshot.Ejected)
	assert.True(t, snapshot.HasVoted)
	assert.Equal(t, map[string]int{"CAROL": 1}, snapshot.Votes)
	assert.Equal(t, shared.PhaseLobby, snapshot.Phase)

	snapshot, err = l.roster.Get("ROOM1", "ALICE")
	require.NoError(t, err)
	assert.False(t, snapshot.HasVoted)
}

func TestGetPhaseFollowsRound(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB")

	_, err := l.directory.Start("ROOM1", "ALICE", "", "")
	require.NoError(t, err)

	snapshot, err := l.roster.Get("ROOM1", "ALICE")
	require.NoError(t, err)
	assert.Equal(t, shared.PhaseInRound, snapshot.Phase)
	assert.True(t, snapshot.Started)

	require.NoError(t, l.voting.Vote("ROOM1", "ALICE", "BOB"))
	require.NoError(t, l.voting.Vote("ROOM1", "BOB", "BOB"))

	snapshot, err = l.roster.Get("ROOM1", "ALICE")
	require.NoError(t, err)
	assert.Equal(t, shared.PhaseAwaitingReset, snapshot.Phase)
	require.NotNil(t, snapshot.Ejected)
	assert.Equal(t, "BOB", *snapshot.Ejected)
}

func TestGetToleratesMissingStatusRow(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE")
	require.NoError(t, l.state.Database.
		Where("room_code = ?", "ROOM1").Delete(&shared.RoomStatus{}).Error)

	snapshot, err := l.roster.Get("ROOM1", "ALICE")
	require.NoError(t, err)
	assert.False(t, snapshot.Restart)
	assert.False(t, snapshot.Started)
	assert.Equal(t, "default", snapshot.Seed)
	assert.Nil(t, snapshot.Ejected)
}

func TestKickRequiresLeaderOrAdmin(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB", "CAROL")

	err := l.roster.Kick("ROOM1", "BOB", "CAROL")
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.EqualValues(t, 3, l.memberCount(t, "ROOM1"))

	require.NoError(t, l.roster.Kick("ROOM1", shared.DefaultAdminName, "CAROL"))
	assert.EqualValues(t, 2, l.memberCount(t, "ROOM1"))
}

func TestKickRemovesMemberAndTheirVote(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB", "CAROL")
	require.NoError(t, l.voting.Vote("ROOM1", "BOB", "ALICE"))
	require.NoError(t, l.voting.Vote("ROOM1", "CAROL", "BOB"))

	require.NoError(t, l.roster.Kick("ROOM1", "ALICE", "BOB"))

	snapshot, err := l.roster.Get("ROOM1", "BOB")
	require.NoError(t, err)
	assert.True(t, snapshot.Restart)

	// BOB's own vote is gone, the vote cast against BOB stays in the tally
	var votes []shared.Vote
	require.NoError(t, l.state.Database.
		Where("room_code = ?", "ROOM1").Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, "CAROL", votes[0].Voter)
	assert.Equal(t, "BOB", votes[0].Target)
}

func TestKickLeaderPromotesEarliestJoiner(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB", "CAROL")
	l.backdate(t, "ROOM1", "ALICE", 3*time.Minute)
	l.backdate(t, "ROOM1", "BOB", 2*time.Minute)
	l.backdate(t, "ROOM1", "CAROL", 1*time.Minute)

	require.NoError(t, l.roster.Kick("ROOM1", "ALICE", "ALICE"))

	leader, err := l.roster.IsLeader("ROOM1", "BOB")
	require.NoError(t, err)
	assert.True(t, leader)
	assert.EqualValues(t, 1, l.leaderCount(t, "ROOM1"))
}

func TestKickLastMemberLeavesEmptyRoom(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE")

	require.NoError(t, l.roster.Kick("ROOM1", "ALICE", "ALICE"))
	assert.EqualValues(t, 0, l.memberCount(t, "ROOM1"))

	// the status row survives until the next join recycles the room
	status := l.status(t, "ROOM1")
	assert.False(t, status.Started)
}

func TestKickAbsentTargetIsNoOp(t *testing.T) {
	l := newTestLobby(t)
	l.mustJoin(t, "ROOM1", "ALICE", "BOB")

	require.NoError(t, l.roster.Kick("ROOM1", "ALICE", "NOBODY"))
	assert.EqualValues(t, 2, l.memberCount(t, "ROOM1"))
	assert.EqualValues(t, 1, l.leaderCount(t, "ROOM1"))
}
