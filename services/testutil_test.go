package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/striolo29112007-arch/nakama-game/shared"
)

// newTestState opens an in-memory SQLite store with the same shape as the
// real schema, including the partial unique leader index, so the services
// run against real constraints.
func newTestState(t *testing.T) *shared.State {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	conn, err := db.DB()
	require.NoError(t, err)
	// one connection, or every pooled connection gets its own :memory: db
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&shared.Member{},
		&shared.RoomStatus{},
		&shared.Vote{},
		&shared.ChatMessage{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS members_single_leader ON members (room_code) WHERE is_leader",
	).Error)

	return &shared.State{
		Database:    db,
		Environment: shared.EnvDevelopment,
		Authorizer:  shared.NewAuthorizer(""),
	}
}

type testLobby struct {
	state     *shared.State
	roster    *RosterService
	directory *DirectoryService
	voting    *VotingService
	chat      *ChatService
}

func newTestLobby(t *testing.T) *testLobby {
	t.Helper()
	state := newTestState(t)
	roster := NewRosterService(state)
	return &testLobby{
		state:     state,
		roster:    roster,
		directory: NewDirectoryService(state, roster),
		voting:    NewVotingService(state, roster),
		chat:      NewChatService(state, roster),
	}
}

func (l *testLobby) mustJoin(t *testing.T, room string, players ...string) {
	t.Helper()
	for _, player := range players {
		_, err := l.directory.Join(room, player)
		require.NoError(t, err)
	}
}

// backdate shifts a member's join time into the past.
func (l *testLobby) backdate(t *testing.T, room string, player string, age time.Duration) {
	t.Helper()
	err := l.state.Database.Model(&shared.Member{}).
		Where("room_code = ? AND player_name = ?", room, player).
		Update("joined_at", time.Now().Add(-age)).Error
	require.NoError(t, err)
}

func (l *testLobby) memberCount(t *testing.T, room string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, l.state.Database.Model(&shared.Member{}).
		Where("room_code = ?", room).Count(&count).Error)
	return count
}

func (l *testLobby) leaderCount(t *testing.T, room string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, l.state.Database.Model(&shared.Member{}).
		Where("room_code = ? AND is_leader = ?", room, true).Count(&count).Error)
	return count
}

func (l *testLobby) voteCount(t *testing.T, room string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, l.state.Database.Model(&shared.Vote{}).
		Where("room_code = ?", room).Count(&count).Error)
	return count
}

func (l *testLobby) status(t *testing.T, room string) shared.RoomStatus {
	t.Helper()
	var status shared.RoomStatus
	require.NoError(t, l.state.Database.
		Where("room_code = ?", room).Take(&status).Error)
	return status
}
