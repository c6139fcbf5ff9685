package services

import (
	"strings"
	"time"

	"github.com/striolo29112007-arch/nakama-game/logger"
	"github.com/striolo29112007-arch/nakama-game/shared"
)

// ChatService is the room chat collaborator: append-only, read in insertion
// order with a bounded window, purged whenever its room is purged.
type ChatService struct {
	state  *shared.State
	roster *RosterService
}

func NewChatService(state *shared.State, roster *RosterService) *ChatService {
	return &ChatService{
		state:  state,
		roster: roster,
	}
}

// Send appends a message. Blank content is ignored without error; the
// returned bool says whether anything was stored.
func (chatService *ChatService) Send(room string, player string, content string, replyTo *int64) (bool, error) {
	member, err := chatService.roster.IsMember(room, player)
	if err != nil {
		return false, err
	}
	if !member {
		return false, shared.ErrForbidden
	}

	if strings.TrimSpace(content) == "" {
		return false, nil
	}

	err = chatService.state.Database.Create(&shared.ChatMessage{
		RoomCode:   room,
		PlayerName: player,
		Content:    content,
		ReplyTo:    replyTo,
		CreatedAt:  time.Now(),
	}).Error
	if err != nil {
		logger.Error("failed to store message from %s in %s: %v", player, room, err)
		return false, err
	}
	return true, nil
}

// Recent returns the room's messages in insertion order, capped at the
// read window.
func (chatService *ChatService) Recent(room string, player string) ([]shared.ChatMessage, error) {
	member, err := chatService.roster.IsMember(room, player)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, shared.ErrForbidden
	}

	var messages []shared.ChatMessage
	err = chatService.state.Database.
		Where("room_code = ?", room).
		Order("id ASC").
		Limit(shared.MaxChatMessages).
		Find(&messages).Error
	if err != nil {
		logger.Error("failed to fetch messages of %s: %v", room, err)
		return nil, err
	}
	return messages, nil
}
