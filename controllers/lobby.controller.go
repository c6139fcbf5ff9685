package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/striolo29112007-arch/nakama-game/logger"
	"github.com/striolo29112007-arch/nakama-game/services"
	"github.com/striolo29112007-arch/nakama-game/shared"
)

// ActionRequest is the single polling request body. Room and player are
// normalized before any service sees them.
type ActionRequest struct {
	Action     string `json:"action" validate:"required"`
	Room       string `json:"room"`
	Player     string `json:"player"`
	Target     string `json:"target"`
	GameMode   string `json:"gameMode"`
	CustomWord string `json:"customWord"`
	Content    string `json:"content"`
	ReplyTo    *int64 `json:"replyTo"`
}

// LobbyController dispatches the action table over the lobby services.
type LobbyController struct {
	directory *services.DirectoryService
	roster    *services.RosterService
	voting    *services.VotingService
	chat      *services.ChatService
	validate  *validator.Validate
}

func NewLobbyController(state *shared.State) *LobbyController {
	roster := services.NewRosterService(state)
	return &LobbyController{
		directory: services.NewDirectoryService(state, roster),
		roster:    roster,
		voting:    services.NewVotingService(state, roster),
		chat:      services.NewChatService(state, roster),
		validate:  validator.New(),
	}
}

func (lc *LobbyController) HandleAction(c *fiber.Ctx) error {
	var req ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.SendStandardResponse(c, shared.StatusBadRequest, nil, "invalid request body")
	}
	if err := lc.validate.Struct(&req); err != nil {
		return shared.SendStandardResponse(c, shared.StatusBadRequest, nil, "action is required")
	}

	req.Room = shared.Normalize(req.Room)
	req.Player = shared.Normalize(req.Player)
	req.Target = shared.Normalize(req.Target)

	if req.Action != "list" && (req.Room == "" || req.Player == "") {
		return shared.SendStandardResponse(c, shared.StatusBadRequest, nil, "room and player are required")
	}

	switch req.Action {
	case "list":
		return lc.handleList(c)
	case "join":
		return lc.handleJoin(c, req)
	case "get":
		return lc.handleGet(c, req)
	case "send_message":
		return lc.handleSendMessage(c, req)
	case "get_messages":
		return lc.handleGetMessages(c, req)
	case "start":
		return lc.handleStart(c, req)
	case "vote":
		return lc.handleVote(c, req)
	case "reset":
		return lc.handleReset(c, req)
	case "kick":
		return lc.handleKick(c, req)
	case "clean":
		return lc.handleClean(c, req)
	default:
		return shared.SendStandardResponse(c, shared.StatusBadRequest, nil, shared.ErrUnknownAction.Error())
	}
}

// fail maps service errors per the error taxonomy: forbidden is a client
// state, everything else is a server error for this request only.
func (lc *LobbyController) fail(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, shared.ErrForbidden) {
		logger.Warn("request %s: %s denied for %s", shared.GetRequestID(c), action, c.IP())
		return shared.SendStandardResponse(c, shared.StatusForbidden, nil, "forbidden")
	}
	logger.Error("request %s: action %s failed: %v", shared.GetRequestID(c), action, err)
	return shared.SendStandardResponse(c, shared.StatusInternalServerError, nil, "internal error")
}

func (lc *LobbyController) handleList(c *fiber.Ctx) error {
	listings, err := lc.directory.List()
	if err != nil {
		return lc.fail(c, "list", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK,
		&map[string]interface{}{"rooms": listings}, "rooms listed")
}

func (lc *LobbyController) handleJoin(c *fiber.Ctx, req ActionRequest) error {
	outcome, err := lc.directory.Join(req.Room, req.Player)
	if err != nil {
		return lc.fail(c, "join", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK,
		&map[string]interface{}{"outcome": outcome}, "joined room")
}

func (lc *LobbyController) handleGet(c *fiber.Ctx, req ActionRequest) error {
	snapshot, err := lc.roster.Get(req.Room, req.Player)
	if err != nil {
		return lc.fail(c, "get", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK,
		&map[string]interface{}{"room": snapshot}, "room state")
}

func (lc *LobbyController) handleSendMessage(c *fiber.Ctx, req ActionRequest) error {
	stored, err := lc.chat.Send(req.Room, req.Player, req.Content, req.ReplyTo)
	if err != nil {
		return lc.fail(c, "send_message", err)
	}
	message := "message sent"
	if !stored {
		message = "empty message ignored"
	}
	return shared.SendStandardResponse(c, shared.StatusOK, nil, message)
}

func (lc *LobbyController) handleGetMessages(c *fiber.Ctx, req ActionRequest) error {
	messages, err := lc.chat.Recent(req.Room, req.Player)
	if err != nil {
		return lc.fail(c, "get_messages", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK,
		&map[string]interface{}{"messages": messages}, "messages fetched")
}

func (lc *LobbyController) handleStart(c *fiber.Ctx, req ActionRequest) error {
	seed, err := lc.directory.Start(req.Room, req.Player, req.GameMode, req.CustomWord)
	if err != nil {
		return lc.fail(c, "start", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK,
		&map[string]interface{}{"seed": seed}, "round started")
}

func (lc *LobbyController) handleVote(c *fiber.Ctx, req ActionRequest) error {
	if req.Target == "" {
		return shared.SendStandardResponse(c, shared.StatusBadRequest, nil, "target is required")
	}
	if err := lc.voting.Vote(req.Room, req.Player, req.Target); err != nil {
		return lc.fail(c, "vote", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK, nil, "vote recorded")
}

func (lc *LobbyController) handleReset(c *fiber.Ctx, req ActionRequest) error {
	if err := lc.voting.Reset(req.Room, req.Player); err != nil {
		return lc.fail(c, "reset", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK, nil, "round reset")
}

func (lc *LobbyController) handleKick(c *fiber.Ctx, req ActionRequest) error {
	if req.Target == "" {
		return shared.SendStandardResponse(c, shared.StatusBadRequest, nil, "target is required")
	}
	if err := lc.roster.Kick(req.Room, req.Player, req.Target); err != nil {
		return lc.fail(c, "kick", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK, nil, "player kicked")
}

func (lc *LobbyController) handleClean(c *fiber.Ctx, req ActionRequest) error {
	if err := lc.directory.Clean(req.Room, req.Player); err != nil {
		return lc.fail(c, "clean", err)
	}
	return shared.SendStandardResponse(c, shared.StatusOK, nil, "room cleaned")
}
