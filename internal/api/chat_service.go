package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheus3301/wppapi/internal/facade"
)

// ChatService exposes the chat management endpoints.
type ChatService struct {
	facade  *facade.Facade
	session string
	logger  *zap.Logger
}

// NewChatService creates the chat endpoints bound to the configured
// session name.
func NewChatService(f *facade.Facade, sessionName string, logger *zap.Logger) *ChatService {
	return &ChatService{facade: f, session: sessionName, logger: logger}
}

type participantsRequest struct {
	ChatID       string   `json:"chatId"`
	Participants []string `json:"participants"`
}

type updatePictureRequest struct {
	ChatID    string `json:"chatId"`
	PathMedia string `json:"pathMedia"`
}

type acceptInviteRequest struct {
	InviteCode string `json:"inviteCode"`
}

// GetAllParticipants handles GET /chat/get-all-participants/:id.
func (s *ChatService) GetAllParticipants(c *gin.Context) {
	participants, err := s.facade.Participants(s.session, c.Param("id"))
	if err != nil {
		failMessage(c, err, "Chat not Found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants, "count": len(participants)})
}

// GetAdmins handles GET /chat/get-admins/:id.
func (s *ChatService) GetAdmins(c *gin.Context) {
	admins, err := s.facade.Admins(s.session, c.Param("id"))
	if err != nil {
		s.logger.Warn("get admins", zap.Error(err))
		c.JSON(http.StatusOK, messageBody{Message: "Error to get admins to chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

// AddParticipants handles POST /chat/add-participants.
func (s *ChatService) AddParticipants(c *gin.Context) {
	var req participantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}
	if err := s.facade.AddParticipants(c.Request.Context(), s.session, req.ChatID, req.Participants); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// RemoveParticipants handles POST /chat/remove-participants.
func (s *ChatService) RemoveParticipants(c *gin.Context) {
	var req participantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}
	if err := s.facade.RemoveParticipants(c.Request.Context(), s.session, req.ChatID, req.Participants); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// PromoteParticipants handles PUT /chat/promote-participants.
func (s *ChatService) PromoteParticipants(c *gin.Context) {
	var req participantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}
	if err := s.facade.PromoteParticipants(c.Request.Context(), s.session, req.ChatID, req.Participants); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// DemoteParticipants handles PUT /chat/demote-participants.
func (s *ChatService) DemoteParticipants(c *gin.Context) {
	var req participantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}
	if err := s.facade.DemoteParticipants(c.Request.Context(), s.session, req.ChatID, req.Participants); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// UpdatePicture handles PUT /chat/update-picture.
func (s *ChatService) UpdatePicture(c *gin.Context) {
	var req updatePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}
	if err := s.facade.SetPicture(c.Request.Context(), s.session, req.ChatID, req.PathMedia); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// DeleteChat handles DELETE /chat/delete-chat/:id.
func (s *ChatService) DeleteChat(c *gin.Context) {
	if err := s.facade.DeleteChat(c.Request.Context(), s.session, c.Param("id")); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// ArchiveChat handles PATCH /chat/archive-chat/:id.
func (s *ChatService) ArchiveChat(c *gin.Context) {
	s.setChatState(c, func(id string) error {
		return s.facade.SetArchived(c.Request.Context(), s.session, id, true)
	})
}

// UnarchiveChat handles PATCH /chat/unarchive-chat/:id.
func (s *ChatService) UnarchiveChat(c *gin.Context) {
	s.setChatState(c, func(id string) error {
		return s.facade.SetArchived(c.Request.Context(), s.session, id, false)
	})
}

// PinChat handles PATCH /chat/pin-chat/:id.
func (s *ChatService) PinChat(c *gin.Context) {
	s.setChatState(c, func(id string) error {
		return s.facade.SetPinned(c.Request.Context(), s.session, id, true)
	})
}

// UnpinChat handles PATCH /chat/unpin-chat/:id.
func (s *ChatService) UnpinChat(c *gin.Context) {
	s.setChatState(c, func(id string) error {
		return s.facade.SetPinned(c.Request.Context(), s.session, id, false)
	})
}

// MuteChat handles PATCH /chat/mute-chat/:id.
func (s *ChatService) MuteChat(c *gin.Context) {
	s.setChatState(c, func(id string) error {
		return s.facade.SetMuted(c.Request.Context(), s.session, id, true)
	})
}

// UnmuteChat handles PATCH /chat/unmute-chat/:id.
func (s *ChatService) UnmuteChat(c *gin.Context) {
	s.setChatState(c, func(id string) error {
		return s.facade.SetMuted(c.Request.Context(), s.session, id, false)
	})
}

func (s *ChatService) setChatState(c *gin.Context, op func(id string) error) {
	if err := op(c.Param("id")); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// ClearMessages handles DELETE /chat/clear-messages/:id.
func (s *ChatService) ClearMessages(c *gin.Context) {
	if err := s.facade.ClearMessages(c.Request.Context(), s.session, c.Param("id")); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// RevokeInviteChat handles PUT /chat/revoke-invite-chat/:id.
func (s *ChatService) RevokeInviteChat(c *gin.Context) {
	link, err := s.facade.RevokeInvite(c.Request.Context(), s.session, c.Param("id"))
	if err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// GetInviteCode handles GET /chat/get-invite-code/:id.
func (s *ChatService) GetInviteCode(c *gin.Context) {
	link, err := s.facade.InviteLink(c.Request.Context(), s.session, c.Param("id"))
	if err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// AcceptInvite handles POST /chat/accept-invite. The code may be bare
// or a full invite link.
func (s *ChatService) AcceptInvite(c *gin.Context) {
	var req acceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}
	if err := s.facade.AcceptInvite(c.Request.Context(), s.session, req.InviteCode); err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}
