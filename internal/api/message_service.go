package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheus3301/wppapi/internal/facade"
	"github.com/matheus3301/wppapi/internal/wa"
)

// MessageService exposes the message endpoints.
type MessageService struct {
	facade  *facade.Facade
	session string
	logger  *zap.Logger
}

// NewMessageService creates the message endpoints bound to the
// configured session name.
func NewMessageService(f *facade.Facade, sessionName string, logger *zap.Logger) *MessageService {
	return &MessageService{facade: f, session: sessionName, logger: logger}
}

type forwardRequest struct {
	ChatID            string `json:"chatId"`
	DestinationChatID string `json:"destinationChatId"`
}

type sendByNameRequest struct {
	ChatName string `json:"chatName"`
	Message  string `json:"message"`
}

// ForwardLastMessage handles POST /message/forward-last-message: the
// most recent message of chatId is re-sent to destinationChatId.
func (s *MessageService) ForwardLastMessage(c *gin.Context) {
	var req forwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}

	err := s.facade.ForwardLastMessage(c.Request.Context(), s.session, req.ChatID, req.DestinationChatID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"result": true, "message": "Send message"})
	case errors.Is(err, wa.ErrMessageNotFound), errors.Is(err, wa.ErrChatNotFound):
		c.JSON(http.StatusOK, messageBody{Message: "Chat not found"})
	default:
		failMessage(c, err, "Chat not found")
	}
}

// SendMessageByChatName handles POST /message/send-message-by-chat-name.
// A chat name with no match is not an error, just a miss.
func (s *MessageService) SendMessageByChatName(c *gin.Context) {
	var req sendByNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, messageBody{Message: "invalid request body"})
		return
	}

	sent, err := s.facade.SendMessageByName(c.Request.Context(), s.session, req.ChatName, req.Message)
	if err != nil {
		failMessage(c, err, "chat not found")
		return
	}
	if !sent {
		c.JSON(http.StatusOK, messageBody{Message: "chat not found"})
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "message sent"})
}

// GetCountMessages handles GET /message/get-count-messages/:id/:limit.
// A non-numeric or non-positive limit behaves as limit 1.
func (s *MessageService) GetCountMessages(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil {
		limit = 1
	}

	messages, err := s.facade.Messages(c.Request.Context(), s.session, c.Param("id"), limit)
	if err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteLastMessage handles DELETE /message/delete-last-message/:chatId/:everyone.
// The everyone segment is a loose boolean choosing between local-view
// deletion and a broadcast revoke.
func (s *MessageService) DeleteLastMessage(c *gin.Context) {
	everyone := looseBool(c.Param("everyone"))

	deleted, err := s.facade.DeleteLastMessage(c.Request.Context(), s.session, c.Param("chatId"), everyone)
	if err != nil {
		failMessage(c, err, "Chat not found")
		return
	}
	if !deleted {
		c.JSON(http.StatusOK, messageBody{Message: "Message not found"})
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}
