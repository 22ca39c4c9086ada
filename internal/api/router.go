// Package api is the HTTP surface of the gateway: a gin router over the
// session registry and the query facade, one service per route group.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the gin engine with all routes registered.
func NewRouter(sessions *SessionService, chats *ChatService, messages *MessageService, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	r.GET("/connect-session", sessions.ConnectSession)
	r.DELETE("/close-and-delete-session/:deleteS", sessions.CloseAndDeleteSession)
	r.POST("/logout-session", sessions.LogoutSession)

	chat := r.Group("/chat")
	{
		chat.GET("/get-all-participants/:id", chats.GetAllParticipants)
		chat.GET("/get-admins/:id", chats.GetAdmins)
		chat.POST("/add-participants", chats.AddParticipants)
		chat.POST("/remove-participants", chats.RemoveParticipants)
		chat.PUT("/promote-participants", chats.PromoteParticipants)
		chat.PUT("/demote-participants", chats.DemoteParticipants)
		chat.PUT("/update-picture", chats.UpdatePicture)
		chat.DELETE("/delete-chat/:id", chats.DeleteChat)
		chat.PATCH("/archive-chat/:id", chats.ArchiveChat)
		chat.PATCH("/unarchive-chat/:id", chats.UnarchiveChat)
		chat.PATCH("/pin-chat/:id", chats.PinChat)
		chat.PATCH("/unpin-chat/:id", chats.UnpinChat)
		chat.PATCH("/mute-chat/:id", chats.MuteChat)
		chat.PATCH("/unmute-chat/:id", chats.UnmuteChat)
		chat.DELETE("/clear-messages/:id", chats.ClearMessages)
		chat.PUT("/revoke-invite-chat/:id", chats.RevokeInviteChat)
		chat.GET("/get-invite-code/:id", chats.GetInviteCode)
		chat.POST("/accept-invite", chats.AcceptInvite)
	}

	message := r.Group("/message")
	{
		message.POST("/forward-last-message", messages.ForwardLastMessage)
		message.POST("/send-message-by-chat-name", messages.SendMessageByChatName)
		message.GET("/get-count-messages/:id/:limit", messages.GetCountMessages)
		message.DELETE("/delete-last-message/:chatId/:everyone", messages.DeleteLastMessage)
	}

	return r
}
