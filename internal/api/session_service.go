package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheus3301/wppapi/internal/registry"
	"github.com/matheus3301/wppapi/internal/wa"
)

// SessionService exposes the session lifecycle endpoints.
type SessionService struct {
	reg     *registry.Registry
	session string
	ticks   int
	logger  *zap.Logger
}

// NewSessionService creates the session endpoints for the configured
// session name with the given credential tick budget.
func NewSessionService(reg *registry.Registry, sessionName string, ticks int, logger *zap.Logger) *SessionService {
	return &SessionService{reg: reg, session: sessionName, ticks: ticks, logger: logger}
}

// ConnectSession handles GET /connect-session. A live session reports
// already connected; otherwise the call parks until the first QR
// payload or the tick budget runs out. Timing out does not cancel the
// connect, so a later poll can still observe the session ready.
func (s *SessionService) ConnectSession(c *gin.Context) {
	already, err := s.reg.Connect(c.Request.Context(), s.session)
	if err != nil {
		s.logger.Error("connect session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, messageBody{Message: "Error to connect session"})
		return
	}
	if already {
		c.JSON(http.StatusOK, messageBody{Message: "Client is already connected"})
		return
	}

	code, err := s.reg.AwaitCredential(c.Request.Context(), s.session, s.ticks)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Scan the qr code", "qrCode": code})
	case errors.Is(err, wa.ErrCredentialTimeout), errors.Is(err, wa.ErrAlreadyConnected):
		c.JSON(http.StatusOK, messageBody{Message: "Time out or connection has been established"})
	case errors.Is(err, wa.ErrSessionAbsent):
		c.JSON(http.StatusOK, messageBody{Message: "Session not found"})
	default:
		s.logger.Error("await credential", zap.Error(err))
		c.JSON(http.StatusInternalServerError, messageBody{Message: "Error to connect session"})
	}
}

// CloseAndDeleteSession handles DELETE /close-and-delete-session/:deleteS.
// The path segment is a loose boolean choosing whether persisted
// credentials are purged along with the live handle.
func (s *SessionService) CloseAndDeleteSession(c *gin.Context) {
	purge := looseBool(c.Param("deleteS"))

	found, err := s.reg.Destroy(c.Request.Context(), s.session, purge)
	if err != nil {
		s.logger.Error("destroy session", zap.Error(err))
		c.JSON(http.StatusOK, messageBody{Message: "Error to close session"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, messageBody{Message: "Session not found"})
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}

// LogoutSession handles POST /logout-session: backend-side credential
// invalidation on top of the local teardown.
func (s *SessionService) LogoutSession(c *gin.Context) {
	found, err := s.reg.Logout(c.Request.Context(), s.session)
	if err != nil {
		s.logger.Error("logout session", zap.Error(err))
		c.JSON(http.StatusOK, messageBody{Message: "Error to close session"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, messageBody{Message: "Session not found"})
		return
	}
	c.JSON(http.StatusOK, messageBody{Message: "successful operation"})
}
