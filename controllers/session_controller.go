package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/clients"
	"storefront/models"
	"storefront/session"
)

// SignInAPI is the slice of the shop client sign-in needs.
type SignInAPI interface {
	SignIn(ctx context.Context, req clients.SignInRequest) error
	CurrentMember(ctx context.Context) (*models.Member, error)
}

type SessionController struct {
	sessions *session.Store
	shop     SignInAPI
	logger   *zap.Logger
}

func NewSessionController(sessions *session.Store, shop SignInAPI, logger *zap.Logger) *SessionController {
	return &SessionController{
		sessions: sessions,
		shop:     shop,
		logger:   logger,
	}
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn authenticates against the shop API. Success is opaque, so a
// fresh member probe follows before the local session is set.
func (sc *SessionController) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if err := sc.shop.SignIn(ctx, clients.SignInRequest{Email: req.Email, Password: req.Password}); err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		sc.logger.Error("Sign-in call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sign-in is temporarily unavailable"})
		return
	}

	member, err := sc.shop.CurrentMember(ctx)
	if err != nil {
		sc.logger.Error("Member probe after sign-in failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sign-in is temporarily unavailable"})
		return
	}

	sc.sessions.SetMember(member)
	c.JSON(http.StatusOK, gin.H{"message": "Signed in", "member": member})
}

// SignOut invalidates the remote session best-effort and always
// clears the local one.
func (sc *SessionController) SignOut(c *gin.Context) {
	sc.sessions.SignOut(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Me returns the current member. The route guard has already ensured
// one is present.
func (sc *SessionController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, sc.sessions.Member())
}
