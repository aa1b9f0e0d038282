package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/config"
	"github.com/libreclinica/api-gateway/internal/dao"
	"github.com/libreclinica/api-gateway/internal/middleware"
	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/utils"
	pkgutils "github.com/libreclinica/api-gateway/pkg/utils"
)

// AuthHandler issues bearer tokens for user_account credentials
type AuthHandler struct {
	userDAO *dao.UserDAO
	jwtCfg  *config.JWTConfig
	logger  *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userDAO *dao.UserDAO, jwtCfg *config.JWTConfig, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{userDAO: userDAO, jwtCfg: jwtCfg, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string              `json:"token"`
	ExpiresIn int64               `json:"expiresIn"`
	User      *models.UserAccount `json:"user"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	user, err := h.userDAO.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		utils.SendUnauthorizedError(c, "Invalid username or password")
		return
	}
	if user.StatusID != models.StatusAvailable {
		utils.SendUnauthorizedError(c, "Account is not active")
		return
	}
	if !pkgutils.VerifyPassword(user.Passwd, req.Password) {
		h.logger.WithField("username", req.Username).Warn("Failed login attempt")
		utils.SendUnauthorizedError(c, "Invalid username or password")
		return
	}

	token, err := middleware.GenerateToken(h.jwtCfg, user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		utils.SendInternalServerError(c, "Failed to issue token", "")
		return
	}

	utils.SendOKResponse(c, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtCfg.Expiry.Seconds()),
		User:      user,
	})
}
