package points

import (
	"errors"
	"net/http"

	"github.com/freshlook-dev/FreshWallet/internal/auth"
	"github.com/freshlook-dev/FreshWallet/internal/user"
	"github.com/freshlook-dev/FreshWallet/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service: NewService(wallet.NewRepository(db), user.NewRepository(db)),
	}
}

type EarnRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	EventRef string `json:"event_ref" binding:"required"`
}

// Earn godoc
// @Summary      Credit points for a completed earning event
// @Description  The caller identity comes from the bearer token. event_ref must be unique per event; replays are rejected.
// @Tags         points
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body EarnRequest true "Earning event"
// @Success      200 {object} gin.H
// @Failure      400 {object} gin.H
// @Failure      401 {object} gin.H
// @Failure      403 {object} gin.H
// @Failure      409 {object} gin.H
// @Router       /earn [post]
func (h *Handler) Earn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.service.CreditEarning(c.Request.Context(), userID, req.Amount, req.EventRef)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrMissingEventRef):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrAccountNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "verify your email before earning points"})
		case errors.Is(err, ErrDuplicateEvent):
			c.JSON(http.StatusConflict, gin.H{"error": "event already credited"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to credit points"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wallet":  w,
	})
}
