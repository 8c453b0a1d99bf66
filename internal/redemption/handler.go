package redemption

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freshlook-dev/FreshWallet/internal/auth"
	"github.com/freshlook-dev/FreshWallet/internal/reward"
	"github.com/freshlook-dev/FreshWallet/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, mailer ReceiptMailer) *Handler {
	return &Handler{
		service: NewService(
			NewRepository(db),
			reward.NewRepository(db),
			user.NewRepository(db),
			mailer,
		),
	}
}

// Redeem godoc
// @Summary      Redeem a reward
// @Description  Debits the reward cost and returns a single-use QR payload valid for 10 minutes.
// @Tags         redemptions
// @Security     BearerAuth
// @Produce      json
// @Param        rewardID path int true "Reward ID"
// @Success      201 {object} IssueResponse
// @Failure      400 {object} gin.H
// @Failure      402 {object} gin.H
// @Failure      403 {object} gin.H
// @Failure      404 {object} gin.H
// @Router       /rewards/{rewardID}/redeem [post]
func (h *Handler) Redeem(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	rewardID, err := strconv.Atoi(c.Param("rewardID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}

	resp, err := h.service.Issue(c.Request.Context(), userID, rewardID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientPoints):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough points for this reward"})
		case errors.Is(err, ErrAccountNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "verify your email before redeeming"})
		case errors.Is(err, reward.ErrRewardNotFound), errors.Is(err, ErrRewardUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "reward not available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue redemption"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Consume godoc
// @Summary      Consume a scanned redemption token
// @Description  Staff-only. Settles a pending token; each distinct failure is reported separately so the scanner can show the right message.
// @Tags         staff
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ConsumeRequest true "Raw scanned payload"
// @Success      200 {object} ConsumeResponse
// @Failure      400 {object} gin.H
// @Failure      404 {object} gin.H
// @Failure      409 {object} gin.H
// @Failure      410 {object} gin.H
// @Router       /staff/redemptions/consume [post]
func (h *Handler) Consume(c *gin.Context) {
	staffID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload is required"})
		return
	}

	red, err := h.service.Consume(c.Request.Context(), req.Payload, staffID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "not a redemption QR code"})
		case errors.Is(err, ErrTokenNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		case errors.Is(err, ErrTokenAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": "token already used"})
		case errors.Is(err, ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{"error": "token expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to consume token"})
		}
		return
	}

	c.JSON(http.StatusOK, ConsumeResponse{
		Points:     red.Points,
		Redemption: *red,
	})
}

// ListMine godoc
// @Summary      List own redemptions
// @Tags         redemptions
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Redemption
// @Router       /redemptions [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reds, err := h.service.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load redemptions"})
		return
	}

	c.JSON(http.StatusOK, reds)
}

// ListAll godoc
// @Summary      Global consumed-redemption history
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Redemption
// @Router       /staff/redemptions [get]
func (h *Handler) ListAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	reds, err := h.service.ListConsumed(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load redemption history"})
		return
	}

	c.JSON(http.StatusOK, reds)
}
