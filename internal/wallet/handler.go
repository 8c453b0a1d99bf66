package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freshlook-dev/FreshWallet/internal/auth"
	"github.com/freshlook-dev/FreshWallet/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo: NewRepository(db),
	}
}

type AdjustRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// GetBalance godoc
// @Summary      Get own wallet
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} Wallet
// @Failure      401 {object} gin.H
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// ListTransactions godoc
// @Summary      List own ledger entries
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Transaction
// @Failure      401 {object} gin.H
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// Adjust godoc
// @Summary      Apply a manual balance adjustment
// @Description  Admin-only. Writes an adjustment ledger entry; amount may be negative.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID  path int           true "User ID"
// @Param        request body AdjustRequest true "Adjustment"
// @Success      200 {object} Wallet
// @Failure      400 {object} gin.H
// @Failure      409 {object} gin.H
// @Router       /admin/wallets/{userID}/adjust [post]
func (h *Handler) Adjust(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-zero integer"})
		return
	}

	w, err := h.repo.ApplyTransaction(c.Request.Context(), userID, req.Amount, TxTypeAdjustment, "", req.Description)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			c.JSON(http.StatusConflict, gin.H{"error": "adjustment would make balance negative"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to adjust wallet"})
		return
	}

	metrics.RecordAdjustment()

	c.JSON(http.StatusOK, w)
}
