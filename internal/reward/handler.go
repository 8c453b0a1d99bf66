package reward

import (
	"errors"
	"net/http"
	"strconv"

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

// ListRewards godoc
// @Summary      List active rewards
// @Tags         rewards
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Reward
// @Router       /rewards [get]
func (h *Handler) ListRewards(c *gin.Context) {
	rewards, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rewards"})
		return
	}

	c.JSON(http.StatusOK, rewards)
}

// CreateReward godoc
// @Summary      Create a reward
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRewardRequest true "Reward"
// @Success      201 {object} Reward
// @Failure      400 {object} gin.H
// @Router       /admin/rewards [post]
func (h *Handler) CreateReward(c *gin.Context) {
	var req CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := h.repo.Create(c.Request.Context(), req.Title, req.Description, req.PointsRequired)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reward"})
		return
	}

	c.JSON(http.StatusCreated, reward)
}

// UpdateReward godoc
// @Summary      Update a reward
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        rewardID path int                 true "Reward ID"
// @Param        request  body UpdateRewardRequest true "Fields to change"
// @Success      200 {object} Reward
// @Failure      400 {object} gin.H
// @Failure      404 {object} gin.H
// @Router       /admin/rewards/{rewardID} [patch]
func (h *Handler) UpdateReward(c *gin.Context) {
	rewardID, err := strconv.Atoi(c.Param("rewardID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}

	var req UpdateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PointsRequired != nil && *req.PointsRequired <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points_required must be positive"})
		return
	}

	reward, err := h.repo.Update(c.Request.Context(), rewardID, req)
	if err != nil {
		if errors.Is(err, ErrRewardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reward not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update reward"})
		return
	}

	c.JSON(http.StatusOK, reward)
}
