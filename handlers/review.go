package handlers

import (
	"net/http"

	"machly/services/review"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

// ReviewHandler serves renter review creation. Deletion is a moderation
// action and lives on the admin surface.
type ReviewHandler struct {
	ReviewService review.ReviewService
}

func NewReviewHandler(svc review.ReviewService) *ReviewHandler {
	return &ReviewHandler{ReviewService: svc}
}

// CreateHandler handles POST /reviews.
func (h *ReviewHandler) CreateHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req review.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid review payload", err.Error())
		return
	}

	created, err := h.ReviewService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
