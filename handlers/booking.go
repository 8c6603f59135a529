package handlers

import (
	"net/http"

	"machly/services/booking"
	"machly/services/storage"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the renter-facing booking lifecycle.
type BookingHandler struct {
	BookingService booking.BookingService
	Storage        storage.StorageService
}

func NewBookingHandler(bs booking.BookingService, st storage.StorageService) *BookingHandler {
	return &BookingHandler{BookingService: bs, Storage: st}
}

// CreateHandler handles POST /bookings.
func (h *BookingHandler) CreateHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking payload", err.Error())
		return
	}

	created, err := h.BookingService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListHandler handles GET /bookings; it returns the actor's own bookings.
func (h *BookingHandler) ListHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	bookings, err := h.BookingService.ListForRenter(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetHandler handles GET /bookings/:id.
func (h *BookingHandler) GetHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	b, err := h.BookingService.GetByID(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateStatusHandler handles PUT /bookings/:id/status.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status payload", err.Error())
		return
	}

	b, err := h.BookingService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelHandler handles POST /bookings/:id/cancel.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	b, err := h.BookingService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// checkRequest uploads the multipart "photos" files and builds the evidence
// payload shared by checkin and checkout.
func (h *BookingHandler) checkRequest(c *gin.Context, bookingID, stage string) (booking.CheckRequest, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid multipart payload", err.Error())
		return booking.CheckRequest{}, false
	}

	req := booking.CheckRequest{Notes: c.PostForm("notes")}
	for _, fileHeader := range form.File["photos"] {
		file, err := fileHeader.Open()
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Unreadable photo file", err.Error())
			return booking.CheckRequest{}, false
		}
		url, err := h.Storage.UploadImage(c.Request.Context(), file, "bookings/"+bookingID+"/"+stage)
		file.Close()
		if err != nil {
			respondError(c, err)
			return booking.CheckRequest{}, false
		}
		req.Photos = append(req.Photos, url)
	}
	return req, true
}

// CheckInHandler handles POST /bookings/:id/checkin.
func (h *BookingHandler) CheckInHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	req, ok := h.checkRequest(c, c.Param("id"), "checkin")
	if !ok {
		return
	}
	b, err := h.BookingService.CheckIn(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CheckOutHandler handles POST /bookings/:id/checkout.
func (h *BookingHandler) CheckOutHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	req, ok := h.checkRequest(c, c.Param("id"), "checkout")
	if !ok {
		return
	}
	b, err := h.BookingService.CheckOut(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
