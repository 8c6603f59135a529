package handlers

import (
	"net/http"
	"time"

	"machly/services/booking"
	"machly/services/machine"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves the provider-side machine management surface.
type ProviderHandler struct {
	MachineService machine.MachineService
	BookingService booking.BookingService
}

func NewProviderHandler(ms machine.MachineService, bs booking.BookingService) *ProviderHandler {
	return &ProviderHandler{MachineService: ms, BookingService: bs}
}

// CreateMachineHandler handles POST /provider/machines.
func (h *ProviderHandler) CreateMachineHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req machine.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid machine payload", err.Error())
		return
	}

	created, err := h.MachineService.Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListMachinesHandler handles GET /provider/machines.
func (h *ProviderHandler) ListMachinesHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	machines, err := h.MachineService.ListForProvider(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// UpdateMachineHandler handles PUT /provider/machines/:id.
func (h *ProviderHandler) UpdateMachineHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req machine.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid machine payload", err.Error())
		return
	}

	updated, err := h.MachineService.Update(actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMachineHandler handles DELETE /provider/machines/:id.
func (h *ProviderHandler) DeleteMachineHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.MachineService.Delete(actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine deleted"})
}

// AddPhotoHandler handles POST /provider/machines/:id/photos with a
// multipart "photo".
func (h *ProviderHandler) AddPhotoHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Missing photo file", err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Unreadable photo file", err.Error())
		return
	}
	defer file.Close()

	url, err := h.MachineService.AddPhoto(c.Request.Context(), actor, c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}

// BlockDatesHandler handles POST /provider/machines/:id/calendar/block.
func (h *ProviderHandler) BlockDatesHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		Start time.Time `json:"start" binding:"required"`
		End   time.Time `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid block payload", err.Error())
		return
	}

	entry, err := h.MachineService.BlockDates(actor, c.Param("id"), req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UnblockDatesHandler handles DELETE /provider/machines/:id/calendar/:entryId.
func (h *ProviderHandler) UnblockDatesHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.MachineService.UnblockDates(actor, c.Param("id"), c.Param("entryId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry removed"})
}

// MachineBookingsHandler handles GET /provider/machines/:id/bookings.
func (h *ProviderHandler) MachineBookingsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	bookings, err := h.BookingService.ListForMachine(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ProviderBookingsHandler handles GET /provider/bookings.
func (h *ProviderHandler) ProviderBookingsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	bookings, err := h.BookingService.ListForProvider(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
