package handlers

import (
	"net/http"
	"strconv"
	"time"

	"machly/services/machine"
	"machly/services/review"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

// MachineHandler serves the public machine catalogue.
type MachineHandler struct {
	MachineService machine.MachineService
	ReviewService  review.ReviewService
}

func NewMachineHandler(ms machine.MachineService, rs review.ReviewService) *MachineHandler {
	return &MachineHandler{MachineService: ms, ReviewService: rs}
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name+" timestamp", "expected RFC 3339, e.g. 2026-09-01T00:00:00Z")
		return nil, false
	}
	return &t, true
}

func parseFloatQuery(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name+" value", "")
		return nil, false
	}
	return &v, true
}

// SearchHandler handles GET /machines.
func (h *MachineHandler) SearchHandler(c *gin.Context) {
	params := machine.SearchParams{Category: c.Query("category")}

	var ok bool
	if params.Latitude, ok = parseFloatQuery(c, "lat"); !ok {
		return
	}
	if params.Longitude, ok = parseFloatQuery(c, "lng"); !ok {
		return
	}
	if radius, ok := parseFloatQuery(c, "radiusKm"); !ok {
		return
	} else if radius != nil {
		params.RadiusKm = *radius
	}
	if params.Start, ok = parseTimeQuery(c, "start"); !ok {
		return
	}
	if params.End, ok = parseTimeQuery(c, "end"); !ok {
		return
	}

	machines, err := h.MachineService.Search(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachineHandler handles GET /machines/:id.
func (h *MachineHandler) GetMachineHandler(c *gin.Context) {
	m, err := h.MachineService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CalendarHandler handles GET /machines/:id/calendar. Entries already over
// are omitted.
func (h *MachineHandler) CalendarHandler(c *gin.Context) {
	entries, err := h.MachineService.FutureCalendar(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AvailabilityHandler handles GET /machines/:id/availability.
func (h *MachineHandler) AvailabilityHandler(c *gin.Context) {
	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}
	if start == nil || end == nil {
		utils.JSONError(c, http.StatusBadRequest, "Both start and end are required", "")
		return
	}

	free, err := h.MachineService.CheckAvailability(c.Param("id"), *start, *end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": free})
}

// ReviewsHandler handles GET /machines/:id/reviews.
func (h *MachineHandler) ReviewsHandler(c *gin.Context) {
	reviews, err := h.ReviewService.ListForMachine(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
