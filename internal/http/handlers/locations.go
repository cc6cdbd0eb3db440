package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/planhub/internal/domain/event"
	"github.com/geocoder89/planhub/internal/domain/location"
	"github.com/gin-gonic/gin"
)

// LocationsReader is the slice of the locations repository this handler needs.
type LocationsReader interface {
	GetByID(ctx context.Context, id string) (location.Location, error)
	GetAvailable(ctx context.Context, start, end time.Time, filter location.AvailabilityFilter) ([]location.Location, error)
}

type LocationsHandler struct {
	repo LocationsReader
}

func NewLocationsHandler(repo LocationsReader) *LocationsHandler {
	return &LocationsHandler{repo: repo}
}

func (h *LocationsHandler) Get(ctx *gin.Context) {
	loc, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			RespondNotFound(ctx, "Location not found")
			return
		}

		RespondInternal(ctx, "Could not load location")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"location": loc,
		"rates":    rentalRates(loc.DailyRate),
	})
}

// rentalRates derives the price per rental unit from the room's base
// per-day rate, so quotation lines can be prefilled per unit.
func rentalRates(dailyRate float64) gin.H {
	return gin.H{
		string(event.RentalHour): event.RentalHour.ScaleBase(dailyRate),
		string(event.RentalDay):  event.RentalDay.ScaleBase(dailyRate),
		string(event.RentalWeek): event.RentalWeek.ScaleBase(dailyRate),
	}
}

// GetAvailable lists internal rooms free over a half-open [start, end)
// window. A room whose booking ends exactly at start is still available.
func (h *LocationsHandler) GetAvailable(ctx *gin.Context) {
	start, err := time.Parse(time.RFC3339, ctx.Query("start"))

	if err != nil {
		RespondBadRequest(ctx, "Invalid or missing start, expected RFC3339", nil)
		return
	}

	end, err := time.Parse(time.RFC3339, ctx.Query("end"))

	if err != nil {
		RespondBadRequest(ctx, "Invalid or missing end, expected RFC3339", nil)
		return
	}

	if !start.Before(end) {
		RespondBadRequest(ctx, "start must be before end", nil)
		return
	}

	filter := location.AvailabilityFilter{
		Limit:  parseIntQuery(ctx, "limit", 50),
		Offset: parseIntQuery(ctx, "offset", 0),
	}

	if building := ctx.Query("building"); building != "" {
		filter.Building = &building
	}

	if raw := ctx.Query("minCapacity"); raw != "" {
		minCap, err := strconv.Atoi(raw)

		if err != nil || minCap < 0 {
			RespondBadRequest(ctx, "Invalid minCapacity", nil)
			return
		}

		filter.MinCapacity = &minCap
	}

	locs, err := h.repo.GetAvailable(ctx.Request.Context(), start, end, filter)

	if err != nil {
		RespondInternal(ctx, "Could not query availability")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"locations": locs,
		"count":     len(locs),
	})
}

func parseIntQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)

	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)

	if err != nil || v < 0 {
		return fallback
	}

	return v
}
