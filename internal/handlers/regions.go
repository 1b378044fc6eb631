package handlers

import (
	"fmt"

	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// defaultSnapshotYears are the years compared when none are requested
var defaultSnapshotYears = []int{1990, 2014}

// GetRegionSnapshot returns the (CV, MI) cross-section of a region at the
// requested years
// GET /v1/regions/:region/snapshot?years=1990,2014
func (h *Handler) GetRegionSnapshot(c *fiber.Ctx) error {
	region := utils.NormalizeCode(c.Params("region"))

	var q models.SnapshotQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	years := defaultSnapshotYears
	if q.Years != "" {
		parsed, err := utils.ParseIntList(q.Years)
		if err != nil {
			return badRequest(c, "Invalid years: "+err.Error())
		}
		years = parsed
	}
	if len(years) > utils.MaxSnapshotYears {
		return badRequest(c, fmt.Sprintf("At most %d years can be requested", utils.MaxSnapshotYears))
	}

	snapshot, err := h.summaryService.RegionSnapshot(c.UserContext(), region, years)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(snapshot)
}
