package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-bidtrack-backend/internal/delivery/http/response"
	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/apperror"
)

type AnalyticsHandler struct {
	statsUC domain.StatsUsecase
}

// NewAnalyticsHandler registers analytics routes
func NewAnalyticsHandler(r *gin.RouterGroup, statsUC domain.StatsUsecase) {
	handler := &AnalyticsHandler{statsUC: statsUC}

	analytics := r.Group("/analytics")
	{
		analytics.GET("/applications", handler.GetApplicationStats)
	}
}

// GetApplicationStats godoc
// @Summary      Application analytics
// @Description  Nested cost, conversion and target-progress breakdowns by platform, user and profile
// @Tags         analytics
// @Produce      json
// @Param        platform   query     string  false  "Platform ids, comma separated"
// @Param        profileId  query     int     false  "Profile id"
// @Param        userId     query     string  false  "User ids, comma separated"
// @Param        startDate  query     string  false  "Range start (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200        {object}  response.Response{data=domain.StatsSnapshot}
// @Failure      400        {object}  response.Response
// @Router       /analytics/applications [get]
// @Security     BearerAuth
func (h *AnalyticsHandler) GetApplicationStats(c *gin.Context) {
	filter, err := parseStatsFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	snapshot, err := h.statsUC.ComputeStats(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Analytics computed", gin.H{"summary": snapshot})
}

func parseStatsFilter(c *gin.Context) (domain.StatsFilter, error) {
	var f domain.StatsFilter

	var err error
	if f.PlatformIDs, err = parseIDList(c.Query("platform")); err != nil {
		return f, apperror.BadRequest("Invalid platform filter")
	}
	if f.UserIDs, err = parseIDList(c.Query("userId")); err != nil {
		return f, apperror.BadRequest("Invalid userId filter")
	}

	if raw := c.Query("profileId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, apperror.BadRequest("Invalid profileId filter")
		}
		f.ProfileID = &id
	}

	start, end := c.Query("startDate"), c.Query("endDate")
	if (start == "") != (end == "") {
		return f, apperror.BadRequest("startDate and endDate must be provided together")
	}
	if start != "" {
		s, err := time.Parse("2006-01-02", start)
		if err != nil {
			return f, apperror.BadRequest("Invalid startDate, expected YYYY-MM-DD")
		}
		e, err := time.Parse("2006-01-02", end)
		if err != nil {
			return f, apperror.BadRequest("Invalid endDate, expected YYYY-MM-DD")
		}
		if e.Before(s) {
			return f, apperror.BadRequest("endDate must not be before startDate")
		}
		f.Range = &domain.DateRange{Start: s, End: e}
	}

	return f, nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
