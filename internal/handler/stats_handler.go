package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/bikeshare-go/internal/models"
	"github.com/jengzang/bikeshare-go/internal/service"
	"github.com/jengzang/bikeshare-go/pkg/response"
)

// StatsHandler handles HTTP requests for statistics
type StatsHandler struct {
	statsService *service.StatsService
	logger       *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// GetCities handles GET /api/v1/cities
func (h *StatsHandler) GetCities(c *gin.Context) {
	response.Success(c, gin.H{"cities": h.statsService.Cities()})
}

// GetStats handles GET /api/v1/stats?city=&month=&day=
func (h *StatsHandler) GetStats(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		response.BadRequest(c, "city parameter is required")
		return
	}
	month := c.DefaultQuery("month", models.All)
	day := c.DefaultQuery("day", models.All)

	report, err := h.statsService.Report(c.Request.Context(), city, month, day)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, report)
}

func (h *StatsHandler) writeError(c *gin.Context, err error) {
	switch {
	case models.IsSelectorError(err):
		response.BadRequest(c, err.Error())
	case models.IsEmptyDataset(err):
		response.NotFound(c, err.Error())
	case models.IsMalformedData(err):
		h.logger.Error("failed to load trips", "error", err)
		response.InternalError(c, err.Error())
	default:
		h.logger.Error("failed to build report", "error", err)
		response.Error(c, http.StatusInternalServerError, "internal error")
	}
}
