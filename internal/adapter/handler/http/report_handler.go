package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	reportService *services.ReportService
	logger        ports.LoggerPort
	metrics       ports.MetricsPort
}

func NewReportHandler(reportService *services.ReportService, logger ports.LoggerPort, metrics ports.MetricsPort) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
		metrics:       metrics,
	}
}

// parseRange reads from and to as dates. The last day is included, so the returned end is
// midnight after it.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid from, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid to, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return from, to.AddDate(0, 0, 1), true
}

// @Summary Warranty report
// @Description Repeats of the same repair on the same bike within the warranty window
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Success 200 {array} domain.WarrantyReportLine "Warranty cases"
// @Router /reports/warranty [get]
func (h *ReportHandler) Warranty(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	lines, err := h.reportService.WarrantyReport(c.Request.Context(), from, to)
	if err != nil {
		handleServiceError(c, err, "Failed to build warranty report")
		return
	}
	c.JSON(http.StatusOK, lines)
}

// @Summary Points per mechanic
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Success 200 {array} domain.MechanicPoints "Points"
// @Router /reports/points [get]
func (h *ReportHandler) Points(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	points, err := h.reportService.MechanicPoints(c.Request.Context(), from, to)
	if err != nil {
		handleServiceError(c, err, "Failed to compute points")
		return
	}
	c.JSON(http.StatusOK, points)
}
