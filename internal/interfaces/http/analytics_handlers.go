package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// KPIs handles GET /api/analytics/kpis
func (h *Handlers) KPIs(c *gin.Context) {
	report, err := h.analyticsService.KPIs(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, report)
}

// TimeSeries handles GET /api/analytics/timeseries
func (h *Handlers) TimeSeries(c *gin.Context) {
	points, err := h.analyticsService.TimeSeries(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, points)
}

// Categories handles GET /api/analytics/categories
func (h *Handlers) Categories(c *gin.Context) {
	totals, err := h.analyticsService.Categories(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, totals)
}

// Merchants handles GET /api/analytics/merchants?limit=N
func (h *Handlers) Merchants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	totals, err := h.analyticsService.Merchants(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, totals)
}

// ApprovalFunnel handles GET /api/analytics/approval-funnel
func (h *Handlers) ApprovalFunnel(c *gin.Context) {
	stages, err := h.analyticsService.ApprovalFunnel(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, stages)
}

// ExportExpenses handles GET /api/analytics/export, streaming an xlsx
// workbook of the company's expenses.
func (h *Handlers) ExportExpenses(c *gin.Context) {
	filename := fmt.Sprintf("expenses-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.analyticsService.Export(c.Request.Context(), currentUser(c), c.Writer); err != nil {
		h.respondError(c, err)
		return
	}
}
