package finance

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maayanhealth/clinic-api/internal/handler"
	"github.com/maayanhealth/clinic-api/internal/middleware"
	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/service/finance"
)

type Handler struct {
	service finance.FinanceService
}

func NewHandler(service finance.FinanceService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	financial := middleware.RequireRole(model.RoleManager, model.RoleAccountant)

	r.GET("/patients/:id/financials", financial, h.PatientFinancials)
	r.GET("/reports/financials", financial, h.FinancialReport)
	r.GET("/actions", financial, h.ActionLog)
}

func (h *Handler) PatientFinancials(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid id"))
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}

func (h *Handler) FinancialReport(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) ActionLog(c *gin.Context) {
	var filters model.ActionLogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	entries, err := h.service.ActionLog(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}
