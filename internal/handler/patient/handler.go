package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maayanhealth/clinic-api/internal/handler"
	"github.com/maayanhealth/clinic-api/internal/middleware"
	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/service/patient"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	noGuard := middleware.DenyRole(model.RoleGuard)

	patients := r.Group("/patients")
	{
		patients.POST("", noGuard, h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", noGuard, h.UpdatePatient)
		patients.DELETE("/:id", middleware.RequireRole(model.RoleManager), h.DeletePatient)

		patients.POST("/:id/rate", middleware.RequireRole(model.RoleManager, model.RoleAccountant), h.ChangeRate)
		patients.POST("/:id/status", noGuard, h.ChangeStatus)

		patients.POST("/:id/transactions", middleware.RequireRole(model.RoleManager, model.RoleAccountant), h.AddTransaction)
		patients.GET("/:id/transactions", h.ListTransactions)

		patients.POST("/:id/discounts", noGuard, h.RequestDiscount)
		patients.POST("/:id/discounts/:discountId/decision", middleware.RequireRole(model.RoleManager), h.DecideDiscount)

		patients.PUT("/:id/billing-split", middleware.RequireRole(model.RoleManager, model.RoleAccountant), h.SetSplitBilling)
		patients.DELETE("/:id/billing-split", middleware.RequireRole(model.RoleManager, model.RoleAccountant), h.RemoveSplitBilling)

		patients.POST("/:id/relationships", noGuard, h.AddRelationship)
		patients.DELETE("/:id/relationships/:relatedId", noGuard, h.RemoveRelationship)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	patients, err := h.service.ListPatients(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	updated, err := h.service.UpdatePatient(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ChangeRate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ChangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	updated, err := h.service.ChangeRate(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	updated, err := h.service.ChangeStatus(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) AddTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	tx, err := h.service.AddTransaction(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(tx))
}

func (h *Handler) ListTransactions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	txs, err := h.service.ListTransactions(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(txs))
}

func (h *Handler) RequestDiscount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.RequestDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	discount, err := h.service.RequestDiscount(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(discount))
}

func (h *Handler) DecideDiscount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	discountID, ok := pathID(c, "discountId")
	if !ok {
		return
	}
	var req model.DecideDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	discount, err := h.service.DecideDiscount(c.Request.Context(), id, discountID, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(discount))
}

func (h *Handler) SetSplitBilling(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.SetSplitBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	updated, err := h.service.SetSplitBilling(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) RemoveSplitBilling(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updated, err := h.service.RemoveSplitBilling(c.Request.Context(), id, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) AddRelationship(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.AddRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	updated, err := h.service.AddRelationship(c.Request.Context(), id, &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(updated))
}

func (h *Handler) RemoveRelationship(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	relatedID, ok := pathID(c, "relatedId")
	if !ok {
		return
	}
	updated, err := h.service.RemoveRelationship(c.Request.Context(), id, relatedID, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
