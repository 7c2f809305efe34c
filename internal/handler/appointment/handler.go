package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maayanhealth/clinic-api/internal/handler"
	"github.com/maayanhealth/clinic-api/internal/middleware"
	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/service/appointment"
)

type Handler struct {
	service appointment.AppointmentService
}

func NewHandler(service appointment.AppointmentService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the schedule routes. The guard role stays
// read-only on the day schedule, except checking arrivals in.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	noGuard := middleware.DenyRole(model.RoleGuard)

	appointments := r.Group("/appointments")
	{
		appointments.POST("", noGuard, h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/cancel", noGuard, h.CancelAppointment)
		appointments.POST("/:id/check-in", h.CheckIn)
		appointments.DELETE("/:id", middleware.RequireRole(model.RoleManager, model.RoleSecretary), h.DeleteAppointment)
	}

	rooms := r.Group("/rooms")
	{
		rooms.POST("", middleware.RequireRole(model.RoleManager, model.RoleSecretary), h.CreateRoom)
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id/bookings", h.ListBookings)
	}

	bookings := r.Group("/room-bookings")
	{
		bookings.POST("", noGuard, h.BookRoom)
		bookings.DELETE("/:id", noGuard, h.CancelBooking)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	created, err := h.service.CreateAppointment(c.Request.Context(), &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	appointments, err := h.service.ListAppointments(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cancelled, err := h.service.CancelAppointment(c.Request.Context(), id, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cancelled))
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	checked, err := h.service.CheckIn(c.Request.Context(), id, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(checked))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAppointment(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

type createRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	room, err := h.service.CreateRoom(c.Request.Context(), req.Name, req.Location)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(room))
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rooms))
}

func (h *Handler) BookRoom(c *gin.Context) {
	var req model.CreateRoomBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	booking, err := h.service.BookRoom(c.Request.Context(), &req, middleware.ActorName(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(booking))
}

func (h *Handler) ListBookings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid or missing date, expected YYYY-MM-DD"))
		return
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), id, date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.CancelBooking(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
