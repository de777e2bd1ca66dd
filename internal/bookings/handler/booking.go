package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"servicehub/internal/bookings/export"
	"servicehub/internal/bookings/service"
	apperrors "servicehub/pkg/errors"
	httputil "servicehub/pkg/http"
	"servicehub/pkg/logger"
	"servicehub/pkg/middleware"
	"servicehub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	result, err := h.service.List(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		query.Get("role"),
		query.Get("status"),
		page,
		limit,
	)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	h.writeSuccess(w, "List", result)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.SetStatus(r.Context(), ps.ByName("id"), update.Status, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", model.StatusResponse{ID: booking.ID, Status: booking.Status})
}

func (h *BookingHandler) AppendMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "AppendMessage", apperrors.InvalidInput("Invalid request body"))
		return
	}

	msg, err := h.service.AppendMessage(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context()), req.Text)
	if err != nil {
		h.writeError(w, "AppendMessage", err)
		return
	}

	h.writeSuccess(w, "AppendMessage", msg)
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	h.writeSuccess(w, "Stats", stats)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	duration, err := strconv.Atoi(query.Get("duration"))
	if err != nil {
		h.writeError(w, "Availability", apperrors.InvalidInput("duration must be a whole number of hours"))
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(),
		query.Get("service_id"),
		query.Get("date"),
		query.Get("time"),
		duration,
	)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	h.writeSuccess(w, "Availability", availability)
}

func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	bookings, err := h.service.Export(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		query.Get("role"),
		query.Get("status"),
	)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}

	data, err := export.Workbook(bookings)
	if err != nil {
		h.log.Error("failed to render export workbook", "error", err)
		h.writeError(w, "Export", apperrors.Internal("Failed to render export", err))
		return
	}

	if err := httputil.WriteAttachment(w, export.FileName(time.Now()), export.ContentType, data); err != nil {
		h.log.Error("failed to write attachment", "handler", "Export", "operation", "WriteAttachment", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/stats", h.Stats)
	router.GET("/api/v1/bookings/availability", h.Availability)
	router.GET("/api/v1/bookings/export", h.Export)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PUT("/api/v1/bookings/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/bookings/id/:id/messages", h.AppendMessage)
}
