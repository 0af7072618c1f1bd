package handlers

import (
	"errors"
	"strconv"

	"coldtrack/internal/core/domain"
	"coldtrack/internal/core/services"
	"coldtrack/internal/pkg/pagination"
	"coldtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DeliveryHandler handles delivery endpoints
type DeliveryHandler struct {
	deliveryService *services.DeliveryService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(deliveryService *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// CreateDeliveryRequest represents delivery creation request body
type CreateDeliveryRequest struct {
	DriverID           uint    `json:"driver_id"`
	ReceiverID         uint    `json:"receiver_id"`
	CurrentTemperature float64 `json:"current_temperature"`
	Status             string  `json:"status"`
}

// UpdateDeliveryRequest represents admin delivery update request body
type UpdateDeliveryRequest struct {
	DriverID           *uint    `json:"driver_id"`
	ReceiverID         *uint    `json:"receiver_id"`
	CurrentTemperature *float64 `json:"current_temperature"`
	Status             *string  `json:"status"`
}

// UpdateStatusRequest represents status transition request body
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Create handles delivery creation
// @Summary Create delivery
// @Tags Deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateDeliveryRequest true "Delivery data"
// @Success 201 {object} response.Response
// @Router /deliveries [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var req CreateDeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.DriverID == 0 {
		return response.BadRequest(c, "Driver ID is required")
	}
	if req.ReceiverID == 0 {
		return response.BadRequest(c, "Receiver ID is required")
	}

	delivery, err := h.deliveryService.Create(c.Context(), &services.CreateDeliveryInput{
		DriverID:           req.DriverID,
		ReceiverID:         req.ReceiverID,
		CurrentTemperature: req.CurrentTemperature,
		Status:             req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSameDriverReceiver):
			return response.BadRequest(c, "Driver and receiver must be different users")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.BadRequest(c, "Driver or receiver does not exist")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Driver or receiver has the wrong role")
		case errors.Is(err, domain.ErrUnknownStatus), errors.Is(err, domain.ErrStatusNotFound):
			return response.BadRequest(c, "Unknown delivery status")
		default:
			return response.InternalServerError(c, "Failed to create delivery")
		}
	}

	return response.Created(c, "Delivery created", delivery)
}

// List handles role-scoped delivery listing
// @Summary List deliveries
// @Description Drivers see their own deliveries, receivers their delivered ones, dispatchers and admins everything
// @Tags Deliveries
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} pagination.Response
// @Router /deliveries [get]
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	deliveries, total, err := h.deliveryService.List(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientPermissions) {
			return response.Forbidden(c, "You don't have permission to list deliveries")
		}
		return response.InternalServerError(c, "Failed to list deliveries")
	}

	return c.JSON(pagination.NewResponse(deliveries, params, total))
}

// GetByID handles fetching a single delivery
// @Summary Get delivery
// @Tags Deliveries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /deliveries/{id} [get]
func (h *DeliveryHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid delivery ID")
	}

	delivery, err := h.deliveryService.GetByID(c.Context(), uint(id), actor)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDeliveryNotFound):
			return response.NotFound(c, "Delivery not found")
		case errors.Is(err, domain.ErrInsufficientPermissions):
			return response.Forbidden(c, "You don't have permission to view this delivery")
		default:
			return response.InternalServerError(c, "Failed to load delivery")
		}
	}

	return response.Success(c, "OK", delivery)
}

// ListByStatus handles listing deliveries in a given status
// @Summary List deliveries by status
// @Tags Deliveries
// @Produce json
// @Security BearerAuth
// @Param status_id path int true "Status ID"
// @Success 200 {object} pagination.Response
// @Router /deliveries/status/{status_id} [get]
func (h *DeliveryHandler) ListByStatus(c *fiber.Ctx) error {
	statusID, err := strconv.ParseUint(c.Params("status_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid status ID")
	}

	params := pagination.GetParams(c)

	deliveries, total, err := h.deliveryService.ListByStatus(c.Context(), uint(statusID), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrStatusNotFound) {
			return response.NotFound(c, "Status not found")
		}
		return response.InternalServerError(c, "Failed to list deliveries")
	}

	return c.JSON(pagination.NewResponse(deliveries, params, total))
}

// UpdateStatus handles a delivery status transition
// @Summary Update delivery status
// @Description Applies a role-gated status transition
// @Tags Deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Param body body UpdateStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /deliveries/{id}/status [put]
func (h *DeliveryHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid delivery ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	result, err := h.deliveryService.UpdateStatus(c.Context(), uint(id), req.Status, actor)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownStatus):
			return response.BadRequest(c, "Unknown delivery status")
		case errors.Is(err, domain.ErrDeliveryNotFound):
			return response.NotFound(c, "Delivery not found")
		case errors.Is(err, domain.ErrInsufficientPermissions):
			return response.Forbidden(c, "You don't have permission to update this delivery")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Status transition not allowed")
		default:
			return response.InternalServerError(c, "Failed to update status")
		}
	}

	return response.Success(c, result.Message, result)
}

// Update handles an unrestricted admin update
// @Summary Update delivery
// @Tags Deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Param body body UpdateDeliveryRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Router /deliveries/{id} [put]
func (h *DeliveryHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid delivery ID")
	}

	var req UpdateDeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	delivery, err := h.deliveryService.Update(c.Context(), uint(id), &services.UpdateDeliveryInput{
		DriverID:           req.DriverID,
		ReceiverID:         req.ReceiverID,
		CurrentTemperature: req.CurrentTemperature,
		Status:             req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDeliveryNotFound):
			return response.NotFound(c, "Delivery not found")
		case errors.Is(err, domain.ErrSameDriverReceiver):
			return response.BadRequest(c, "Driver and receiver must be different users")
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid driver or receiver")
		case errors.Is(err, domain.ErrUnknownStatus), errors.Is(err, domain.ErrStatusNotFound):
			return response.BadRequest(c, "Unknown delivery status")
		default:
			return response.InternalServerError(c, "Failed to update delivery")
		}
	}

	return response.Success(c, "Delivery updated", delivery)
}

// Delete handles delivery deletion
// @Summary Delete delivery
// @Tags Deliveries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Success 200 {object} response.Response
// @Router /deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid delivery ID")
	}

	if err := h.deliveryService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrDeliveryNotFound) {
			return response.NotFound(c, "Delivery not found")
		}
		return response.InternalServerError(c, "Failed to delete delivery")
	}

	return response.Success(c, "Delivery deleted", nil)
}

// Stats handles aggregate delivery statistics
// @Summary Delivery statistics
// @Tags Deliveries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /deliveries/stats [get]
func (h *DeliveryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.deliveryService.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	return response.Success(c, "OK", stats)
}
