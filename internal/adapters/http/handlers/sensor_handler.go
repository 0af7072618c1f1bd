package handlers

import (
	"errors"
	"strconv"
	"time"

	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/core/domain"
	"coldtrack/internal/core/services"
	"coldtrack/internal/pkg/pagination"
	"coldtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SensorHandler handles sensor telemetry endpoints
type SensorHandler struct {
	sensorService *services.SensorService
}

// NewSensorHandler creates a new sensor handler
func NewSensorHandler(sensorService *services.SensorService) *SensorHandler {
	return &SensorHandler{sensorService: sensorService}
}

// ReadingRequest represents a sensor reading submission
type ReadingRequest struct {
	SensorID    string     `json:"sensor_id"`
	Temperature float64    `json:"temperature"`
	Timestamp   *time.Time `json:"timestamp"`
}

// Ingest handles a single sensor reading submission
// @Summary Submit sensor reading
// @Description Stores a reading, evaluates temperature thresholds and notifies live subscribers
// @Tags Sensors
// @Accept json
// @Produce json
// @Param body body ReadingRequest true "Sensor reading"
// @Success 201 {object} response.Response
// @Router /sensors/data [post]
func (h *SensorHandler) Ingest(c *fiber.Ctx) error {
	var req ReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.SensorID == "" {
		return response.BadRequest(c, "Sensor ID is required")
	}

	result, err := h.sensorService.Ingest(c.Context(), &services.ReadingInput{
		SensorID:    req.SensorID,
		Temperature: req.Temperature,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid sensor reading")
		}
		return response.InternalServerError(c, "Failed to store reading")
	}

	return response.Created(c, "Reading stored", result)
}

// IngestBatch handles a batch of sensor readings
// @Summary Submit sensor readings batch
// @Tags Sensors
// @Accept json
// @Produce json
// @Param body body []ReadingRequest true "Sensor readings (max 1000)"
// @Success 201 {object} response.Response
// @Router /sensors/data/batch [post]
func (h *SensorHandler) IngestBatch(c *fiber.Ctx) error {
	var reqs []ReadingRequest
	if err := c.BodyParser(&reqs); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if len(reqs) == 0 {
		return response.BadRequest(c, "Batch is empty")
	}
	if len(reqs) > services.MaxBatchSize {
		return response.BadRequest(c, "Batch exceeds 1000 readings")
	}

	inputs := make([]*services.ReadingInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, &services.ReadingInput{
			SensorID:    req.SensorID,
			Temperature: req.Temperature,
			Timestamp:   req.Timestamp,
		})
	}

	result, err := h.sensorService.IngestBatch(c.Context(), inputs)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid sensor reading in batch")
		}
		return response.InternalServerError(c, "Failed to store batch")
	}

	return response.Created(c, "Batch stored", result)
}

// List handles paginated listing of all readings
// @Summary List sensor readings
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} pagination.Response
// @Router /sensors/temperature [get]
func (h *SensorHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	readings, total, err := h.sensorService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list readings")
	}

	return c.JSON(pagination.NewResponse(readings, params, total))
}

// GetByID handles fetching a single reading
// @Summary Get sensor reading
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reading ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sensors/data/{id} [get]
func (h *SensorHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid reading ID")
	}

	reading, err := h.sensorService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrSensorDataNotFound) {
			return response.NotFound(c, "Reading not found")
		}
		return response.InternalServerError(c, "Failed to load reading")
	}

	return response.Success(c, "OK", reading)
}

// ListBySensor handles paginated listing for one sensor
// @Summary List readings for a sensor
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param sensor_id path string true "Sensor ID"
// @Success 200 {object} pagination.Response
// @Router /sensors/sensor/{sensor_id} [get]
func (h *SensorHandler) ListBySensor(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	readings, total, err := h.sensorService.ListBySensor(c.Context(), c.Params("sensor_id"), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Sensor ID is required")
		}
		return response.InternalServerError(c, "Failed to list readings")
	}

	return c.JSON(pagination.NewResponse(readings, params, total))
}

// Latest handles fetching the most recent reading for a sensor
// @Summary Latest reading for a sensor
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param sensor_id path string true "Sensor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sensors/sensor/{sensor_id}/latest [get]
func (h *SensorHandler) Latest(c *fiber.Ctx) error {
	reading, err := h.sensorService.Latest(c.Context(), c.Params("sensor_id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Sensor ID is required")
		case errors.Is(err, domain.ErrSensorDataNotFound):
			return response.NotFound(c, "No readings for this sensor")
		default:
			return response.InternalServerError(c, "Failed to load reading")
		}
	}

	return response.Success(c, "OK", reading)
}

// SensorStats handles per-sensor statistics over a trailing window
// @Summary Sensor statistics
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param sensor_id path string true "Sensor ID"
// @Param hours query int false "Window in hours (1-168, default 24)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sensors/sensor/{sensor_id}/stats [get]
func (h *SensorHandler) SensorStats(c *fiber.Ctx) error {
	hours := hoursParam(c)

	stats, err := h.sensorService.Stats(c.Context(), c.Params("sensor_id"), hours)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Sensor ID is required")
		case errors.Is(err, domain.ErrSensorDataNotFound):
			return response.NotFound(c, "No readings for this sensor in the window")
		default:
			return response.InternalServerError(c, "Failed to compute statistics")
		}
	}

	return response.Success(c, "OK", stats)
}

// AllStats handles statistics for every known sensor
// @Summary Statistics for all sensors
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param hours query int false "Window in hours (1-168, default 24)"
// @Success 200 {object} response.Response
// @Router /sensors/stats [get]
func (h *SensorHandler) AllStats(c *fiber.Ctx) error {
	stats, err := h.sensorService.AllStats(c.Context(), hoursParam(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	return response.Success(c, "OK", stats)
}

// Alerts handles the lookback alert report
// @Summary Temperature alerts
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param hours query int false "Window in hours (1-168, default 24)"
// @Success 200 {object} response.Response
// @Router /sensors/alerts [get]
func (h *SensorHandler) Alerts(c *fiber.Ctx) error {
	report, err := h.sensorService.Alerts(c.Context(), hoursParam(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute alert report")
	}
	return response.Success(c, "OK", report)
}

// Filter handles filtered listing of readings
// @Summary Filter sensor readings
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param sensor_id query string false "Sensor ID"
// @Param start_date query string false "RFC3339 start"
// @Param end_date query string false "RFC3339 end"
// @Param min_temperature query number false "Minimum temperature"
// @Param max_temperature query number false "Maximum temperature"
// @Success 200 {object} pagination.Response
// @Router /sensors/filter [get]
func (h *SensorHandler) Filter(c *fiber.Ctx) error {
	filter := &repositories.SensorReadingFilter{
		SensorID: c.Query("sensor_id"),
	}

	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return response.BadRequest(c, "Invalid start_date, expected RFC3339")
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return response.BadRequest(c, "Invalid end_date, expected RFC3339")
		}
		filter.EndDate = &t
	}
	if v := c.Query("min_temperature"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return response.BadRequest(c, "Invalid min_temperature")
		}
		filter.MinTemperature = &f
	}
	if v := c.Query("max_temperature"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return response.BadRequest(c, "Invalid max_temperature")
		}
		filter.MaxTemperature = &f
	}

	params := pagination.GetParams(c)

	readings, total, err := h.sensorService.Filter(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid filter range")
		}
		return response.InternalServerError(c, "Failed to filter readings")
	}

	return c.JSON(pagination.NewResponse(readings, params, total))
}

// hoursParam extracts the stats window query param
func hoursParam(c *fiber.Ctx) int {
	hours, err := strconv.Atoi(c.Query("hours", strconv.Itoa(domain.DefaultStatsPeriodHours)))
	if err != nil {
		return domain.DefaultStatsPeriodHours
	}
	return hours
}
