package panel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/logger"
	"github.com/oshokin/alarm-panel/internal/report"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

// MIMEApplicationMsgpack is the content type of MessagePack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// Service abstracts the panel operations the REST API depends on.
type Service interface {
	Status() alarm.Output
	Reading() sensor.Reading
	EventLog() []time.Time
	PressKeys(ctx context.Context, keys string) (int, error)
	SetHazards(ctx context.Context, override sensor.Override) error
}

// PressKeysRequest is the body of POST /api/v1/keys.
type PressKeysRequest struct {
	// Keys is the key sequence, e.g. "1805#".
	Keys string `json:"keys"`
}

// PressKeysResponse is returned after keys were queued.
type PressKeysResponse struct {
	// Queued is the number of queued key events.
	Queued int `json:"queued"`
}

// HazardsRequest is the body of POST /api/v1/hazards; omitted fields are unchanged.
type HazardsRequest struct {
	// Gas sets the simulated gas detector state.
	Gas *bool `json:"gas,omitempty"`
	// TemperatureC sets the simulated temperature in °C.
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// EventsResponse lists trigger timestamps oldest first.
type EventsResponse struct {
	// Entries are the trigger timestamps.
	Entries []time.Time `json:"entries" msgpack:"entries"`
}

// Handler serves the REST API.
type Handler struct {
	// service provides the panel operations.
	service Service
}

// NewHandler creates a handler backed by the service.
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// NewServer creates an echo instance with the panel routes and middleware.
func NewServer(ctx context.Context, service Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/health"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.DebugKV(ctx, "HTTP request",
				"method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency.String())

			return nil
		},
	}))
	e.Use(middleware.Recover())

	NewHandler(service).Register(e)

	return e
}

// Register attaches the routes to e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/api/health", h.HandleHealth)

	v1 := e.Group("/api/v1")
	v1.GET("/status", h.HandleStatus)
	v1.GET("/events", h.HandleEvents)
	v1.POST("/keys", h.HandlePressKeys)
	v1.POST("/hazards", h.HandleSetHazards)
}

// HandleHealth reports that the panel is running.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStatus returns the machine output and the latest sensor reading.
func (h *Handler) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, report.StatusFields(h.service.Status(), h.service.Reading()))
}

// HandleEvents returns the trigger log as JSON, or as MessagePack with ?format=msgpack.
func (h *Handler) HandleEvents(c echo.Context) error {
	response := EventsResponse{Entries: h.service.EventLog()}
	if response.Entries == nil {
		response.Entries = []time.Time{}
	}

	if c.QueryParam("format") != "msgpack" {
		return c.JSON(http.StatusOK, response)
	}

	data, err := msgpack.Marshal(&response)
	if err != nil {
		return newInternalError("failed to encode msgpack")
	}

	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}

// HandlePressKeys queues a key sequence.
func (h *Handler) HandlePressKeys(c echo.Context) error {
	var request PressKeysRequest
	if err := c.Bind(&request); err != nil {
		return newBadRequestError("invalid request body", err)
	}

	if request.Keys == "" {
		return newBadRequestError("keys are required", nil)
	}

	queued, err := h.service.PressKeys(c.Request().Context(), request.Keys)

	switch {
	case err == nil:
	case errors.Is(err, keypad.ErrUnknownKey):
		return newBadRequestError("invalid keys", err)
	case errors.Is(err, keypad.ErrQueueFull):
		return newConflictError("key queue is full", err)
	default:
		return newInternalError("failed to queue keys")
	}

	return c.JSON(http.StatusAccepted, PressKeysResponse{Queued: queued})
}

// HandleSetHazards applies simulated sensor values and returns the status.
func (h *Handler) HandleSetHazards(c echo.Context) error {
	var request HazardsRequest
	if err := c.Bind(&request); err != nil {
		return newBadRequestError("invalid request body", err)
	}

	if request.Gas == nil && request.TemperatureC == nil {
		return newBadRequestError("gas or temperature_c is required", nil)
	}

	override := sensor.Override{
		Gas:          request.Gas,
		TemperatureC: request.TemperatureC,
	}

	if err := override.Validate(); err != nil {
		return newBadRequestError("invalid hazards", err)
	}

	err := h.service.SetHazards(c.Request().Context(), override)

	switch {
	case err == nil:
	case errors.Is(err, sensor.ErrSimulationUnsupported):
		return newConflictError("hazards cannot be simulated", err)
	default:
		return newInternalError("failed to apply hazards")
	}

	return h.HandleStatus(c)
}
