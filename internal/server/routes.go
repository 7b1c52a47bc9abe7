package server

import (
	"net/http"
	"time"

	"github.com/berfenger/pzem2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type measurementResponse struct {
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Power       float64 `json:"power"`
	Energy      float64 `json:"energy"`
	Frequency   float64 `json:"frequency"`
	PowerFactor float64 `json:"pf"`
	Alarm       bool    `json:"alarm"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/api/measurement", s.MeasurementHandler)
	e.POST("/api/reset", s.ResetEnergyHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// MeasurementHandler reads the meter on demand. A meter that does not answer
// yields 503, never a zeroed reading.
func (s *Server) MeasurementHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetMeasurementRequest{}, s.requestTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}
	response, ok := res.(domain.GetMeasurementResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unexpected reply"})
	}
	if response.HasResponseError() || response.Measurement == nil {
		msg := "no measurement"
		if response.HasResponseError() {
			msg = response.GetResponseError().Error()
		}
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: msg})
	}
	m := response.Measurement
	return c.JSON(http.StatusOK, measurementResponse{
		Voltage:     m.Voltage,
		Current:     m.Current,
		Power:       m.Power,
		Energy:      m.Energy,
		Frequency:   m.Frequency,
		PowerFactor: m.PowerFactor,
		Alarm:       m.AlarmActive(),
	})
}

func (s *Server) ResetEnergyHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ResetEnergyRequest{Source: "http"}, s.requestTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}
	response, ok := res.(domain.ResetEnergyResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unexpected reply"})
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: response.GetResponseError().Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
