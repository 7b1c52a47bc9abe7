package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	adactor "github.com/berfenger/pzem2mqtt/internal/adapter/actor"
	"github.com/berfenger/pzem2mqtt/internal/meter"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(reader meter.Reader) (*actor.ActorSystem, *actor.PID, http.Handler) {
	as := actor.NewActorSystem()
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewMeterActor(reader, time.Second, zap.NewNop())
	}))
	s := &Server{
		rootContext:    as.Root,
		masterActor:    pid,
		requestTimeout: 2 * time.Second,
	}
	return as, pid, s.RegisterRoutes()
}

func TestMeasurementRoute(t *testing.T) {

	assert := assert.New(t)

	reader := meter.NewTestReader(0xF8)
	as, pid, handler := newTestServer(reader)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/measurement", nil))
	assert.Equal(http.StatusOK, rec.Code)

	var body measurementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(225.0, body.Voltage, 1e-9)
	assert.InDelta(31.2, body.Frequency, 1e-9)
	assert.False(body.Alarm)
	assert.Contains(rec.Body.String(), `"alarm":false`)

	reader.SetFailing(true)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/measurement", nil))
	assert.Equal(http.StatusServiceUnavailable, rec.Code)
	assert.Contains(rec.Body.String(), "error")

	as.Root.Stop(pid)
	as.Shutdown()
}

func TestResetRoute(t *testing.T) {

	assert := assert.New(t)

	reader := meter.NewTestReader(0xF8)
	as, pid, handler := newTestServer(reader)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reset", nil))
	assert.Equal(http.StatusNoContent, rec.Code)
	assert.Equal(1, reader.Resets())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reset", nil))
	assert.Equal(http.StatusMethodNotAllowed, rec.Code)

	as.Root.Stop(pid)
	as.Shutdown()
}

func TestHealthCheckRoute(t *testing.T) {

	as, pid, handler := newTestServer(meter.NewTestReader(0xF8))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "health_check: OK", rec.Body.String())

	as.Root.Stop(pid)
	as.Shutdown()
}
