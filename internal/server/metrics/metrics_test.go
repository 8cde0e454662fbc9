package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/api/profile", "200", 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/profile", "200", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/profile", "200")))
}

func TestRecordGRPCRequestAndEvents(t *testing.T) {
	m := New()
	m.RecordGRPCRequest("/starterkit.v1.AccountService/SignIn", "OK", time.Millisecond)
	m.RecordEvent(EventAvatarUpdated)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.grpcRequests.WithLabelValues("/starterkit.v1.AccountService/SignIn", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues(EventAvatarUpdated)))
}

func TestInFlight(t *testing.T) {
	m := New()
	m.IncrementInFlight()
	m.IncrementInFlight()
	m.DecrementInFlight()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.RecordEvent(EventSignUp)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `starterkit_account_events_total{event="sign_up"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
