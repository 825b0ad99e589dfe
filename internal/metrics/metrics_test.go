package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment(t *testing.T) {
	before := testutil.ToFloat64(ledgerPayments.WithLabelValues("fund_post", OutcomeOK))
	RecordPayment("fund_post", OutcomeOK)
	after := testutil.ToFloat64(ledgerPayments.WithLabelValues("fund_post", OutcomeOK))

	assert.Equal(t, before+1, after)
}

func TestTrackInFlight(t *testing.T) {
	before := testutil.ToFloat64(httpInFlight)
	done := TrackInFlight()
	assert.Equal(t, before+1, testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, before, testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/api/post/health", http.StatusOK, 10*time.Millisecond)
	RecordNotification("log", OutcomeOK)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "tutorhub_http_requests_total")
	assert.Contains(t, string(body), "tutorhub_notify_deliveries_total")
}
