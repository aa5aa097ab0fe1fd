package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taicc-readiness/utilities"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorderCountsEvents(t *testing.T) {
	bus := utilities.NewEventBus()
	r := NewRecorder()
	r.Subscribe(bus)

	bus.Publish(EventSessionStarted, nil)
	bus.Publish(EventTransition, TransitionEvent{SessionID: "s", From: "login", To: "payment"})
	bus.Publish(EventTransition, TransitionEvent{SessionID: "s", From: "login", To: "payment"})
	bus.Publish(EventPaymentPolled, PaymentPollEvent{Result: "captured", Attempts: 2})
	bus.Publish(EventReportGenerated, ReportEvent{Result: "ok"})
	bus.Publish(EventDeliveryFinished, DeliveryEvent{Channel: "email", Status: "skipped"})
	bus.Publish(EventTransition, "not an event")
	bus.Wait()

	body := scrape(t, r)
	assert.Contains(t, body, "taicc_sessions_started_total 1")
	assert.Contains(t, body, `taicc_session_transitions_total{from="login",to="payment"} 2`)
	assert.Contains(t, body, `taicc_payment_polls_total{result="captured"} 1`)
	assert.Contains(t, body, `taicc_reports_generated_total{result="ok"} 1`)
	assert.Contains(t, body, `taicc_deliveries_total{channel="email",status="skipped"} 1`)
}

func TestRegistryIncludesRuntimeCollectors(t *testing.T) {
	families, err := NewRecorder().Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}
