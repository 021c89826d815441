package calendar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChefJodlak/prooptica-sub000/internal/http/respond"
	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

type upstreamStub struct {
	primes   atomic.Int32
	fetches  atomic.Int32
	noCookie bool
	status   int
	body     string
}

func (u *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("PHPSESSID"); err != nil {
		u.primes.Add(1)
		if !u.noCookie {
			http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "abc123", Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	u.fetches.Add(1)
	if u.status != 0 {
		w.WriteHeader(u.status)
		return
	}
	_, _ = w.Write([]byte(u.body))
}

func newCalendarServer(t *testing.T, stub *upstreamStub) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(stub)
	t.Cleanup(upstream.Close)

	dir, err := portal.NewDirectory(map[string]string{"anna-nowak": upstream.URL + "/specjalista/anna-nowak"})
	require.NoError(t, err)

	logger := logging.New("error")
	client := portal.NewClient(dir, portal.WithLogger(logger), portal.WithTimeout(2*time.Second))
	svc := NewService(client, dir,
		WithLogger(logger),
		WithClock(func() time.Time { return time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC) }),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/calendar", NewHandler(svc, logger).GetCalendar)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeError(t *testing.T, resp *http.Response) respond.ErrorBody {
	t.Helper()
	var body respond.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandler_GetCalendar(t *testing.T) {
	stub := &upstreamStub{body: loadFixture(t, "week.html")}
	srv := newCalendarServer(t, stub)

	resp, err := http.Get(srv.URL + "/calendar?specialist=anna-nowak")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "mgr Anna Nowak", raw["specialistName"])
	assert.Equal(t, "abc123", raw["sessionId"])
	assert.Equal(t, true, raw["isCurrentWeek"])
	assert.Nil(t, raw["prevWeekStart"])
	assert.Equal(t, "2026-10-26", raw["nextWeekStart"])

	days := raw["days"].([]any)
	require.Len(t, days, 5)
	monday := days[0].(map[string]any)
	slots := monday["slots"].([]any)
	taken := slots[1].(map[string]any)
	assert.Equal(t, "09:15", taken["time"])
	_, hasURL := taken["bookingUrl"]
	assert.False(t, hasURL, "taken slot must not carry a booking url")

	available := slots[0].(map[string]any)
	assert.Contains(t, available["bookingUrl"], "/rezerwacja?termin=2026-10-19T09:00")

	assert.Equal(t, int32(1), stub.primes.Load())
	assert.Equal(t, int32(1), stub.fetches.Load())
}

func TestHandler_UnknownSpecialist(t *testing.T) {
	stub := &upstreamStub{}
	srv := newCalendarServer(t, stub)

	resp, err := http.Get(srv.URL + "/calendar?specialist=unknown-id")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_specialist", decodeError(t, resp).Error)
	assert.Zero(t, stub.primes.Load())
	assert.Zero(t, stub.fetches.Load())
}

func TestHandler_MissingSpecialist(t *testing.T) {
	srv := newCalendarServer(t, &upstreamStub{})

	resp, err := http.Get(srv.URL + "/calendar")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_InvalidQuery(t *testing.T) {
	srv := newCalendarServer(t, &upstreamStub{})

	resp, err := http.Get(srv.URL + "/calendar?specialist=anna-nowak&weekStart=2026-10-26")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_query", decodeError(t, resp).Error)
}

func TestHandler_NoSessionCookie(t *testing.T) {
	stub := &upstreamStub{noCookie: true}
	srv := newCalendarServer(t, stub)

	resp, err := http.Get(srv.URL + "/calendar?specialist=anna-nowak")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "upstream_failure", decodeError(t, resp).Error)
	assert.Equal(t, int32(1), stub.primes.Load())
	assert.Zero(t, stub.fetches.Load(), "fetch must not be attempted without a session")
}

func TestHandler_UpstreamStatus(t *testing.T) {
	stub := &upstreamStub{status: http.StatusServiceUnavailable}
	srv := newCalendarServer(t, stub)

	resp, err := http.Get(srv.URL + "/calendar?specialist=anna-nowak&weekStart=2026-10-26&direction=next")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(1), stub.fetches.Load())
}
