package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

type fakeFetcher struct {
	mu         sync.Mutex
	primeErr   error
	fetchErr   error
	page       *portal.Page
	primeCalls int
	fetchCalls int
	lastQuery  portal.WeekQuery
}

func (f *fakeFetcher) AcquireSession(_ context.Context, _ string) (portal.SessionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.primeCalls++
	if f.primeErr != nil {
		return portal.SessionToken{}, f.primeErr
	}
	return portal.SessionToken{Name: "PHPSESSID", Value: "sess-123"}, nil
}

func (f *fakeFetcher) FetchCalendar(_ context.Context, _ portal.SessionToken, _ string, q portal.WeekQuery) (*portal.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.lastQuery = q
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.page, nil
}

type allowAll map[string]bool

func (a allowAll) Has(id string) bool { return a[id] }

type fakeRecorder struct {
	mu        sync.Mutex
	misses    []string
	responses []string
}

func (r *fakeRecorder) RecordExtractionMiss(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses = append(r.misses, field)
}

func (r *fakeRecorder) RecordResponse(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, outcome)
}

type fakeSnapshots struct {
	saved chan string
}

func (f *fakeSnapshots) Enabled() bool { return true }

func (f *fakeSnapshots) SaveSnapshot(_ context.Context, specialistID string, _ time.Time, _ []byte) (string, error) {
	f.saved <- specialistID
	return "calendar-snapshots/v1/" + specialistID, nil
}

func newTestService(t *testing.T, fetcher *fakeFetcher, opts ...Option) (*Service, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	clock := func() time.Time { return time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC) }
	base := []Option{
		WithLogger(logging.New("error")),
		WithRecorder(rec),
		WithClock(clock),
	}
	return NewService(fetcher, allowAll{"anna-nowak": true}, append(base, opts...)...), rec
}

func TestService_Calendar(t *testing.T) {
	fetcher := &fakeFetcher{page: &portal.Page{
		URL:        "https://kalendarz.optykonline.pl/specjalista/anna-nowak",
		StatusCode: 200,
		Body:       loadFixture(t, "week.html"),
	}}
	svc, rec := newTestService(t, fetcher)

	data, err := svc.Calendar(context.Background(), Request{SpecialistID: "anna-nowak"})
	require.NoError(t, err)

	assert.Equal(t, "mgr Anna Nowak", data.SpecialistName)
	assert.Equal(t, "sess-123", data.SessionID)
	assert.Len(t, data.Days, 5)
	assert.Nil(t, data.PrevWeekStart)
	require.NotNil(t, data.NextWeekStart)
	assert.Equal(t, "2026-10-26", *data.NextWeekStart)
	assert.True(t, data.IsCurrentWeek)
	assert.Equal(t, "2026-10-19", data.CurrentWeekStart)
	assert.Equal(t, 1, fetcher.primeCalls)
	assert.Equal(t, 1, fetcher.fetchCalls)
	assert.Equal(t, []string{OutcomeOK}, rec.responses)
}

func TestService_UnknownSpecialistMakesNoUpstreamCall(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, rec := newTestService(t, fetcher)

	_, err := svc.Calendar(context.Background(), Request{SpecialistID: "unknown-id"})
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrUnknownSpecialist)
	assert.Zero(t, fetcher.primeCalls)
	assert.Zero(t, fetcher.fetchCalls)
	assert.Equal(t, []string{OutcomeInvalidSpecialist}, rec.responses)
}

func TestService_InvalidWeekQuery(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _ := newTestService(t, fetcher)

	for _, q := range []portal.WeekQuery{
		{WeekStart: "2026-10-26"},
		{Direction: portal.DirectionNext},
		{WeekStart: "26.10.2026", Direction: portal.DirectionNext},
		{WeekStart: "2026-10-26", Direction: "sideways"},
	} {
		_, err := svc.Calendar(context.Background(), Request{SpecialistID: "anna-nowak", Week: q})
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %+v", q)
	}
	assert.Zero(t, fetcher.primeCalls)
}

func TestService_NoSessionCookieSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{primeErr: portal.ErrNoSessionCookie}
	svc, rec := newTestService(t, fetcher)

	_, err := svc.Calendar(context.Background(), Request{SpecialistID: "anna-nowak"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.ErrorIs(t, err, portal.ErrNoSessionCookie)
	assert.Equal(t, 1, fetcher.primeCalls)
	assert.Zero(t, fetcher.fetchCalls)
	assert.Equal(t, []string{OutcomeUpstreamFailure}, rec.responses)
}

func TestService_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{fetchErr: errors.New("portal: calendar request failed: context deadline exceeded")}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.Calendar(context.Background(), Request{SpecialistID: "anna-nowak"})
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.Equal(t, 1, fetcher.fetchCalls)
}

func TestService_NormalizesDirection(t *testing.T) {
	fetcher := &fakeFetcher{page: &portal.Page{Body: loadFixture(t, "header_only.html")}}
	svc, _ := newTestService(t, fetcher)

	data, err := svc.Calendar(context.Background(), Request{
		SpecialistID: "anna-nowak",
		Week:         portal.WeekQuery{WeekStart: "2026-10-26", Direction: "NEXT"},
	})
	require.NoError(t, err)
	assert.Equal(t, portal.DirectionNext, fetcher.lastQuery.Direction)
	assert.Empty(t, data.Days)
	assert.NotNil(t, data.Days)
	assert.False(t, data.IsCurrentWeek)
	assert.Equal(t, "2026-10-26", data.CurrentWeekStart)
}

func TestService_MissesAreRecordedAndArchived(t *testing.T) {
	fetcher := &fakeFetcher{page: &portal.Page{Body: loadFixture(t, "header_only.html")}}
	snaps := &fakeSnapshots{saved: make(chan string, 1)}
	svc, rec := newTestService(t, fetcher, WithSnapshotSink(snaps))

	_, err := svc.Calendar(context.Background(), Request{SpecialistID: "anna-nowak"})
	require.NoError(t, err)

	rec.mu.Lock()
	assert.Equal(t, []string{FieldDays}, rec.misses)
	rec.mu.Unlock()

	select {
	case id := <-snaps.saved:
		assert.Equal(t, "anna-nowak", id)
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was not saved")
	}
}
