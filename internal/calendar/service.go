package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

var tracer = otel.Tracer("prooptica.internal.calendar")

var (
	// ErrInvalidQuery is returned for malformed week navigation parameters.
	ErrInvalidQuery = errors.New("calendar: invalid week query")

	// ErrUpstreamFailure covers every way the portal can fail a request:
	// missing session cookie, transport errors, timeouts and bad statuses.
	ErrUpstreamFailure = errors.New("calendar: upstream failure")
)

// Response outcomes passed to Recorder.RecordResponse.
const (
	OutcomeOK                = "ok"
	OutcomeInvalidSpecialist = "invalid_specialist"
	OutcomeInvalidQuery      = "invalid_query"
	OutcomeUpstreamFailure   = "upstream_failure"
)

const snapshotTimeout = 15 * time.Second

// SessionFetcher is the two-phase portal pipeline.
type SessionFetcher interface {
	AcquireSession(ctx context.Context, specialistID string) (portal.SessionToken, error)
	FetchCalendar(ctx context.Context, token portal.SessionToken, specialistID string, q portal.WeekQuery) (*portal.Page, error)
}

// Allowlist answers whether a specialist id is known.
type Allowlist interface {
	Has(specialistID string) bool
}

// Recorder receives extraction and response signals.
type Recorder interface {
	RecordExtractionMiss(field string)
	RecordResponse(outcome string)
}

// SnapshotSink stores pages the extractor could not fully read.
type SnapshotSink interface {
	Enabled() bool
	SaveSnapshot(ctx context.Context, specialistID string, fetchedAt time.Time, body []byte) (string, error)
}

// Request identifies the calendar week to load.
type Request struct {
	SpecialistID string
	Week         portal.WeekQuery
}

// Service assembles CalendarData. It holds no per-request state, so one
// instance serves concurrent requests.
type Service struct {
	fetcher   SessionFetcher
	allowlist Allowlist
	logger    *logging.Logger
	recorder  Recorder
	snapshots SnapshotSink
	location  *time.Location
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithSnapshotSink enables archiving of pages with extraction misses.
func WithSnapshotSink(sink SnapshotSink) Option {
	return func(s *Service) {
		s.snapshots = sink
	}
}

// WithLocation sets the timezone used to compute the current week.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a calendar service.
func NewService(fetcher SessionFetcher, allowlist Allowlist, opts ...Option) *Service {
	s := &Service{
		fetcher:   fetcher,
		allowlist: allowlist,
		logger:    logging.Default(),
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendar primes a fresh upstream session, fetches the requested week and
// extracts it. Unknown specialists are rejected before any network call.
// Nothing is retried.
func (s *Service) Calendar(ctx context.Context, req Request) (*CalendarData, error) {
	ctx, span := tracer.Start(ctx, "calendar.build")
	defer span.End()
	span.SetAttributes(attribute.String("prooptica.specialist_id", req.SpecialistID))

	if s.allowlist == nil || !s.allowlist.Has(req.SpecialistID) {
		s.recordResponse(OutcomeInvalidSpecialist)
		return nil, fmt.Errorf("%w: %q", portal.ErrUnknownSpecialist, req.SpecialistID)
	}

	week, err := normalizeWeek(req.Week)
	if err != nil {
		s.recordResponse(OutcomeInvalidQuery)
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	token, err := s.fetcher.AcquireSession(ctx, req.SpecialistID)
	if err != nil {
		return nil, s.upstreamFailure(span, req, err)
	}

	page, err := s.fetcher.FetchCalendar(ctx, token, req.SpecialistID, week)
	if err != nil {
		return nil, s.upstreamFailure(span, req, err)
	}

	var base *url.URL
	if page.URL != "" {
		base, _ = url.Parse(page.URL)
	}
	doc := NewExtractor(base).Extract(page.Body)
	if len(doc.Misses) > 0 {
		s.reportMisses(ctx, req.SpecialistID, week, doc.Misses, page.Body)
	}

	now := s.now().In(s.location)
	data := &CalendarData{
		SpecialistName:   doc.SpecialistName,
		Location:         doc.Location,
		Address:          doc.Address,
		Phone:            doc.Phone,
		Days:             doc.Days,
		PrevWeekStart:    optional(doc.PrevWeekStart),
		NextWeekStart:    optional(doc.NextWeekStart),
		IsCurrentWeek:    IsCurrentWeek(doc.Days, week, now),
		CurrentWeekStart: currentWeekStart(doc.Days, week, now),
		SessionID:        token.Value,
	}
	if data.Days == nil {
		data.Days = []DaySchedule{}
	}

	span.SetAttributes(
		attribute.Int("prooptica.days", len(data.Days)),
		attribute.Bool("prooptica.current_week", data.IsCurrentWeek),
	)
	s.recordResponse(OutcomeOK)
	s.logger.Debug("calendar assembled",
		"specialist_id", req.SpecialistID,
		"week_start", data.CurrentWeekStart,
		"days", len(data.Days),
	)
	return data, nil
}

func normalizeWeek(q portal.WeekQuery) (portal.WeekQuery, error) {
	if err := q.Validate(); err != nil {
		return portal.WeekQuery{}, err
	}
	if q.IsZero() {
		return q, nil
	}
	dir, _ := portal.ParseDirection(string(q.Direction))
	return portal.WeekQuery{WeekStart: q.WeekStart, Direction: dir}, nil
}

func (s *Service) upstreamFailure(span trace.Span, req Request, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "upstream failure")
	s.recordResponse(OutcomeUpstreamFailure)
	s.logger.Error("calendar upstream failure",
		"specialist_id", req.SpecialistID,
		"week_start", req.Week.WeekStart,
		"direction", string(req.Week.Direction),
		"error", err,
	)
	return fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
}

func (s *Service) reportMisses(ctx context.Context, specialistID string, week portal.WeekQuery, misses []string, body string) {
	for _, field := range misses {
		s.logger.Warn("calendar field not found",
			"specialist_id", specialistID,
			"week_start", week.WeekStart,
			"field", field,
		)
		if s.recorder != nil {
			s.recorder.RecordExtractionMiss(field)
		}
	}
	if s.snapshots == nil || !s.snapshots.Enabled() {
		return
	}

	fetchedAt := s.now()
	payload := []byte(body)
	go func() {
		snapCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
		defer cancel()
		key, err := s.snapshots.SaveSnapshot(snapCtx, specialistID, fetchedAt, payload)
		if err != nil {
			s.logger.Warn("calendar snapshot upload failed", "specialist_id", specialistID, "error", err)
			return
		}
		s.logger.Info("calendar snapshot stored", "specialist_id", specialistID, "key", key)
	}()
}

func (s *Service) recordResponse(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordResponse(outcome)
	}
}
