package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/fleet-reports/internal/analytics"
	"github.com/nurpe/fleet-reports/internal/fleetapi"
	"github.com/nurpe/fleet-reports/internal/model"
)

// FleetAPI is the backend surface the reports need.
type FleetAPI interface {
	List(ctx context.Context, resource string, query url.Values) ([]model.Record, error)
	CurrentSubscription(ctx context.Context) (model.Record, error)
}

// FleetAPIFactory returns a backend client that authenticates with token.
type FleetAPIFactory func(token string) FleetAPI

type ReportCache interface {
	GetDashboard(ctx context.Context, scope string, r model.ReportRange) (*model.DashboardReport, bool, error)
	SetDashboard(ctx context.Context, scope string, report model.DashboardReport) error
	GetSubscription(ctx context.Context, scope string) (*model.SubscriptionUsage, bool, error)
	SetSubscription(ctx context.Context, scope string, usage model.SubscriptionUsage) error
}

type SnapshotGenerator interface {
	Generate(report model.DashboardReport) ([]byte, error)
}

type SnapshotFormat string

const (
	SnapshotXLSX SnapshotFormat = "xlsx"
	SnapshotPDF  SnapshotFormat = "pdf"
)

type ReportOptions struct {
	DefaultRange string
	Location     *time.Location
}

type ReportService struct {
	api        FleetAPIFactory
	cache      ReportCache
	generators map[SnapshotFormat]SnapshotGenerator
	opts       ReportOptions
	log        zerolog.Logger
	now        func() time.Time
}

type SnapshotResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func NewReportService(api FleetAPIFactory, cache ReportCache, excel, pdf SnapshotGenerator, opts ReportOptions, log zerolog.Logger) *ReportService {
	if cache == nil {
		cache = noopCache{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultRange == "" {
		opts.DefaultRange = string(model.Range30Days)
	}
	return &ReportService{
		api:   api,
		cache: cache,
		generators: map[SnapshotFormat]SnapshotGenerator{
			SnapshotXLSX: excel,
			SnapshotPDF:  pdf,
		},
		opts: opts,
		log:  log,
		now:  time.Now,
	}
}

func (s *ReportService) resolveRange(raw string) analytics.Range {
	if strings.TrimSpace(raw) == "" {
		raw = s.opts.DefaultRange
	}
	if !analytics.IsKnownRange(raw) {
		s.log.Debug().Str("range", raw).Msg("unknown range, using all time")
	}
	return analytics.ParseRange(raw)
}

// Dashboard builds the platform dashboard for the given range. Partial
// backend failures are reported in the result, never as an error.
func (s *ReportService) Dashboard(ctx context.Context, principal model.Principal, rawRange string) (*model.DashboardReport, error) {
	if !principal.CanViewReports() {
		return nil, ErrPermissionDenied
	}

	r := s.resolveRange(rawRange)
	scope := principal.Scope()

	if cached, ok, err := s.cache.GetDashboard(ctx, scope, r.Token); err != nil {
		s.log.Warn().Err(err).Str("scope", scope).Msg("dashboard cache read failed")
	} else if ok {
		return cached, nil
	}

	fetched := fleetapi.NewFetcher(s.api(principal.Token)).FetchAll(ctx)
	for collection, err := range fetched.Failures {
		s.log.Warn().Err(err).Str("collection", string(collection)).Msg("collection fetch failed")
	}

	report := analytics.BuildReport(fetched.Records, r, s.now().UTC(), s.opts.Location)
	report.Failures = fetched.FailureMessages()

	if len(report.Failures) == 0 {
		if err := s.cache.SetDashboard(ctx, scope, report); err != nil {
			s.log.Warn().Err(err).Str("scope", scope).Msg("dashboard cache write failed")
		}
	}
	return &report, nil
}

// Snapshot renders the dashboard as a downloadable document.
func (s *ReportService) Snapshot(ctx context.Context, principal model.Principal, rawRange, rawFormat string) (*SnapshotResult, error) {
	format := SnapshotFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if format == "" {
		format = SnapshotXLSX
	}
	generator, ok := s.generators[format]
	if !ok || generator == nil {
		return nil, fmt.Errorf("%w: format must be xlsx or pdf", ErrInvalidInput)
	}

	report, err := s.Dashboard(ctx, principal, rawRange)
	if err != nil {
		return nil, err
	}

	content, err := generator.Generate(*report)
	if err != nil {
		return nil, fmt.Errorf("render %s snapshot: %w", format, err)
	}

	return &SnapshotResult{
		FileName:    buildFileName(*report, format),
		ContentType: contentType(format),
		Content:     content,
	}, nil
}

// Subscription reports plan usage for the caller's company.
func (s *ReportService) Subscription(ctx context.Context, principal model.Principal) (*model.SubscriptionUsage, error) {
	if !principal.CanViewReports() {
		return nil, ErrPermissionDenied
	}

	scope := principal.Scope()
	if cached, ok, err := s.cache.GetSubscription(ctx, scope); err != nil {
		s.log.Warn().Err(err).Str("scope", scope).Msg("subscription cache read failed")
	} else if ok {
		return cached, nil
	}

	api := s.api(principal.Token)

	var (
		sub     model.Record
		subErr  error
		fetched fleetapi.FetchResult
	)
	var g errgroup.Group
	g.Go(func() error {
		sub, subErr = api.CurrentSubscription(ctx)
		return nil
	})
	g.Go(func() error {
		fetched = fleetapi.NewFetcher(api, model.CollectionVehicles, model.CollectionUsers).FetchAll(ctx)
		return nil
	})
	_ = g.Wait()

	if subErr != nil {
		if fleetapi.IsNotFound(subErr) {
			return nil, fmt.Errorf("%w: no active subscription", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, subErr)
	}
	for collection, err := range fetched.Failures {
		s.log.Warn().Err(err).Str("collection", string(collection)).Msg("usage count fetch failed")
	}

	usage := analytics.BuildSubscriptionUsage(
		sub,
		len(fetched.Records[model.CollectionVehicles]),
		len(fetched.Records[model.CollectionUsers]),
		s.now().UTC(),
	)

	if len(fetched.Failures) == 0 {
		if err := s.cache.SetSubscription(ctx, scope, usage); err != nil {
			s.log.Warn().Err(err).Str("scope", scope).Msg("subscription cache write failed")
		}
	}
	return &usage, nil
}

func buildFileName(report model.DashboardReport, format SnapshotFormat) string {
	rangeLabel := sanitizeFileName(string(report.Range))
	if rangeLabel == "" {
		rangeLabel = string(model.RangeAll)
	}
	return fmt.Sprintf("fleet-dashboard-%s-%s.%s", rangeLabel, report.GeneratedAt.Format("20060102"), format)
}

func contentType(format SnapshotFormat) string {
	if format == SnapshotPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

type noopCache struct{}

func (noopCache) GetDashboard(context.Context, string, model.ReportRange) (*model.DashboardReport, bool, error) {
	return nil, false, nil
}

func (noopCache) SetDashboard(context.Context, string, model.DashboardReport) error { return nil }

func (noopCache) GetSubscription(context.Context, string) (*model.SubscriptionUsage, bool, error) {
	return nil, false, nil
}

func (noopCache) SetSubscription(context.Context, string, model.SubscriptionUsage) error { return nil }

