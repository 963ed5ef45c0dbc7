package scanner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	consts "github.com/sitegrade/sitegrade/internal/shared/constants"
)

// Scanner runs the full reconnaissance suite against one origin at a time.
// Every network operation carries its own deadline and a whole scan is
// additionally capped by the scan deadline, so a scan can never hang.
type Scanner struct {
	tlsTimeout     time.Duration
	headersTimeout time.Duration
	pageTimeout    time.Duration
	pathTimeout    time.Duration
	scanDeadline   time.Duration
	pathWorkers    int
	userAgent      string
	limiter        *rate.Limiter
	logger         *zap.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithLogger attaches a structured logger for per-category telemetry.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPathWorkers bounds concurrent exposed-path probes.
func WithPathWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.pathWorkers = n
		}
	}
}

// WithRequestsPerSecond sets the per-origin request budget for the
// exposed-path batch.
func WithRequestsPerSecond(rps int) Option {
	return func(s *Scanner) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// WithScanDeadline caps the duration of a whole scan.
func WithScanDeadline(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.scanDeadline = d
		}
	}
}

// WithUserAgent overrides the User-Agent sent by all probes.
func WithUserAgent(ua string) Option {
	return func(s *Scanner) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// New builds a Scanner with the documented probe deadlines.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		tlsTimeout:     consts.TLSProbeTimeout,
		headersTimeout: consts.HeadersProbeTimeout,
		pageTimeout:    consts.PageFetchTimeout,
		pathTimeout:    consts.PathProbeTimeout,
		scanDeadline:   consts.ScanDeadline,
		pathWorkers:    consts.DefaultPathWorkers,
		userAgent:      consts.UserAgent,
		limiter:        rate.NewLimiter(rate.Limit(consts.DefaultRequestsPerSecond), consts.DefaultRequestsPerSecond),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan validates the target and runs all categories, returning the sealed
// result. Only target validation and caller cancellation surface as errors;
// probe failures degrade their own category and the scan still completes.
func (s *Scanner) Scan(ctx context.Context, raw string) (*ScanResult, error) {
	return s.scan(ctx, raw, nil)
}

// ScanWithProgress behaves like Scan but additionally invokes fn with a
// snapshot after each category completes, then once more with the terminal
// snapshot whose Status is "complete". No snapshots are emitted after the
// caller cancels.
func (s *Scanner) ScanWithProgress(ctx context.Context, raw string, fn func(ScanResult)) (*ScanResult, error) {
	return s.scan(ctx, raw, fn)
}

func (s *Scanner) scan(ctx context.Context, raw string, emit func(ScanResult)) (*ScanResult, error) {
	target, err := NormalizeTarget(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.scanDeadline)
	defer cancel()

	result := newScanResult(target)
	started := time.Now()
	s.logger.Info("scan started", zap.String("origin", target.Origin))

	var mu sync.Mutex
	record := func(name string, cat *CategoryResult) {
		mu.Lock()
		defer mu.Unlock()
		result.Categories[name] = cat
		if emit != nil && ctx.Err() == nil {
			emit(result.Clone())
		}
	}

	var wg sync.WaitGroup
	runCategory := func(name string, probe func() *CategoryResult) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(name, s.runSafely(name, probe))
		}()
	}

	// Wave 1: independent probes.
	runCategory(CategorySSL, func() *CategoryResult { return s.checkSSL(ctx, target) })
	runCategory(CategoryHeaders, func() *CategoryResult { return s.checkHeaders(ctx, target) })
	runCategory(CategoryExposedFiles, func() *CategoryResult { return s.checkExposedFiles(ctx, target) })

	// Wave 2: the page is fetched once, then the body-dependent analyzers
	// run concurrently over the shared read-only copy.
	pageReady := make(chan struct{})
	var page Page
	wg.Add(1)
	go func() {
		defer wg.Done()
		page = s.fetchPage(ctx, target)
		close(pageReady)
	}()

	for name, analyze := range map[string]func() *CategoryResult{
		CategoryCMS:         func() *CategoryResult { return analyzeCMS(page) },
		CategoryMalware:     func() *CategoryResult { return analyzeMalware(page) },
		CategoryPerformance: func() *CategoryResult { return analyzePerformance(page, target) },
	} {
		wg.Add(1)
		go func(name string, analyze func() *CategoryResult) {
			defer wg.Done()
			<-pageReady
			record(name, s.runSafely(name, analyze))
		}(name, analyze)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("scan abandoned", zap.String("origin", target.Origin), zap.Error(err))
		return nil, err
	}

	finalize(result)
	s.logger.Info("scan complete",
		zap.String("origin", target.Origin),
		zap.Int("score", result.Score),
		zap.String("grade", result.Grade),
		zap.Duration("duration", time.Since(started)),
	)

	if emit != nil {
		emit(result.Clone())
	}
	return result, nil
}

// runSafely shields the orchestrator from analyzer panics: a panicking
// category is marked as an error with no score and the scan continues
// with the remaining categories.
func (s *Scanner) runSafely(name string, probe func() *CategoryResult) (cat *CategoryResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("category panicked", zap.String("category", name), zap.Any("panic", r))
			cat = &CategoryResult{
				Status: StatusError,
				Findings: []Finding{{
					ID:          name + "-internal-error",
					Name:        "Check Could Not Complete",
					Status:      StatusError,
					Severity:    SeverityInfo,
					Description: "An internal error stopped this check; the category was left unscored.",
				}},
			}
		}
	}()
	return probe()
}
