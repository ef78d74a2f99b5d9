package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
	"github.com/MichalZajkowski/jira-build-health-action/internal/usecase/scoring"
)

// AnalyzeInput selects what to analyze and where to publish it.
type AnalyzeInput struct {
	Files    []string
	IssueKey string
	DryRun   bool
}

// AnalyzeResult is everything an analysis produced, even when it failed part-way.
type AnalyzeResult struct {
	RunID    string
	ReportID string

	Files    []string
	Problems []domain.FileProblem

	StartedAt time.Time
	EndedAt   time.Time

	Report     domain.HealthReport
	Published  bool
	StatusCode int
}

// AnalyzeObserver is told about progress while an analysis runs.
type AnalyzeObserver interface {
	Started(files []string)
	FileSkipped(problem domain.FileProblem)
	Scored(report domain.HealthReport)
	Publishing(issueKey string)
}

type nopObserver struct{}

func (nopObserver) Started([]string) {}
func (nopObserver) FileSkipped(domain.FileProblem) {}
func (nopObserver) Scored(domain.HealthReport) {}
func (nopObserver) Publishing(string) {}

type AnalyzeBuilds struct {
	loader    ports.SuiteLoader
	publisher ports.ReportPublisher
	store     ports.ArtifactStore
	history   ports.HistoryStore

	expand      func([]string) ([]string, error)
	historyRuns int
	scoring     domain.ScoringConfig

	observer AnalyzeObserver
	log      *slog.Logger
	now      func() time.Time
	newID    func() string
}

type AnalyzeOption func(*AnalyzeBuilds)

// WithArtifactStore saves every analysis as a report artifact.
func WithArtifactStore(s ports.ArtifactStore) AnalyzeOption {
	return func(uc *AnalyzeBuilds) { uc.store = s }
}

// WithHistory replays the last runs statuses before scoring and records the new run after.
func WithHistory(h ports.HistoryStore, runs int) AnalyzeOption {
	return func(uc *AnalyzeBuilds) {
		uc.history = h
		uc.historyRuns = runs
	}
}

// WithExpander resolves glob patterns in the input before loading.
func WithExpander(expand func([]string) ([]string, error)) AnalyzeOption {
	return func(uc *AnalyzeBuilds) { uc.expand = expand }
}

func WithScoring(cfg domain.ScoringConfig) AnalyzeOption {
	return func(uc *AnalyzeBuilds) { uc.scoring = cfg }
}

func WithLogger(l *slog.Logger) AnalyzeOption {
	return func(uc *AnalyzeBuilds) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithObserver(o AnalyzeObserver) AnalyzeOption {
	return func(uc *AnalyzeBuilds) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) AnalyzeOption {
	return func(uc *AnalyzeBuilds) { uc.now = now }
}

// WithRunIDs is useful for tests.
func WithRunIDs(gen func() string) AnalyzeOption {
	return func(uc *AnalyzeBuilds) { uc.newID = gen }
}

// NewAnalyzeBuilds wires the analysis. publisher may be nil, which behaves like a dry run.
func NewAnalyzeBuilds(loader ports.SuiteLoader, publisher ports.ReportPublisher, opts ...AnalyzeOption) *AnalyzeBuilds {
	uc := &AnalyzeBuilds{
		loader:    loader,
		publisher: publisher,
		scoring: domain.ScoringConfig{
			BaseScore:      domain.DefaultBaseScore,
			FailurePenalty: domain.DefaultFailurePenalty,
		},
		observer: nopObserver{},
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute loads every file, scores the build and publishes the report.
//
// Unreadable or malformed files are recorded as problems and skipped. A publish
// failure is returned as-is; persistence failures are returned only when
// publishing succeeded (or was skipped).
func (uc *AnalyzeBuilds) Execute(ctx context.Context, in AnalyzeInput) (AnalyzeResult, error) {
	res := AnalyzeResult{
		RunID:     uc.newID(),
		Files:     in.Files,
		Problems:  []domain.FileProblem{},
		StartedAt: uc.now(),
	}

	if uc.expand != nil {
		files, err := uc.expand(in.Files)
		if err != nil {
			res.EndedAt = uc.now()
			return res, &domain.OpError{Op: "analyze.expand", Kind: domain.KindInvalidInput, Err: err}
		}
		res.Files = files
	}

	if len(res.Files) == 0 {
		res.EndedAt = uc.now()
		return res, &domain.OpError{
			Op:   "analyze.execute",
			Kind: domain.KindInvalidInput,
			Err:  domain.ErrNoInputFiles,
		}
	}

	publish := !in.DryRun && uc.publisher != nil
	if publish && strings.TrimSpace(in.IssueKey) == "" {
		res.EndedAt = uc.now()
		return res, &domain.OpError{
			Op:   "analyze.execute",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("issue key is required: %w", domain.ErrInvalidConfig),
		}
	}

	log := uc.log.With("run_id", res.RunID)
	log.Info("analyze.start", "files", len(res.Files), "issue", in.IssueKey, "dry_run", !publish)
	uc.observer.Started(res.Files)

	agent := scoring.NewAgent(
		scoring.WithBaseScore(uc.scoring.BaseScore),
		scoring.WithPenalty(uc.scoring.FailurePenalty),
	)

	if uc.history != nil {
		h, order, err := uc.history.Load(ctx, uc.historyRuns)
		if err != nil {
			log.Warn("history.load_failed", "error", err)
		} else {
			agent.Seed(h, order)
			log.Debug("history.loaded", "tests", len(order))
		}
	}

	for _, path := range res.Files {
		if err := ctx.Err(); err != nil {
			res.Report = agent.Report()
			res.EndedAt = uc.now()
			log.Warn("analyze.canceled", "error", err)
			return res, err
		}

		suite, err := uc.loader.LoadSuite(path)
		if err != nil {
			problem := problemFor(path, err)
			res.Problems = append(res.Problems, problem)
			uc.observer.FileSkipped(problem)
			log.Warn("junit.load_failed", "path", path, "error", err)
			continue
		}

		agent.AddSuite(suite)
		log.Debug("junit.loaded", "path", path, "cases", len(suite.Cases), "duration", suite.Duration)
	}

	res.Report = agent.Report()
	log.Info("analyze.scored",
		"score", res.Report.Summary.Score,
		"status", res.Report.Summary.Status,
		"failures", len(res.Report.CurrentFailures),
		"flaky", len(res.Report.FlakyTests),
	)

	uc.observer.Scored(res.Report)

	var publishErr error
	if publish {
		uc.observer.Publishing(in.IssueKey)
		res.StatusCode, publishErr = uc.publisher.Publish(ctx, in.IssueKey, res.Report)
		res.Published = publishErr == nil
	}

	var persistErrs []error
	if uc.history != nil {
		h, order := agent.RunHistory()
		if err := uc.history.Record(ctx, res.RunID, res.StartedAt, h, order); err != nil {
			log.Warn("history.record_failed", "error", err)
			persistErrs = append(persistErrs, err)
		}
	}

	res.EndedAt = uc.now()

	if uc.store != nil {
		id, err := uc.store.SaveReport(domain.ReportArtifact{
			RunID:     res.RunID,
			IssueKey:  in.IssueKey,
			Files:     res.Files,
			Problems:  res.Problems,
			StartedAt: res.StartedAt,
			EndedAt:   res.EndedAt,
			Report:    res.Report,
			Published: res.Published,
		})
		if err != nil {
			log.Warn("report.save_failed", "error", err)
			persistErrs = append(persistErrs, err)
		}
		res.ReportID = id
	}

	if publishErr != nil {
		log.Error("analyze.failed", "error", publishErr)
		return res, publishErr
	}

	log.Info("analyze.ok", "published", res.Published, "report_id", res.ReportID)
	return res, errors.Join(persistErrs...)
}

func problemFor(path string, err error) domain.FileProblem {
	kind := domain.KindExecution
	var oe *domain.OpError
	if errors.As(err, &oe) {
		kind = oe.Kind
	}
	return domain.FileProblem{Path: path, Kind: kind, Message: err.Error()}
}
