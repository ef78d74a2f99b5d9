// Package scoring turns parsed test suites into a build health report.
//
// An Agent accumulates suites in the order they were produced. Every failing
// test costs a fixed penalty off the base score, and the per-test status
// history gathered along the way is used to spot flaky tests: ones that failed
// at some point but passed on their latest run.
package scoring

import (
	"math"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

type Agent struct {
	penalty int

	score         int
	totalDuration float64
	failures      []domain.Failure

	order      []string
	history    domain.TestHistory
	lastStatus map[string]domain.TestStatus
	current    map[string]bool
	seeded     map[string]int
}

type Option func(*Agent)

// WithPenalty overrides the points lost per failing test.
func WithPenalty(p int) Option {
	return func(a *Agent) {
		if p >= 0 {
			a.penalty = p
		}
	}
}

// WithBaseScore overrides the starting score.
func WithBaseScore(s int) Option {
	return func(a *Agent) { a.score = s }
}

func NewAgent(opts ...Option) *Agent {
	a := &Agent{
		penalty:    domain.DefaultFailurePenalty,
		score:      domain.DefaultBaseScore,
		failures:   []domain.Failure{},
		history:    domain.TestHistory{},
		lastStatus: map[string]domain.TestStatus{},
		current:    map[string]bool{},
		seeded:     map[string]int{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Seed prepends statuses recorded by previous analyses. It must be called
// before AddSuite; seeded statuses count for flakiness but not for the score.
func (a *Agent) Seed(h domain.TestHistory, order []string) {
	for _, name := range order {
		statuses, ok := h[name]
		if !ok || len(statuses) == 0 {
			continue
		}
		a.remember(name)
		a.history[name] = append(a.history[name], statuses...)
		a.seeded[name] += len(statuses)
		a.lastStatus[name] = statuses[len(statuses)-1]
	}
}

// AddSuite folds one suite into the running totals.
func (a *Agent) AddSuite(s domain.Suite) {
	a.totalDuration += s.Duration
	for _, tc := range s.Cases {
		a.addCase(tc)
	}
}

func (a *Agent) addCase(tc domain.TestCase) {
	status := domain.StatusPass

	if tc.Failed {
		status = domain.StatusFail
		a.penalize(tc.Name, tc.FailureMessage)
	}

	if tc.Errored {
		// A case with both <failure> and <error> is only penalised once.
		if status != domain.StatusFail {
			a.penalize(tc.Name, tc.ErrorMessage)
		}
		status = domain.StatusFail
	}

	// Skipped wins over FAIL for history, matching the order elements are checked in.
	if tc.Skipped {
		status = domain.StatusSkip
	}

	a.remember(tc.Name)
	a.current[tc.Name] = true
	a.history[tc.Name] = append(a.history[tc.Name], status)
	a.lastStatus[tc.Name] = status
}

func (a *Agent) penalize(name, msg string) {
	a.score -= a.penalty
	a.failures = append(a.failures, domain.Failure{Test: name, Error: msg})
}

func (a *Agent) remember(name string) {
	if _, ok := a.history[name]; !ok {
		a.order = append(a.order, name)
	}
}

// FlakyTests returns tests that failed at least once and passed last,
// in order of first appearance. Seeded tests that are absent from the
// analysed suites are never reported.
func (a *Agent) FlakyTests() []string {
	out := []string{}
	for _, name := range a.order {
		if !a.current[name] || a.lastStatus[name] != domain.StatusPass {
			continue
		}
		for _, st := range a.history[name] {
			if st == domain.StatusFail {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Score is the raw score; it may be negative.
func (a *Agent) Score() int { return a.score }

// History returns a copy of the per-test statuses and their first-seen order.
func (a *Agent) History() (domain.TestHistory, []string) {
	h := make(domain.TestHistory, len(a.history))
	for k, v := range a.history {
		cp := make([]domain.TestStatus, len(v))
		copy(cp, v)
		h[k] = cp
	}
	order := make([]string, len(a.order))
	copy(order, a.order)
	return h, order
}

// RunHistory is History without seeded statuses: only what AddSuite observed.
func (a *Agent) RunHistory() (domain.TestHistory, []string) {
	h := domain.TestHistory{}
	order := []string{}
	for _, name := range a.order {
		if !a.current[name] {
			continue
		}
		observed := a.history[name][a.seeded[name]:]
		cp := make([]domain.TestStatus, len(observed))
		copy(cp, observed)
		h[name] = cp
		order = append(order, name)
	}
	return h, order
}

// Report builds the document published to the issue tracker.
func (a *Agent) Report() domain.HealthReport {
	status := domain.StatusPass
	if len(a.failures) > 0 {
		status = domain.StatusFail
	}

	failures := make([]domain.Failure, len(a.failures))
	copy(failures, a.failures)

	return domain.HealthReport{
		Summary: domain.Summary{
			Score:         max(0, a.score),
			Status:        status,
			TotalDuration: round4(a.totalDuration),
		},
		FlakyTests:      a.FlakyTests(),
		CurrentFailures: failures,
	}
}

func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}
