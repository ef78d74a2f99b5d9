package domain

import "time"

// TestStatus is the outcome of a single test case in one suite.
type TestStatus string

const (
	StatusPass TestStatus = "PASS"
	StatusFail TestStatus = "FAIL"
	StatusSkip TestStatus = "SKIP"
)

// NoMessage is used when a <failure> or <error> element carries no message attribute.
const NoMessage = "No message"

// TestCase is a parsed <testcase> element.
type TestCase struct {
	Name      string
	ClassName string
	Duration  float64

	Failed         bool
	FailureMessage string

	Errored      bool
	ErrorMessage string

	Skipped bool
}

// Suite is the parsed content of one JUnit XML file.
type Suite struct {
	Path     string
	Name     string
	Duration float64
	Cases    []TestCase
}

// Failure is a test that failed in the current analysis.
type Failure struct {
	Test  string `json:"test"`
	Error string `json:"error"`
}

// Summary is the headline of a HealthReport.
type Summary struct {
	Score         int        `json:"score"`
	Status        TestStatus `json:"status"`
	TotalDuration float64    `json:"totalDuration"`
}

// HealthReport is the document stored as a Jira issue entity property.
type HealthReport struct {
	Summary         Summary   `json:"summary"`
	FlakyTests      []string  `json:"flakyTests"`
	CurrentFailures []Failure `json:"currentFailures"`
}

// FileProblem records an input file that could not be processed.
type FileProblem struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ReportArtifact represents a persisted analysis.
type ReportArtifact struct {
	ID       string `json:"id"`
	RunID    string `json:"run_id"`
	IssueKey string `json:"issue_key"`

	Files    []string      `json:"files"`
	Problems []FileProblem `json:"problems"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	Report    HealthReport `json:"report"`
	Published bool         `json:"published"`
}

// ReportRef is a lightweight pointer to a saved artifact.
type ReportRef struct {
	ID        string     `json:"id"`
	File      string     `json:"file"`
	IssueKey  string     `json:"issue_key"`
	Score     int        `json:"score"`
	Status    TestStatus `json:"status"`
	StartedAt time.Time  `json:"started_at"`
}

// TestHistory maps a test name to its statuses, oldest first.
type TestHistory map[string][]TestStatus
