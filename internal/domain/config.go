package domain

// Config represents the workspace configuration loaded from .buildhealth.yaml.
type Config struct {
	Scoring  ScoringConfig
	Jira     JiraConfig
	Paths    PathsConfig
	Defaults DefaultsConfig
}

type ScoringConfig struct {
	BaseScore      int
	FailurePenalty int
}

type JiraConfig struct {
	Domain      string
	PropertyKey string
}

type PathsConfig struct {
	ReportsDir string
	HistoryDB  string
}

type DefaultsConfig struct {
	// HistoryRuns bounds how many previous runs are replayed from the history store.
	HistoryRuns int
	SaveReports bool
}

const (
	DefaultBaseScore      = 100
	DefaultFailurePenalty = 10
	DefaultPropertyKey    = "build_health_data"
)

// DefaultConfig provides sane defaults if .buildhealth.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Scoring: ScoringConfig{
			BaseScore:      DefaultBaseScore,
			FailurePenalty: DefaultFailurePenalty,
		},
		Jira: JiraConfig{
			PropertyKey: DefaultPropertyKey,
		},
		Paths: PathsConfig{
			ReportsDir: "reports",
			HistoryDB:  ".buildhealth/history.db",
		},
		Defaults: DefaultsConfig{
			HistoryRuns: 20,
			SaveReports: true,
		},
	}
}
