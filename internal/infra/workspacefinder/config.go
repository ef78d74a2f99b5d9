package workspacefinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

// LoadConfig loads .buildhealth.yaml from the workspace root and applies defaults.
// A missing file is not an error: defaults are returned.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if root == "" {
		return cfg, nil
	}

	path := filepath.Join(root, ConfigFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	bh := y.BuildHealth

	if bh.Scoring.BaseScore != nil {
		cfg.Scoring.BaseScore = *bh.Scoring.BaseScore
	}
	if bh.Scoring.FailurePenalty != nil {
		if *bh.Scoring.FailurePenalty < 0 {
			return cfg, invalidField(path, "scoring.failure_penalty", "must be >= 0")
		}
		cfg.Scoring.FailurePenalty = *bh.Scoring.FailurePenalty
	}
	if s := strings.TrimSpace(bh.Jira.Domain); s != "" {
		cfg.Jira.Domain = s
	}
	if s := strings.TrimSpace(bh.Jira.PropertyKey); s != "" {
		cfg.Jira.PropertyKey = s
	}
	if s := strings.TrimSpace(bh.Paths.ReportsDir); s != "" {
		cfg.Paths.ReportsDir = s
	}
	if s := strings.TrimSpace(bh.Paths.HistoryDB); s != "" {
		cfg.Paths.HistoryDB = s
	}
	if bh.Defaults.HistoryRuns != nil {
		if *bh.Defaults.HistoryRuns < 0 {
			return cfg, invalidField(path, "defaults.history_runs", "must be >= 0")
		}
		cfg.Defaults.HistoryRuns = *bh.Defaults.HistoryRuns
	}
	if bh.Defaults.SaveReports != nil {
		cfg.Defaults.SaveReports = *bh.Defaults.SaveReports
	}

	return cfg, nil
}

// Template is the starter .buildhealth.yaml written by `buildhealth init`.
func Template() []byte {
	return []byte(fmt.Sprintf(`buildhealth:
  scoring:
    base_score: %d
    failure_penalty: %d
  jira:
    # domain: your-domain.atlassian.net
    property_key: %s
  paths:
    reports_dir: reports
    history_db: .buildhealth/history.db
  defaults:
    history_runs: 20
    save_reports: true
`, domain.DefaultBaseScore, domain.DefaultFailurePenalty, domain.DefaultPropertyKey))
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "workspacefinder.loadconfig",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}

type yamlConfig struct {
	BuildHealth struct {
		Scoring struct {
			BaseScore      *int `yaml:"base_score"`
			FailurePenalty *int `yaml:"failure_penalty"`
		} `yaml:"scoring"`

		Jira struct {
			Domain      string `yaml:"domain"`
			PropertyKey string `yaml:"property_key"`
		} `yaml:"jira"`

		Paths struct {
			ReportsDir string `yaml:"reports_dir"`
			HistoryDB  string `yaml:"history_db"`
		} `yaml:"paths"`

		Defaults struct {
			HistoryRuns *int  `yaml:"history_runs"`
			SaveReports *bool `yaml:"save_reports"`
		} `yaml:"defaults"`
	} `yaml:"buildhealth"`
}
