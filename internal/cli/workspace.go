package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/junitxml"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/runstore"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/workspacefinder"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

type workspaceCtx struct {
	root string
	// found is false when neither --workspace nor a .buildhealth.yaml
	// was given; root is then the working directory.
	found bool
	cfg   domain.Config

	loader ports.SuiteLoader
	store  ports.ArtifactStore
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, found, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	return &workspaceCtx{
		root:   root,
		found:  found,
		cfg:    cfg,
		loader: junitxml.NewLoader(),
		store:  runstore.NewJSONStore(root, cfg, runstore.WithIndex(true)),
	}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (root string, found bool, err error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", false, fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, true, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("get working directory: %w", err)
	}

	var locator ports.WorkspaceLocator = workspacefinder.NewFinder()
	root, err = locator.FindRoot(wd)
	if err != nil {
		// CI checkouts rarely carry a workspace; analysis still works from wd.
		return wd, false, nil
	}
	return root, true, nil
}

// reportStore is nil when reports should not be written.
func (ws *workspaceCtx) reportStore(noSave bool) ports.ArtifactStore {
	if noSave || !ws.found || !ws.cfg.Defaults.SaveReports {
		return nil
	}
	return ws.store
}

// historyPath resolves where the SQLite history lives; "" disables it.
func (ws *workspaceCtx) historyPath(flag string, disabled bool) (string, error) {
	if disabled {
		return "", nil
	}
	if p := strings.TrimSpace(flag); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("invalid history db path: %w", err)
		}
		return abs, nil
	}
	if !ws.found || strings.TrimSpace(ws.cfg.Paths.HistoryDB) == "" {
		return "", nil
	}
	if filepath.IsAbs(ws.cfg.Paths.HistoryDB) {
		return ws.cfg.Paths.HistoryDB, nil
	}
	return filepath.Join(ws.root, ws.cfg.Paths.HistoryDB), nil
}
