package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/workspacefinder"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

type Initializer struct {
	reportsDir string
}

func NewInitializer() *Initializer {
	return &Initializer{reportsDir: domain.DefaultConfig().Paths.ReportsDir}
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

// Init lays out a workspace under root. An existing .buildhealth.yaml is kept unless force is set.
func (i *Initializer) Init(root string, force bool) error {
	root = filepath.Clean(root)

	dirs := []string{
		filepath.Join(root, i.reportsDir),
		filepath.Join(root, ".buildhealth", "logs"),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.OpError{
				Op:   "fsworkspace.init",
				Kind: domain.KindExecution,
				Path: d,
				Err:  err,
			}
		}
	}

	if err := ensureGitignore(root, i.reportsDir); err != nil {
		return err
	}

	dst := filepath.Join(root, workspacefinder.ConfigFileName)
	if !force {
		if _, statErr := os.Stat(dst); statErr == nil {
			return nil
		}
	}

	if err := os.WriteFile(dst, workspacefinder.Template(), 0o644); err != nil {
		return &domain.OpError{
			Op:   "fsworkspace.init",
			Kind: domain.KindExecution,
			Path: dst,
			Err:  err,
		}
	}
	return nil
}

func ensureGitignore(root, reportsDir string) error {
	const header = "# build health"
	entries := []string{
		".buildhealth/",
		reportsDir + "/",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
