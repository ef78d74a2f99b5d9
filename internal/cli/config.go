package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/jira"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/logger"
)

const envPrefix = "buildhealth"

func installConfigFlag(cmd *cobra.Command) *string {
	return cmd.PersistentFlags().String("config", "", "use a specific configuration file (yaml, json or toml)")
}

// initViperConfig layers settings: flags, then BUILDHEALTH_* env, then the
// --config file, then flag defaults.
func initViperConfig(cmd *cobra.Command, vip *viper.Viper) error {
	if v, err := cmd.Flags().GetString("config"); err == nil && v != "" {
		vip.SetConfigFile(v)
		if err := vip.ReadInConfig(); err != nil {
			return &domain.OpError{
				Op:   "cli.config",
				Kind: domain.KindInvalidConfig,
				Path: v,
				Err:  err,
			}
		}
		logger.L().Info("cli.config.loaded", "file", vip.ConfigFileUsed())
	}

	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	vip.AutomaticEnv()

	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("could not bind flags: %w", err)
	}
	return nil
}

func addJiraFlags(cmd *cobra.Command) {
	cmd.Flags().String("issue", "", "Jira issue key (e.g., PROJ-123)")
	cmd.Flags().String("domain", "", "Jira domain (e.g., your-domain.atlassian.net)")
	cmd.Flags().String("email", "", "Jira account email")
	cmd.Flags().String("token", "", "Jira API token")
	cmd.Flags().String("property", "", "Issue property key (default from workspace config, build_health_data)")
}

type jiraSettings struct {
	Issue    string
	Domain   string
	Email    string
	Token    string
	Property string
}

func readJiraSettings(vip *viper.Viper, cfg domain.Config) jiraSettings {
	s := jiraSettings{
		Issue:    strings.TrimSpace(vip.GetString("issue")),
		Domain:   strings.TrimSpace(vip.GetString("domain")),
		Email:    strings.TrimSpace(vip.GetString("email")),
		Token:    strings.TrimSpace(vip.GetString("token")),
		Property: strings.TrimSpace(vip.GetString("property")),
	}
	if s.Domain == "" {
		s.Domain = cfg.Jira.Domain
	}
	if s.Property == "" {
		s.Property = cfg.Jira.PropertyKey
	}
	return s
}

func (s jiraSettings) missing() []string {
	var out []string
	if s.Issue == "" {
		out = append(out, "issue")
	}
	if s.Domain == "" {
		out = append(out, "domain")
	}
	if s.Email == "" {
		out = append(out, "email")
	}
	if s.Token == "" {
		out = append(out, "token")
	}
	return out
}

func (s jiraSettings) validate() error {
	m := s.missing()
	if len(m) == 0 {
		return nil
	}

	names := make([]string, 0, len(m))
	for _, k := range m {
		names = append(names, fmt.Sprintf("--%s (%s_%s)", k, strings.ToUpper(envPrefix), strings.ToUpper(k)))
	}
	return &domain.OpError{
		Op:   "cli.settings",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("missing required %s: %w", strings.Join(names, ", "), domain.ErrInvalidConfig),
	}
}

func (s jiraSettings) client() (*jira.Client, error) {
	return jira.New(s.Domain,
		jira.Credentials{Email: s.Email, Token: s.Token},
		jira.WithPropertyKey(s.Property),
		jira.WithLogger(logger.L()),
	)
}
