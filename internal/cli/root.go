package cli

import (
	"time"

	"github.com/agentx-labs/platformview/internal/branding"
	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/i18n"
	"github.com/agentx-labs/platformview/internal/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	projectDir string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` shows the server platform a Java EE project is bound to, together
with the embeddable EJB container classpath that platform provides.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		level := logLevel
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		log.Reconfigure(log.Config{
			Level:  level,
			Output: zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen},
		})
		i18n.SetLanguage(config.Get(config.KeyLanguage))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
