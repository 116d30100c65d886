// Package cli implements helpdeskctl, the administrative command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/bootstrap"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

var version = "dev"

// annotationMigrate marks commands that must apply the schema on open.
const annotationMigrate = "helpdeskctl/migrate"

// session holds what a command needs once the store is open.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *bootstrap.Store
	services *bootstrap.Services
}

type globalFlags struct {
	driver     string
	sqlitePath string
	logLevel   string
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *session) {
	var (
		flags globalFlags
		sess  = &session{}
	)

	root := &cobra.Command{
		Use:   "helpdeskctl",
		Short: "Helpdesk service administration",
		Long: `helpdeskctl manages the helpdesk data store: it applies the bundled
schema, seeds categories and accounts, and administers ticket categories.

Connection settings come from the same environment variables as the API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return sess.open(cmd, flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			sess.close()
		},
	}

	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "store driver override (postgres|sqlite)")
	root.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite-path", "", "sqlite database file override")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newMigrateCommand(sess))
	root.AddCommand(newSeedCommand(sess))
	root.AddCommand(newCategoryCommand(sess))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "helpdeskctl %s\n", version)
		},
	})
	return root, sess
}

func (s *session) open(cmd *cobra.Command, flags globalFlags) error {
	cfg, err := config.Load(func(c *config.Config) {
		if flags.driver != "" {
			c.Store.Driver = flags.driver
		}
		if flags.sqlitePath != "" {
			c.SQLite.Path = flags.sqlitePath
		}
		if cmd.Annotations[annotationMigrate] == "true" {
			c.Postgres.RunMigrations = true
		}
		c.Logger.Level = flags.logLevel
		c.Logger.Encoding = "console"
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	store, err := bootstrap.OpenStore(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	s.cfg = cfg
	s.logger = logger
	s.store = store
	s.services = bootstrap.NewServices(cfg, store.Repos, store.Redis, logger)
	return nil
}

func (s *session) close() {
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// SetVersion overrides the reported build version.
func SetVersion(v string) {
	version = v
}

// Execute runs the command tree against os.Args.
func Execute() error {
	root, sess := newRootCommand()
	defer sess.close()
	return root.Execute()
}
