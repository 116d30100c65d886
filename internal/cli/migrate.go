package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the bundled schema",
		Long: `Open the configured store and apply the bundled SQL schema.

The statements are idempotent, so running migrate against an up to date
database is a no-op. For postgres, POSTGRES_RUN_MIGRATIONS is forced on.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationMigrate: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.store.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("store not reachable: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ schema applied (%s)\n", sess.cfg.Store.Driver)
			return nil
		},
	}
}
