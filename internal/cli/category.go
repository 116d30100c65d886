package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newCategoryCommand(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Administer ticket categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := sess.services.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			return printCategories(cmd.OutOrStdout(), categories)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create an enabled category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := sess.services.Categories.Add(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ added %s (%s)\n", category.Name, category.ID)
			return nil
		},
	})

	cmd.AddCommand(toggleCommand(sess, "enable", "Allow new tickets in a category", (*service.CategoryService).Enable))
	cmd.AddCommand(toggleCommand(sess, "disable", "Stop new tickets in a category", (*service.CategoryService).Disable))
	return cmd
}

func toggleCommand(sess *session, verb, short string, apply func(*service.CategoryService, context.Context, string) (domain.Category, error)) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id|name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := sess.services.Categories
			id, err := lookupCategory(cmd.Context(), categories, args[0])
			if err != nil {
				return err
			}
			category, err := apply(categories, cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %sd %s\n", verb, category.Name)
			return nil
		},
	}
}

// lookupCategory accepts either an id or a case-insensitive name.
func lookupCategory(ctx context.Context, categories *service.CategoryService, ref string) (string, error) {
	all, err := categories.List(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range all {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", apperrors.NewNotFound("category", map[string]any{"ref": ref})
}

func printCategories(out io.Writer, categories []domain.Category) error {
	if len(categories) == 0 {
		fmt.Fprintln(out, "No categories found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENABLED")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\t%t\n", c.ID, c.Name, c.Enabled)
	}
	return w.Flush()
}
