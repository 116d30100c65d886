package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/bootstrap"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
	Customers  []SeedCustomer `yaml:"customers"`
	Staff      []SeedStaff    `yaml:"staff"`
}

type SeedCategory struct {
	Name     string `yaml:"name"`
	Disabled bool   `yaml:"disabled"`
}

type SeedCustomer struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

type SeedStaff struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// SeedReport counts what a seed run created and skipped.
type SeedReport struct {
	Created int
	Skipped int
}

// ParseSeed decodes and checks a seed document.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, member := range seed.Staff {
		switch domain.StaffRole(strings.ToUpper(member.Role)) {
		case domain.StaffRoleOperator, domain.StaffRoleManager:
		default:
			return nil, fmt.Errorf("staff[%d] %s: unknown role %q", i, member.Email, member.Role)
		}
	}
	return &seed, nil
}

// ApplySeed creates every entry in seed. Entries that already exist are skipped.
func ApplySeed(ctx context.Context, svc *bootstrap.Services, seed *SeedFile, out io.Writer) (SeedReport, error) {
	var report SeedReport
	record := func(kind, label string, err error) error {
		switch {
		case err == nil:
			report.Created++
			fmt.Fprintf(out, "  + %s %s\n", kind, label)
			return nil
		case errors.Is(err, apperrors.ErrConflict):
			report.Skipped++
			fmt.Fprintf(out, "  = %s %s (exists)\n", kind, label)
			return nil
		default:
			return fmt.Errorf("%s %s: %w", kind, label, err)
		}
	}

	for _, entry := range seed.Categories {
		category, err := svc.Categories.Add(ctx, entry.Name)
		if err == nil && entry.Disabled {
			_, err = svc.Categories.Disable(ctx, category.ID)
		}
		if err := record("category", entry.Name, err); err != nil {
			return report, err
		}
	}
	for _, entry := range seed.Customers {
		_, err := svc.Accounts.CreateCustomer(ctx, entry.FirstName, entry.LastName, entry.Email, entry.Password)
		if err := record("customer", entry.Email, err); err != nil {
			return report, err
		}
	}
	for _, entry := range seed.Staff {
		_, err := svc.Accounts.CreateStaffMember(ctx, entry.Name, entry.Email, entry.Password, domain.StaffRole(entry.Role))
		if err := record("staff", entry.Email, err); err != nil {
			return report, err
		}
	}
	return report, nil
}

func newSeedCommand(sess *session) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and accounts from a YAML file",
		Long: `Create the categories, customers and staff members listed in a YAML file.

Entries whose name or email already exists are reported and skipped, so the
same file can be applied repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			seed, err := ParseSeed(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeding from %s...\n", file)
			report, err := ApplySeed(cmd.Context(), sess.services, seed, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d created, %d skipped\n", report.Created, report.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file path")
	return cmd
}
