package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	appMigrations "github.com/yigit/careernest/internal/app/migrations"
	"github.com/yigit/careernest/internal/bootstrap"
	"github.com/yigit/careernest/internal/config"
	"github.com/yigit/careernest/internal/mailworker"
	"github.com/yigit/careernest/internal/pkg/email"
	"github.com/yigit/careernest/internal/pkg/logger"
	"github.com/yigit/careernest/internal/pkg/metrics"
	"github.com/yigit/careernest/internal/seed"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "careernestctl",
		Short:         "Operator tooling for CareerNest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newProfilesCommand())
	cmd.AddCommand(newTokensCommand())
	cmd.AddCommand(newAdminCommand())
	cmd.AddCommand(newMailWorkerCommand())
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadConfig() (*config.Config, error) {
	cfg, _, err := bootstrap.LoadConfigAndSetupLogger()
	return cfg, err
}

// withServices connects to the database, builds the services and runs fn
func withServices(cmd *cobra.Command, fn func(ctx context.Context, deps *bootstrap.Dependencies) error) error {
	ctx := commandContext(cmd)
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return err
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	deps, err := bootstrap.BuildServices(ctx, cfg, database, metrics.Nop{}, lgr)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	return fn(ctx, deps)
}

// --- migrate ---

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateDownCommand())
	cmd.AddCommand(newMigrateVersionCommand())
	return cmd
}

func withMigrator(fn func(m *appMigrations.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString(), logger.Component("migrations"))
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error { return m.Up() })
		},
	}
}

func newMigrateDownCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error { return m.Down(steps) })
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	return cmd
}

func newMigrateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *appMigrations.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	}
}

// --- seed ---

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default colleges and departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				return seed.CreateDefaultData(ctx, deps.Repos.CollegeRepository, deps.Repos.DepartmentRepository, deps.Logger)
			})
		},
	}
}

// --- profiles ---

func newProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Review Faculty and Alumni identity proofs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newProfilesPendingCommand())
	cmd.AddCommand(newProfilesDecisionCommand("approve", "approved", "Approve a profile awaiting review"))
	cmd.AddCommand(newProfilesDecisionCommand("reject", "rejected", "Reject a profile awaiting review"))
	return cmd
}

func newProfilesPendingCommand() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List profiles awaiting review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				resp, err := deps.Services.Admin.ListPending(ctx, page, size)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tROLE\tNAME\tOFFICIAL EMAIL\tPROOF\tUPDATED")
				for _, p := range resp.Profiles {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						p.ID, p.Role, p.FullName, deref(p.OfficialEmail), deref(p.IDProofURL),
						p.UpdatedAt.Format(time.RFC3339))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				info := resp.PaginationInfo
				fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d total\n", info.CurrentPage, info.TotalPages, info.TotalItems)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	return cmd
}

func newProfilesDecisionCommand(action, done, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			return withServices(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				apply := deps.Services.Admin.Approve
				if action == "reject" {
					apply = deps.Services.Admin.Reject
				}
				if err := apply(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, done)
				return nil
			})
		},
	}
}

// --- tokens ---

func newTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "College email verification tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired verification tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				n, err := deps.Services.Tokens.PurgeExpired(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired tokens\n", n)
				return nil
			})
		},
	})
	return cmd
}

// --- admin ---

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "grant <user-id|email>",
		Short: "Allow an account to review profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				id, err := resolveAccount(ctx, deps, args[0])
				if err != nil {
					return err
				}
				if err := deps.Services.Admin.GrantAdmin(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an administrator\n", id)
				return nil
			})
		},
	})
	return cmd
}

// resolveAccount accepts an account id or an email address
func resolveAccount(ctx context.Context, deps *bootstrap.Dependencies, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if !strings.Contains(ref, "@") {
		return uuid.Nil, fmt.Errorf("%q is neither a user id nor an email address", ref)
	}
	account, err := deps.Repos.AccountRepository.GetByEmail(ctx, ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("look up %s: %w", ref, err)
	}
	return account.ID, nil
}

// --- mail worker ---

func newMailWorkerCommand() *cobra.Command {
	var (
		attempts int
		backoff  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mail-worker",
		Short: "Deliver queued emails from Kafka over SMTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := mailWorkerReady(cfg); err != nil {
				return err
			}

			reader := email.NewKafkaReader(bootstrap.KafkaConfig(cfg))
			defer reader.Close()

			w := mailworker.New(reader, bootstrap.NewSMTPSender(cfg), mailworker.Config{
				MaxAttempts: attempts,
				Backoff:     backoff,
			}, nil, logger.Component("mailworker"))
			return w.Run(commandContext(cmd))
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 3, "Delivery attempts per message")
	cmd.Flags().DurationVar(&backoff, "backoff", 2*time.Second, "Base delay between attempts")
	return cmd
}

// mailWorkerReady checks the queue and SMTP settings the worker needs
func mailWorkerReady(cfg *config.Config) error {
	var missing []string
	if len(cfg.KafkaBrokers()) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if cfg.Email.Kafka.Topic == "" {
		missing = append(missing, "KAFKA_EMAIL_TOPIC")
	}
	if cfg.Email.Kafka.GroupID == "" {
		missing = append(missing, "KAFKA_EMAIL_GROUP_ID")
	}
	if cfg.Email.SMTP.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if len(missing) > 0 {
		return errors.New("mail worker is not configured: set " + strings.Join(missing, ", "))
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
