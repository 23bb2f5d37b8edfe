package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/repository/sqlstore"
	"github.com/jwalitptl/homecare-api/internal/repository/storage"
	agencyService "github.com/jwalitptl/homecare-api/internal/service/agency"
	replyService "github.com/jwalitptl/homecare-api/internal/service/reply"
	"github.com/jwalitptl/homecare-api/migrations"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/messaging"
	"github.com/jwalitptl/homecare-api/pkg/messaging/redis"
)

type options struct {
	configPath string
	cfg        *config.Config
	log        *logger.Logger
}

func (o *options) load() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = logger.FromConfig(cfg.Log.Level, cfg.Log.Format)
	return nil
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "homecarectl",
		Short: "Operate the home care referral service",
		Long: `Administrative commands for the home care referral service.

Examples:
  homecarectl seed agencies            # Insert the predefined agencies
  homecarectl templates list           # Show the reply templates in effect
  homecarectl migrate print            # Print the schema for the configured driver
  homecarectl migrate up               # Apply the schema
  homecarectl events tail              # Follow published outbox events
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("HOMECARE_CONFIG"), "path to config.yaml")

	cmd.AddCommand(seedCmd(opts), templatesCmd(opts), migrateCmd(opts), eventsCmd(opts))
	return cmd
}

func seedCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert reference data",
	}

	var seed int64
	agencies := &cobra.Command{
		Use:   "agencies",
		Short: "Insert the predefined agencies, skipping names that already exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(opts.cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			svc := agencyService.NewService(store, nil, opts.log, agencyService.Config{})
			res, err := svc.Seed(cmd.Context(), agencyService.PredefinedNames(), rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d agencies, skipped %d\n", len(res.Created), len(res.Skipped))
			return nil
		},
	}
	agencies.Flags().Int64Var(&seed, "seed", 0, "random seed for placeholder phone numbers")

	cmd.AddCommand(agencies)
	return cmd
}

func templatesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect reply templates",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the reply templates in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := replyService.LoadTemplates(opts.cfg.Reply.TemplatesFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}
			for _, t := range templates {
				fmt.Fprintf(out, "%d\t%s\t%s\n", t.ID, t.Nombre, t.Asunto)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	cmd.AddCommand(list)
	return cmd
}

func migrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQL schema",
	}

	var driver string
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the schema of a driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if driver == "" {
				driver = opts.cfg.Database.Driver
			}
			ms, err := migrations.For(driver)
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n%s\n", m.Name, m.SQL)
			}
			return nil
		},
	}
	printCmd.Flags().StringVar(&driver, "driver", "", "mysql or postgres (defaults to database.driver)")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply the schema to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := migrations.For(opts.cfg.Database.Driver)
			if err != nil {
				return err
			}
			db, err := sqlstore.NewDB(opts.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, m := range ms {
				for _, stmt := range Statements(m.SQL) {
					if _, err := db.ExecContext(cmd.Context(), stmt); err != nil {
						return fmt.Errorf("failed to apply %s: %w", m.Name, err)
					}
				}
				opts.log.Info("migration applied", "name", m.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(printCmd, up)
	return cmd
}

// Statements splits a schema file on semicolons, dropping empty entries.
func Statements(sql string) []string {
	var out []string
	for _, s := range strings.Split(sql, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func eventsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published events",
	}

	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print every event published on the redis broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.Redis.Enabled {
				return fmt.Errorf("redis is disabled; set redis.enabled to follow events")
			}
			broker, err := redis.NewRedisBroker(redis.Config{
				URL:          opts.cfg.Redis.URL,
				MaxRetries:   opts.cfg.Redis.MaxRetries,
				RetryBackoff: opts.cfg.Redis.RetryBackoff,
				PoolSize:     opts.cfg.Redis.PoolSize,
				MinIdleConns: opts.cfg.Redis.MinIdleConns,
			}, log.Logger, nil)
			if err != nil {
				return err
			}
			defer broker.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := messaging.NewEventPublisher(broker, messaging.DefaultChannelPrefix).SubscribeAll(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for env := range events {
				if err := enc.Encode(env); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(tail)
	return cmd
}
