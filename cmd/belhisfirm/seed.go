package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360studio/belhisfirm/config"
	"github.com/c360studio/belhisfirm/seeder"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func seedCmd(g *globalOptions) *cobra.Command {
	var (
		opts    seeder.Options
		dsn     string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic companies, persons and relationships into PostgreSQL",
		Long: `Seed generates reproducible test data for the portal database. Generated
rows start at id 1001; the sample data (id <= 100) is never touched, also not
by --clear-existing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}

			// Config values apply unless the flag was given
			flags := cmd.Flags()
			sc := a.cfg.Seeder
			if !flags.Changed("companies") {
				opts.Companies = sc.Companies
			}
			if !flags.Changed("persons") {
				opts.Persons = sc.Persons
			}
			if !flags.Changed("batch-size") {
				opts.BatchSize = sc.BatchSize
			}
			if !flags.Changed("relationships-per-company") {
				opts.RelationshipsPerCompany = sc.RelationshipsPerCompany
			}
			if !flags.Changed("seed") {
				opts.Seed = sc.Seed
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			if dsn == "" {
				dsn = a.cfg.Database.DSN()
			}
			store, err := seeder.Open(dsn, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if migrate {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
			}

			summary, err := seeder.Run(ctx, store, opts, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.Cleared > 0 {
				fmt.Fprintf(out, "Cleared:       %d rows\n", summary.Cleared)
			}
			fmt.Fprintf(out, "Inserted:      %d companies, %d persons, %d relationships\n",
				summary.Companies, summary.Persons, summary.Relationships)
			fmt.Fprintf(out, "Database:      %d companies, %d persons, %d relationships\n",
				summary.Stats.Companies, summary.Stats.Persons, summary.Stats.Relationships)
			fmt.Fprintf(out, "Elapsed:       %s (%.0f rows/s)\n",
				summary.Elapsed.Round(time.Millisecond), summary.Throughput())
			return nil
		},
	}

	defaults := seeder.DefaultOptions()
	cmd.Flags().IntVar(&opts.Companies, "companies", defaults.Companies, "Companies to generate")
	cmd.Flags().IntVar(&opts.Persons, "persons", defaults.Persons, "Persons to generate")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", defaults.BatchSize, "Rows per INSERT batch")
	cmd.Flags().IntVar(&opts.RelationshipsPerCompany, "relationships-per-company", defaults.RelationshipsPerCompany,
		"Persons linked to each company")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 = random)")
	cmd.Flags().BoolVar(&opts.ClearExisting, "clear-existing", false, "Delete generated rows (id > 100) first")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create missing tables first")
	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN (default from database config)")
	return cmd
}

func configCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			shown := *a.cfg
			if shown.Database.Password != "" {
				shown.Database.Password = "********"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&shown); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(newLogger(g.logLevel)).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}
