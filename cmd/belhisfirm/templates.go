package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/c360studio/belhisfirm/export"
	"github.com/c360studio/belhisfirm/queries"
	"github.com/spf13/cobra"
)

func templatesCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"t"},
		Short:   "Inspect, render and validate query templates",
	}
	cmd.AddCommand(
		templatesListCmd(g),
		templatesShowCmd(g),
		templatesRenderCmd(g),
		templatesValidateCmd(g),
		templatesExportCmd(g),
		templatesCatalogCmd(g),
		templatesWatchCmd(g),
	)
	return cmd
}

func templatesListCmd(g *globalOptions) *cobra.Command {
	var (
		module string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}

			var latest []queries.Template
			for _, name := range a.registry.Names() {
				t, err := a.registry.Get(name)
				if err != nil {
					return err
				}
				if module != "" && t.Module != module {
					continue
				}
				latest = append(latest, t)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(latest)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODULE\tKIND\tREVISIONS\tDESCRIPTION")
			for _, t := range latest {
				revs := a.registry.Revisions(t.Name)
				revStrs := make([]string, len(revs))
				for i, r := range revs {
					revStrs[i] = fmt.Sprint(r)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					t.Name, t.Module, t.Kind, strings.Join(revStrs, ","), t.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "Only list templates of this module")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// resolve returns the latest revision of name, or revision when positive.
func resolve(reg *queries.Registry, name string, revision int) (queries.Template, error) {
	if revision > 0 {
		return reg.GetRevision(name, revision)
	}
	return reg.Get(name)
}

func templatesShowCmd(g *globalOptions) *cobra.Command {
	var revision int
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a template in .rq format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			t, err := resolve(a.registry, args[0], revision)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(queries.Marshal(t))
			return err
		},
	}
	cmd.Flags().IntVar(&revision, "revision", 0, "Template revision (default latest)")
	return cmd
}

func templatesRenderCmd(g *globalOptions) *cobra.Command {
	var (
		revision int
		bf       bindingFlags
	)
	cmd := &cobra.Command{
		Use:   "render NAME",
		Short: "Substitute placeholders and print the query",
		Long: `Render substitutes placeholders and prepends PREFIX declarations.
Fragment placeholders that are not set become empty. Pattern templates are
wrapped in the instance page query and need --id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			t, err := resolve(a.registry, args[0], revision)
			if err != nil {
				return err
			}
			b, err := bf.bindings()
			if err != nil {
				return err
			}
			text, err := a.registry.RenderTemplate(t, b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
	cmd.Flags().IntVar(&revision, "revision", 0, "Template revision (default latest)")
	bf.register(cmd.Flags())
	return cmd
}

func templatesValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every template parses and follows the id/prefLabel convention",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := a.registry.Validate(); err != nil {
				fmt.Fprintln(out, err)
				return errors.New("template validation failed")
			}
			fmt.Fprintf(out, "%d templates OK\n", a.registry.Len())
			return nil
		},
	}
}

func templatesExportCmd(g *globalOptions) *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "export DIR",
		Short: "Write every template revision to DIR as .rq files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			var selected []queries.Template
			for _, t := range a.registry.All() {
				if module == "" || t.Module == module {
					selected = append(selected, t)
				}
			}
			paths, err := queries.WriteDir(args[0], selected)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			a.logger.Info("Exported templates", "dir", args[0], "files", len(paths))
			return nil
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "Only export templates of this module")
	return cmd
}

func templatesCatalogCmd(g *globalOptions) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Describe every template revision as RDF",
		Long: `Catalog writes the template registry as RDF: one resource per template
revision with its module, revision, kind, placeholders and namespaces.
Formats: ` + strings.Join(export.FormatNames(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			exporter := export.NewRDFExporter()
			if err := exporter.AddTemplates(a.registry.All()); err != nil {
				return err
			}
			text, err := exporter.Export(f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			a.logger.Info("Wrote template catalog", "path", output, "format", f, "entities", exporter.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatTurtle), "RDF format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func templatesWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the template directory on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The watcher reports broken files itself
			g.skipOverrides = true
			a, err := g.load()
			if err != nil {
				return err
			}
			dir := a.cfg.Templates.Dir
			if dir == "" {
				return errors.New("no template directory: set --templates or templates.dir")
			}

			w, err := queries.NewWatcher(queries.Default(), dir, a.cfg.Templates.Pattern,
				queries.WithWatchLogger(a.logger))
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			return w.Run(ctx, func(r queries.Reload) {
				if r.Err != nil {
					fmt.Fprintf(out, "✗ %s\n", r.Err)
					return
				}
				fmt.Fprintf(out, "✓ %d files, %d templates OK\n", r.Files, r.Registry.Len())
			})
		},
	}
}
