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
	"time"

	"github.com/c360studio/belhisfirm/endpoint"
	"github.com/c360studio/belhisfirm/sparql"
	"github.com/spf13/cobra"
)

// Output formats of the query command.
const (
	formatTable     = "table"
	formatJSON      = "json"
	formatInstances = "instances"
)

func queryCmd(g *globalOptions) *cobra.Command {
	var (
		revision int
		bf       bindingFlags
		text     string
		file     string
		cached   bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "query [NAME]",
		Short: "Run a template or an ad hoc query against the SPARQL endpoint",
		Long: `Query renders the named template with the given placeholders and sends it
to the endpoint. With --text or --file the query is sent as is.

Output formats:
  table      one row per solution (default)
  json       SPARQL JSON results
  instances  rows grouped by ?id with entity__attribute bags`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validOutput(format) {
				return fmt.Errorf("unknown output format %q", format)
			}
			a, err := g.load()
			if err != nil {
				return err
			}

			url := a.cfg.Endpoint.URL
			if cached {
				if a.cfg.Endpoint.CacheURL == "" {
					return errors.New("no cache endpoint configured")
				}
				url = a.cfg.Endpoint.CacheURL
			}
			client := a.client(url)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			var resp *endpoint.Response
			switch {
			case text != "" || file != "":
				if len(args) > 0 {
					return errors.New("give either a template name or --text/--file")
				}
				if file != "" {
					data, err := os.ReadFile(file)
					if err != nil {
						return err
					}
					text = string(data)
				}
				resp, err = client.Select(ctx, text)

			case len(args) == 1:
				b, err := bf.bindings()
				if err != nil {
					return err
				}
				t, err := resolve(a.registry, args[0], revision)
				if err != nil {
					return err
				}
				rendered, err := a.registry.RenderTemplate(t, b)
				if err != nil {
					return err
				}
				resp, err = client.SelectNamed(ctx, t.Name, rendered)
				if err != nil {
					return err
				}

			default:
				return errors.New("template name, --text or --file required")
			}
			if err != nil {
				return err
			}

			a.logger.Info("Query finished",
				"rows", len(resp.Results.Rows()),
				"duration", resp.Duration.Round(time.Millisecond),
				"attempts", resp.Attempts,
				"cache", resp.Cache.Status)
			return printResults(cmd.OutOrStdout(), resp.Results, format)
		},
	}
	cmd.Flags().IntVar(&revision, "revision", 0, "Template revision (default latest)")
	bf.register(cmd.Flags())
	cmd.Flags().StringVar(&text, "text", "", "Ad hoc query text")
	cmd.Flags().StringVar(&file, "file", "", "Read an ad hoc query from this file")
	cmd.Flags().BoolVar(&cached, "cached", false, "Query through the cache endpoint")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format (table, json, instances)")
	return cmd
}

func validOutput(format string) bool {
	switch format {
	case formatTable, formatJSON, formatInstances:
		return true
	}
	return false
}

func printResults(out io.Writer, res *sparql.Results, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)

	case formatInstances:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sparql.MapInstances(res.Rows()))

	case formatTable:
		if res.Boolean != nil {
			fmt.Fprintln(out, *res.Boolean)
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(res.Head.Vars, "\t"))
		for _, row := range res.Rows() {
			cells := make([]string, len(res.Head.Vars))
			for i, v := range res.Head.Vars {
				if b, ok := row[v]; ok {
					cells[i] = b.Value
				}
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func probeCmd(g *globalOptions) *cobra.Command {
	var (
		names    []string
		repeats  int
		purge    bool
		noDirect bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Compare direct and cached endpoint access",
		Long: `Probe sends each sample query once to the Ontop endpoint and several times
through the Varnish cache. A working cache answers MISS first and HIT after.

Sample queries: ` + strings.Join(endpoint.SampleQueryNames(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			if a.cfg.Endpoint.CacheURL == "" {
				return errors.New("no cache endpoint configured")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cached := a.client(a.cfg.Endpoint.CacheURL)
			var direct *endpoint.Client
			if !noDirect {
				direct = a.client(a.cfg.Endpoint.URL)
			}

			for _, c := range []*endpoint.Client{direct, cached} {
				if c == nil {
					continue
				}
				if _, err := c.Ping(ctx); err != nil {
					a.logger.Warn("Endpoint not available", "url", c.URL(), "error", err)
				}
			}

			if purge {
				if err := cached.Purge(ctx); err != nil {
					return fmt.Errorf("purge: %w", err)
				}
			}

			if len(names) == 0 {
				names = endpoint.SampleQueryNames()
			}
			report := map[string][]endpoint.ProbeResult{}
			out := cmd.OutOrStdout()
			for _, name := range names {
				query, ok := endpoint.SampleQueries[name]
				if !ok {
					return fmt.Errorf("unknown sample query %q", name)
				}
				results, err := endpoint.Probe(ctx, direct, cached, query, repeats)
				if err != nil {
					return err
				}
				report[name] = results
				if !asJSON {
					printProbe(out, name, results)
				}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&names, "query", "q", nil, "Sample query to run (repeatable, default all)")
	cmd.Flags().IntVar(&repeats, "repeats", 3, "Requests through the cache per query")
	cmd.Flags().BoolVar(&purge, "purge", false, "Purge the cache before probing")
	cmd.Flags().BoolVar(&noDirect, "no-direct", false, "Skip the direct endpoint request")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printProbe(out io.Writer, name string, results []endpoint.ProbeResult) {
	fmt.Fprintf(out, "--- %s ---\n", name)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\t#\tSTATUS\tTIME\tROWS\tCACHE\tHITS\tBACKEND")
	for _, r := range results {
		status := fmt.Sprint(r.StatusCode)
		if !r.OK() {
			status += " " + r.Err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\t%d\t%s\n",
			r.Target, r.Attempt, status, r.Duration.Round(time.Millisecond),
			r.Rows, r.Cache.Status, r.Cache.Hits, r.Cache.BackendHealth)
	}
	tw.Flush()

	if endpoint.CacheWorking(results) {
		fmt.Fprintln(out, "✓ cache working")
	} else {
		fmt.Fprintln(out, "✗ cache not working (expected MISS then HIT)")
	}
	fmt.Fprintln(out)
}
