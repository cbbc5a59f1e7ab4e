package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ishswami-Tech/healthops/health"
)

var (
	checkOutput   string
	checkDetailed bool
	checkStrict   bool
)

var errDegraded = errors.New("service degraded")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every dependency once and print the snapshot",
	Long: `Run one refresh cycle and print the result.

Output formats: text (default), json, yaml. With --strict the command exits
non-zero when the overall status is not healthy.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "text", "Output format: text|json|yaml")
	checkCmd.Flags().BoolVar(&checkDetailed, "detailed", false, "Include development probes and process info")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit non-zero unless healthy")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	var resp health.DetailedResponse
	if checkDetailed {
		resp = health.NewDetailedResponse(a.engine.GetDetailedHealth(ctx))
	} else {
		resp = health.DetailedResponse{HealthResponse: health.NewHealthResponse(a.engine.GetHealth(ctx))}
	}

	if err := render(cmd.OutOrStdout(), checkOutput, resp, checkDetailed); err != nil {
		return err
	}
	if checkStrict && resp.Status != health.StatusHealthy.String() {
		return fmt.Errorf("%w: %s", errDegraded, strings.Join(failing(resp.HealthResponse), ", "))
	}
	return nil
}

func render(w io.Writer, format string, resp health.DetailedResponse, detailed bool) error {
	var v any = resp.HealthResponse
	if detailed {
		v = resp
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		return renderText(w, resp.HealthResponse)
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

func renderText(w io.Writer, resp health.HealthResponse) error {
	fmt.Fprintf(w, "status: %s  (snapshot %s)\n\n", resp.Status, resp.ID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROBE\tSTATUS\tTIME\tDETAIL")
	for _, name := range resp.SortedNames() {
		c := resp.Checks[name]
		fmt.Fprintf(tw, "%s\t%s\t%dms\t%s\n", name, c.Status, c.ResponseTimeMs, c.Detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(resp.CriticalFailures) > 0 {
		fmt.Fprintf(w, "\ncritical failures: %s\n", strings.Join(resp.CriticalFailures, ", "))
	}
	fmt.Fprintf(w, "\nuptime %s  alloc %s  goroutines %d\n",
		resp.System.Uptime, resp.System.Memory.Alloc, resp.System.CPU.Goroutines)
	return nil
}

func failing(resp health.HealthResponse) []string {
	var names []string
	for _, name := range resp.SortedNames() {
		if resp.Checks[name].Status != health.StatusHealthy.String() {
			names = append(names, name)
		}
	}
	return names
}
