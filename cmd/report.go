// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/ou-cs3560/team-commits/internal/config"
	"github.com/ou-cs3560/team-commits/internal/gateway"
	"github.com/ou-cs3560/team-commits/internal/usecase"
)

// reportRow is one (contributor, day) count in the rendered output.
type reportRow struct {
	Login string `json:"login"`
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// teamReportOutput is the per-team section of the rendered output.
type teamReportOutput struct {
	Team  string      `json:"team"`
	Repo  string      `json:"repo"`
	Error string      `json:"error,omitempty"`
	Rows  []reportRow `json:"rows,omitempty"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports per-contributor daily commit counts for each team",
	Long: `Reports commit activity for every team listed in the input file:
each team's repository history is fetched over the milestone window and
aggregated into commit counts per contributor per calendar day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		configPath, _ := cmd.Flags().GetString("config")
		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "table" {
			return fmt.Errorf("unknown --format %q (want json or table)", format)
		}

		env, err := config.LoadEnv(logger)
		if err != nil {
			return err
		}
		input, err := config.LoadInput(configPath)
		if err != nil {
			return err
		}
		delay := env.Delay()
		if cmd.Flags().Changed("delay") {
			seconds, _ := cmd.Flags().GetInt("delay")
			if seconds < 0 {
				return fmt.Errorf("--delay must not be negative")
			}
			delay = time.Duration(seconds) * time.Second
		}

		githubGateway, err := gateway.NewGitHubGateway(env.Token, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		reporter := usecase.NewReporter(githubGateway, logger, delay)

		reports, err := reporter.Run(ctx, input.Milestone, input.Teams, usecase.NewExclusionSet(input.ExcludedLogins))
		if err != nil {
			return fmt.Errorf("failed to run report: %w", err)
		}

		outputs := renderReports(reports)
		switch format {
		case "table":
			printTable(os.Stdout, outputs)
		default:
			jsonData, err := json.MarshalIndent(outputs, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results to JSON: %w", err)
			}
			fmt.Println(string(jsonData))
		}
		logSummary(logger, reports)

		failed := 0
		for _, r := range reports {
			if r.Failed() {
				failed++
				fmt.Fprintf(os.Stderr, "team %s failed: %v\n", r.Team.Slug, r.Err)
			}
		}
		if failed == len(reports) && len(reports) > 0 {
			return fmt.Errorf("all %d teams failed", failed)
		}
		return nil
	},
}

// renderReports converts run results into output sections with rows sorted
// by login then day, for consistent output. Ordering happens only here; the
// aggregation itself is unordered.
func renderReports(reports []usecase.TeamReport) []teamReportOutput {
	outputs := make([]teamReportOutput, 0, len(reports))
	for _, report := range reports {
		out := teamReportOutput{
			Team: report.Team.Slug,
			Repo: report.Team.RepoPath,
		}
		if report.Failed() {
			out.Error = report.Err.Error()
			outputs = append(outputs, out)
			continue
		}
		rows := make([]reportRow, 0, len(report.Counts))
		for key, count := range report.Counts {
			rows = append(rows, reportRow{Login: key.Login, Day: key.Day, Count: count})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Login != rows[j].Login {
				return rows[i].Login < rows[j].Login
			}
			return rows[i].Day < rows[j].Day
		})
		out.Rows = rows
		outputs = append(outputs, out)
	}
	return outputs
}

// tableRows flattens the report into uniform four-cell rows so the
// tabwriter columns stay aligned even when a team failed.
func tableRows(outputs []teamReportOutput) [][]string {
	rows := [][]string{{"TEAM", "LOGIN", "DAY", "COMMITS"}}
	for _, out := range outputs {
		if out.Error != "" {
			rows = append(rows, []string{out.Team, "(failed: " + out.Error + ")", "", ""})
			continue
		}
		for _, row := range out.Rows {
			rows = append(rows, []string{out.Team, row.Login, row.Day, strconv.Itoa(row.Count)})
		}
	}
	return rows
}

func printTable(w io.Writer, outputs []teamReportOutput) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range tableRows(outputs) {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// logSummary logs mean and median commits per contributor across all teams.
func logSummary(logger *log.Logger, reports []usecase.TeamReport) {
	totals := make(map[string]int)
	for _, report := range reports {
		for key, count := range report.Counts {
			totals[key.Login] += count
		}
	}
	if len(totals) == 0 {
		return
	}
	values := make([]float64, 0, len(totals))
	for _, total := range totals {
		values = append(values, float64(total))
	}
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	logger.Printf("Summary: %d contributors, mean %.1f commits, median %.1f commits.", len(totals), mean, median)
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("config", "c", "", "Path to the milestone/teams input file (required)")
	reportCmd.MarkFlagRequired("config")
	reportCmd.Flags().String("format", "json", "Output format: json or table")
	reportCmd.Flags().Int("delay", 0, "Minimum delay between per-team queries in seconds (overrides environment)")
}
