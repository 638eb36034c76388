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

	"github.com/spf13/cobra"

	"github.com/ou-cs3560/team-commits/internal/config"
	"github.com/ou-cs3560/team-commits/internal/gateway"
	"github.com/ou-cs3560/team-commits/internal/usecase"
)

// memberOutput is one roster entry in the rendered output.
type memberOutput struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
	ID    string `json:"id"`
	URL   string `json:"url"`
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Lists the members of a GitHub team as JSON",
	Long: `Lists the membership roster of an organization team. Logins listed
under excluded_logins in the input file (staff and TA accounts) are left out
when --config is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags)
		if verbose {
			logger.SetOutput(os.Stderr)
		}

		org, _ := cmd.Flags().GetString("org")
		team, _ := cmd.Flags().GetString("team")
		configPath, _ := cmd.Flags().GetString("config")

		excluded := usecase.ExclusionSet{}
		if configPath != "" {
			input, err := config.LoadInput(configPath)
			if err != nil {
				return err
			}
			excluded = usecase.NewExclusionSet(input.ExcludedLogins)
		}

		env, err := config.LoadEnv(logger)
		if err != nil {
			return err
		}
		githubGateway, err := gateway.NewGitHubGateway(env.Token, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		reporter := usecase.NewReporter(githubGateway, logger, env.Delay())

		members, rl, err := reporter.TeamRoster(ctx, org, team, excluded)
		if err != nil {
			return err
		}
		logger.Printf("Rate limit: %d/%d remaining, resets at %s.", rl.Remaining, rl.Limit, rl.ResetAt)

		outputs := make([]memberOutput, 0, len(members))
		for _, m := range members {
			outputs = append(outputs, memberOutput{Login: m.Login, Name: m.Name, ID: m.ID, URL: m.URL})
		}
		jsonData, err := json.MarshalIndent(outputs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.Flags().StringP("org", "o", "", "GitHub organization login (required)")
	membersCmd.Flags().StringP("team", "t", "", "Team slug within the organization (required)")
	membersCmd.MarkFlagRequired("org")
	membersCmd.MarkFlagRequired("team")
	membersCmd.Flags().StringP("config", "c", "", "Optional input file supplying excluded_logins")
}
