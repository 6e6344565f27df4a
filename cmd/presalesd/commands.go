package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkraev/presalesd/internal/config"
)

// --- estimate ---

var estimateCmd = &cobra.Command{
	Use:   "estimate <description>",
	Short: "Look up the budget and timeline for a project description",
	Long: `Look up the budget and timeline for a project description.

Examples:
  presalesd estimate "CRM system"
  presalesd estimate online shop with payments`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/api/estimates?project_type=" + url.QueryEscape(query)
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var est struct {
			ProjectType     string `json:"project_type"`
			BudgetRange     string `json:"budget_range"`
			TypicalTimeline string `json:"typical_timeline"`
			Message         string `json:"message"`
		}
		if err := decodeJSON(resp, &est); err != nil {
			return err
		}

		fmt.Printf("%s\n", colorize(colorBold, est.ProjectType))
		printStatus("Budget", "%s", est.BudgetRange)
		printStatus("Timeline", "%s", est.TypicalTimeline)
		if est.Message != "" {
			fmt.Printf("  %s\n", est.Message)
		}
		return nil
	},
}

// --- leads ---

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List captured leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/leads")
		if err != nil {
			return err
		}

		var result struct {
			Leads []struct {
				ID              int64  `json:"id"`
				Name            string `json:"name"`
				Contact         string `json:"contact"`
				ProjectType     string `json:"project_type"`
				FollowUpConsent bool   `json:"follow_up_consent"`
				CreatedAt       string `json:"created_at"`
			} `json:"leads"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Leads) == 0 {
			fmt.Println("No leads captured yet.")
			return nil
		}

		for _, l := range result.Leads {
			consent := ""
			if l.FollowUpConsent {
				consent = colorize(colorGreen, " [follow-up ok]")
			}
			fmt.Printf("%s  %s  %s <%s>  %s%s\n",
				colorize(colorCyan, fmt.Sprintf("#%d", l.ID)),
				l.CreatedAt,
				l.Name,
				l.Contact,
				l.ProjectType,
				consent,
			)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
