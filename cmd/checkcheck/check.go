package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/internal/report"
	"checkcheck-api/pkg/logger"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a text message sender and link for smishing",
		Long: `Check runs the local smishing rules on a sender number and/or link and,
unless --offline is set, asks the remote analysis service for its verdict.
The local verdict is always shown; a failed remote call is reported but does
not fail the command.

Examples:
  checkcheck check --phone 07012345678
  checkcheck check --phone +447700900123 --url http://pay.example/app.apk
  checkcheck check --batch messages.yaml --offline

The batch file is a YAML list of {phoneNumber, url} items.`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("phone", "p", "", "Sender phone number")
	cmd.Flags().StringP("url", "U", "", "Link contained in the message")
	cmd.Flags().StringP("batch", "b", "", "YAML file with a list of messages")
	cmd.Flags().Bool("offline", false, "Skip the remote analysis service")

	return cmd
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	offline, _ := cmd.Flags().GetBool("offline")
	svc := newSmishingService(cfg, log, offline)

	if path, _ := cmd.Flags().GetString("batch"); path != "" {
		inputs, err := readBatch(path)
		if err != nil {
			return err
		}
		results, err := svc.CheckBatch(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, results)
		}
		for _, r := range results {
			if err := report.WriteSmishing(cmd.OutOrStdout(), r); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}

	phone, _ := cmd.Flags().GetString("phone")
	url, _ := cmd.Flags().GetString("url")
	in := models.HeuristicInput{PhoneNumber: phone, URL: url}
	if in.IsEmpty() {
		return fmt.Errorf("provide --phone, --url or --batch")
	}

	result := svc.Check(cmd.Context(), in)
	if wantJSON(cmd) {
		return printJSON(cmd, result)
	}
	return report.WriteSmishing(cmd.OutOrStdout(), result)
}

// newSmishingService builds the checker without cache or events
func newSmishingService(cfg *config.Config, log *logger.Logger, offline bool) *services.SmishingService {
	scfg := services.SmishingServiceConfig{
		HomeRegion:       cfg.Heuristics.HomeRegion,
		BatchConcurrency: cfg.Analysis.BatchConcurrency,
	}
	if !offline {
		if client := services.NewAnalysisClient(cfg.Analysis, log); client != nil {
			scfg.Remote = client
		}
	}
	return services.NewSmishingService(
		services.NewHeuristicEvaluator(services.HeuristicRulesFromConfig(cfg.Heuristics)),
		scfg,
		log,
	)
}

func readBatch(path string) ([]models.HeuristicInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var items []struct {
		PhoneNumber string `yaml:"phoneNumber"`
		URL         string `yaml:"url"`
	}
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	inputs := make([]models.HeuristicInput, len(items))
	for i, it := range items {
		inputs[i] = models.HeuristicInput{PhoneNumber: it.PhoneNumber, URL: it.URL}
	}
	return inputs, nil
}
