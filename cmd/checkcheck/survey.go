package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/internal/report"
	"checkcheck-api/pkg/logger"
)

// NewSurveyCmd creates the survey command.
func NewSurveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Score the security-habit survey",
		Long: `Survey scores a set of answers against the question bank and prints the
risk tier. Answers are exact option texts keyed by question ID, given as a
YAML file and/or --answer flags (flags win).

Every question must be answered; otherwise the missing IDs are reported.

Examples:
  # List the questions and their options
  checkcheck survey --list

  # Score answers from a file and store the result
  checkcheck survey --answers answers.yaml --save --user alice

  # Override one answer
  checkcheck survey --answers answers.yaml --answer q3="Ignore it"`,
		Args: cobra.NoArgs,
		RunE: runSurveyCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List the questions instead of scoring")
	cmd.Flags().StringP("answers", "a", "", "YAML file mapping question ID to answer")
	cmd.Flags().StringArray("answer", nil, "Answer as id=option (repeatable)")
	cmd.Flags().String("bank", "", "Question bank YAML (default: built-in or survey.question_bank_file)")
	cmd.Flags().Bool("save", false, "Store the result in the local history")
	cmd.Flags().StringP("user", "u", "", "User ID for --save")
	cmd.Flags().String("device", "", "Device name recorded with --save")
	cmd.Flags().String("db", "", "History database path (default: XDG data dir)")

	return cmd
}

func runSurveyCmd(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	bankPath, _ := cmd.Flags().GetString("bank")
	if bankPath == "" {
		bankPath = cfg.Survey.QuestionBankFile
	}
	bank := services.DefaultQuestionBank()
	if bankPath != "" {
		if bank, err = services.LoadQuestionBank(bankPath); err != nil {
			return err
		}
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		return printQuestions(cmd, bank)
	}

	answers, err := collectAnswers(cmd)
	if err != nil {
		return err
	}

	if err := services.CheckComplete(answers, bank.Questions); err != nil {
		return err
	}

	scorer := services.NewSurveyScorer(cfg.Survey, log)
	result := scorer.Score(answers, bank.Questions, bank.Table)

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveSurvey(cmd, cfg, log, result, answers); err != nil {
			return err
		}
	}

	if wantJSON(cmd) {
		return printJSON(cmd, result)
	}
	return report.WriteSurvey(cmd.OutOrStdout(), result)
}

// collectAnswers merges the answers file with --answer flags
func collectAnswers(cmd *cobra.Command) (models.AnswerSet, error) {
	answers := make(models.AnswerSet)

	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read answers: %w", err)
		}
		if err := yaml.Unmarshal(data, &answers); err != nil {
			return nil, fmt.Errorf("failed to parse answers: %w", err)
		}
	}

	flagAnswers, _ := cmd.Flags().GetStringArray("answer")
	for _, kv := range flagAnswers {
		id, answer, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid --answer %q: want id=option", kv)
		}
		answers[strings.TrimSpace(id)] = answer
	}
	return answers, nil
}

func printQuestions(cmd *cobra.Command, bank *services.QuestionBank) error {
	if wantJSON(cmd) {
		return printJSON(cmd, bank.Questions)
	}
	out := cmd.OutOrStdout()
	for _, q := range bank.Questions {
		fmt.Fprintf(out, "%s. %s\n", q.ID, q.Prompt)
		for _, opt := range q.Options {
			fmt.Fprintf(out, "   - %s\n", opt)
		}
	}
	return nil
}

// saveSurvey stores the result as a diagnosis in the local history
func saveSurvey(cmd *cobra.Command, cfg *config.Config, log *logger.Logger, result models.SurveyResult, answers models.AnswerSet) error {
	user, _ := cmd.Flags().GetString("user")
	if strings.TrimSpace(user) == "" {
		return errors.New("--save requires --user")
	}
	device, _ := cmd.Flags().GetString("device")

	hist, err := openHistory(cmd, cfg, log)
	if err != nil {
		return err
	}
	defer hist.Close()

	rec := services.BuildDiagnosis(user, models.DeviceFacts{DeviceName: device, Platform: models.DevicePlatformUnknown}, result, answers)
	if err := hist.service.Save(cmd.Context(), rec); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved diagnosis %s\n", rec.ID)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
