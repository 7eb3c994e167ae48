package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"checkcheck-api/internal/domain/services"
	"checkcheck-api/internal/report"
)

// NewEmailCmd creates the email command.
func NewEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email <message.eml|->",
		Short: "Send an e-mail to the phishing analysis service",
		Long: `Email parses a raw RFC 5322 message (file or stdin), extracts the sender,
subject and text body and sends them to the remote analysis service.
HTML-only messages are converted to text with links kept.

Use --dry-run to print the extracted request without sending it.`,
		Args: cobra.ExactArgs(1),
		RunE: runEmailCmd,
	}

	cmd.Flags().Bool("dry-run", false, "Print the extracted request and exit")

	return cmd
}

func runEmailCmd(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open message: %w", err)
		}
		defer f.Close()
		r = f
	}

	req, err := services.EmailRequestFromMIME(r)
	if err != nil {
		return err
	}
	if req.FromEmail == "" {
		return errors.New("message has no sender address")
	}

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		return printJSON(cmd, req)
	}

	client := services.NewAnalysisClient(cfg.Analysis, log)
	resp, err := client.AnalyzeEmail(cmd.Context(), req)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd, resp)
	}
	return report.WriteEmail(cmd.OutOrStdout(), req, resp)
}
