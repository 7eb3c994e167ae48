package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/internal/infrastructure/database"
	"checkcheck-api/internal/infrastructure/database/repository"
	"checkcheck-api/internal/report"
	"checkcheck-api/pkg/logger"
)

// history is the local SQLite diagnosis store
type history struct {
	db      *sql.DB
	service *services.DiagnosisService
}

func (h *history) Close() {
	_ = h.db.Close()
}

// openHistory opens --db, or the default file under the XDG data directory
func openHistory(cmd *cobra.Command, cfg *config.Config, log *logger.Logger) (*history, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = defaultHistoryPath()
	}

	db, err := database.OpenSQLite(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Msg("opened history database")

	return &history{
		db: db,
		service: services.NewDiagnosisService(
			repository.NewSQLiteDiagnosisRepository(db),
			services.NewPostureAdvisor(cfg.Posture),
			nil,
			log,
		),
	}, nil
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or delete stored diagnoses",
		Long: `History lists the diagnoses stored by 'checkcheck survey --save', newest
first. Records can only be deleted by the user that owns them.

Examples:
  # List a user's results
  checkcheck history --user alice

  # Delete one result
  checkcheck history --user alice --delete 3f2b...`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().StringP("delete", "d", "", "Delete the diagnosis with this ID")
	cmd.Flags().String("db", "", "History database path (default: XDG data dir)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")

	hist, err := openHistory(cmd, cfg, log)
	if err != nil {
		return err
	}
	defer hist.Close()

	if del, _ := cmd.Flags().GetString("delete"); del != "" {
		id, err := uuid.Parse(del)
		if err != nil {
			return fmt.Errorf("invalid diagnosis ID %q: %w", del, err)
		}
		if err := hist.service.Delete(cmd.Context(), id, user); err != nil {
			if errors.Is(err, services.ErrDiagnosisNotFound) || errors.Is(err, services.ErrDiagnosisForbidden) {
				return fmt.Errorf("%s: %w", id, err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		return nil
	}

	recs, err := hist.service.ListByUser(cmd.Context(), user)
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return printJSON(cmd, recs)
	}
	return report.WriteHistory(cmd.OutOrStdout(), user, recs)
}
