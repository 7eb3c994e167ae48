package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	if cfg.Survey.HighThreshold != 10 || cfg.Survey.MediumThreshold != 6 {
		t.Errorf("thresholds = %d/%d, want 10/6", cfg.Survey.HighThreshold, cfg.Survey.MediumThreshold)
	}
	if cfg.Heuristics.HomePrefix != "+82" {
		t.Errorf("home prefix = %q, want +82", cfg.Heuristics.HomePrefix)
	}
	if got := cfg.Heuristics.TollFreePrefixes; len(got) != 2 {
		t.Errorf("toll free prefixes = %v, want two entries", got)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Analysis.Timeout != 20*time.Second {
		t.Errorf("analysis timeout = %v, want 20s", cfg.Analysis.Timeout)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
survey:
  high_threshold: 11
  medium_threshold: 5
heuristics:
  home_prefix: "+1"
database:
  driver: sqlite
  sqlite_path: /tmp/x.db
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHECKCHECK_SURVEY_MEDIUM_THRESHOLD", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Survey.HighThreshold != 11 {
		t.Errorf("high threshold = %d, want 11", cfg.Survey.HighThreshold)
	}
	if cfg.Survey.MediumThreshold != 7 {
		t.Errorf("medium threshold = %d, want env override 7", cfg.Survey.MediumThreshold)
	}
	if cfg.Heuristics.HomePrefix != "+1" {
		t.Errorf("home prefix = %q, want +1", cfg.Heuristics.HomePrefix)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "ok",
			cfg: Config{
				Survey:   SurveyConfig{HighThreshold: 10, MediumThreshold: 6},
				Database: DatabaseConfig{Driver: "postgres"},
			},
		},
		{
			name: "inverted thresholds",
			cfg: Config{
				Survey:   SurveyConfig{HighThreshold: 4, MediumThreshold: 6},
				Database: DatabaseConfig{Driver: "sqlite"},
			},
			wantErr: true,
		},
		{
			name: "equal thresholds",
			cfg: Config{
				Survey:   SurveyConfig{HighThreshold: 6, MediumThreshold: 6},
				Database: DatabaseConfig{Driver: "sqlite"},
			},
			wantErr: true,
		},
		{
			name: "zero medium threshold",
			cfg: Config{
				Survey:   SurveyConfig{HighThreshold: 10},
				Database: DatabaseConfig{Driver: "sqlite"},
			},
			wantErr: true,
		},
		{
			name: "unknown driver",
			cfg: Config{
				Survey:   SurveyConfig{HighThreshold: 10, MediumThreshold: 6},
				Database: DatabaseConfig{Driver: "mysql"},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
