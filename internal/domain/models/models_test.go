package models

import "testing"

func TestHeuristicReportVerdict(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		findings []FindingSeverity
		want     HeuristicVerdict
	}{
		{"empty", nil, HeuristicVerdictSafe},
		{"safe only", []FindingSeverity{FindingSeveritySafe}, HeuristicVerdictSafe},
		{"info only", []FindingSeverity{FindingSeverityInfo}, HeuristicVerdictSafe},
		{"warning", []FindingSeverity{FindingSeverityInfo, FindingSeverityWarning}, HeuristicVerdictSuspicious},
		{"critical wins", []FindingSeverity{FindingSeverityWarning, FindingSeverityCritical}, HeuristicVerdictSmishing},
		{"error", []FindingSeverity{FindingSeverityError}, HeuristicVerdictInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var r HeuristicReport
			for _, s := range tc.findings {
				r.Findings = append(r.Findings, HeuristicFinding{Severity: s})
			}
			if got := r.Verdict(); got != tc.want {
				t.Errorf("Verdict() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseRiskTier(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"safe", "Safe"} {
		if got, ok := ParseRiskTier(in); !ok || got != RiskTierSafe {
			t.Errorf("ParseRiskTier(%q) = %q, %v", in, got, ok)
		}
	}
	if got, ok := ParseRiskTier("Security Recommended"); !ok || got != RiskTierSecurityRecommended {
		t.Errorf("ParseRiskTier(display) = %q, %v", got, ok)
	}
	if _, ok := ParseRiskTier("fine"); ok {
		t.Error("ParseRiskTier(fine) ok = true")
	}
}

func TestParseDevicePlatform(t *testing.T) {
	t.Parallel()

	testCases := map[string]DevicePlatform{
		"iOS":      DevicePlatformIOS,
		" android": DevicePlatformAndroid,
		"web":      DevicePlatformWeb,
		"windows":  DevicePlatformUnknown,
	}
	for in, want := range testCases {
		if got := ParseDevicePlatform(in); got != want {
			t.Errorf("ParseDevicePlatform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSurveyQuestionCorrectOption(t *testing.T) {
	t.Parallel()

	q := SurveyQuestion{Options: []string{"a", "b"}, CorrectIndex: 1}
	if got := q.CorrectOption(); got != "b" {
		t.Errorf("CorrectOption() = %q, want b", got)
	}
	q.CorrectIndex = 5
	if got := q.CorrectOption(); got != "" {
		t.Errorf("CorrectOption(out of range) = %q, want empty", got)
	}
}
