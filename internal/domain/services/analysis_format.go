package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"checkcheck-api/internal/domain/models"
)

const sectionRule = "━━━━━━━━━━"

// FormatSMSAnalysis renders the upstream verdict as the text block shown in
// the app: a number section, its reputation details, then a URL section
func FormatSMSAnalysis(resp *models.SMSAnalysisResponse) string {
	if resp == nil {
		return ""
	}
	if resp.Error != "" {
		return "Error: " + resp.Error
	}

	var parts []string

	if ps := resp.PhoneSummary; ps != nil {
		parts = append(parts, fmt.Sprintf("Number Analysis\n%s\nResult: %s\nReason: %s", sectionRule, ps.Verdict, ps.Reason))

		if d := ps.Details; d != nil {
			var b strings.Builder
			if d.FraudScore != nil {
				fmt.Fprintf(&b, "- Risk score: %s\n", strconv.FormatFloat(*d.FraudScore, 'f', -1, 64))
			}
			if d.RecentAbuse != nil {
				fmt.Fprintf(&b, "- Recent report status: %s\n", yesNo(*d.RecentAbuse, "Yes", "No"))
			}
			if d.RawSpammer != nil {
				fmt.Fprintf(&b, "- Spam flags: %s\n", yesNo(*d.RawSpammer, "Spam", "Not Spam"))
			}
			if d.ActiveStatus != "" {
				fmt.Fprintf(&b, "- Line Status: %s\n", d.ActiveStatus)
			}
			if detail := strings.TrimSpace(b.String()); detail != "" {
				parts = append(parts, detail)
			}
		}
	}

	if us := resp.URLSummary; us != nil {
		parts = append(parts, fmt.Sprintf("URL Analysis\n%s\nResult: %s\nReason: %s", sectionRule, us.Verdict, us.Reason))
		if len(us.Details) > 0 {
			if data, err := json.Marshal(us.Details); err == nil {
				parts = append(parts, "- Additional information: "+string(data))
			}
		}
	}

	return strings.Join(parts, "\n\n")
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
