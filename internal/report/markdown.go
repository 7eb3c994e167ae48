// Package report renders CLI results as Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"checkcheck-api/internal/domain/models"
)

const dateLayout = "2006-01-02 15:04:05 MST"

// WriteSurvey writes a survey result with its per-question breakdown
func WriteSurvey(w io.Writer, result models.SurveyResult) error {
	md := markdown.NewMarkdown(w)

	md.H1("Security Habit Check")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Score", strconv.Itoa(result.TotalScore) + " / " + strconv.Itoa(result.MaxScore)},
			{"Result", result.TierLabel},
		},
	})
	md.PlainText("")

	switch result.Tier {
	case models.RiskTierDangerous:
		md.Cautionf("%s", result.Advice)
	case models.RiskTierSecurityRecommended:
		md.Warningf("%s", result.Advice)
	default:
		md.Tip(result.Advice)
	}
	md.PlainText("")

	md.H2("Answers")
	md.PlainText("")
	rows := make([][]string, 0, len(result.Breakdown))
	for _, q := range result.Breakdown {
		answer := q.Answer
		if !q.Answered {
			answer = "_unanswered_"
		}
		rows = append(rows, []string{q.QuestionID, answer, strconv.Itoa(q.Points)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Question", "Answer", "Points"},
		Rows:   rows,
	})

	return md.Build()
}

// WriteSmishing writes a reconciled smishing check
func WriteSmishing(w io.Writer, result *models.SmishingCheckResult) error {
	md := markdown.NewMarkdown(w)

	md.H1("Message Check")
	md.PlainText("")

	rows := [][]string{
		{"Verdict", string(result.Verdict)},
		{"Source", string(result.Source)},
	}
	if result.Input.PhoneNumber != "" {
		rows = append(rows, []string{"Sender", "`" + result.Input.PhoneNumber + "`"})
	}
	if result.Input.URL != "" {
		rows = append(rows, []string{"Link", "`" + result.Input.URL + "`"})
	}
	if p := result.Phone; p != nil && p.Parsed {
		rows = append(rows,
			[]string{"Region", p.RegionCode},
			[]string{"Number type", p.NumberType},
		)
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	switch result.Verdict {
	case models.HeuristicVerdictSmishing:
		md.Cautionf("This message shows strong signs of smishing. Do not open the link or install anything.")
	case models.HeuristicVerdictSuspicious:
		md.Warningf("This message looks suspicious. Verify the sender through another channel.")
	case models.HeuristicVerdictInvalid:
		md.Note("Nothing to check. Provide a sender number or a link.")
	default:
		md.Tip("No smishing indicators found.")
	}
	md.PlainText("")

	md.H2("Findings")
	md.PlainText("")
	findings := make([]string, 0, len(result.Local.Findings))
	for _, f := range result.Local.Findings {
		findings = append(findings, "**"+string(f.Severity)+"** "+f.Message)
	}
	md.BulletList(findings...)
	md.PlainText("")

	if result.RemoteSummary != "" {
		md.H2("Remote Analysis")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("text"), result.RemoteSummary)
		md.PlainText("")
	}
	if result.RemoteError != "" {
		md.Warningf("Remote analysis failed: %s", result.RemoteError)
		md.PlainText("")
	}

	return md.Build()
}

// WriteEmail writes an upstream e-mail verdict
func WriteEmail(w io.Writer, req models.EmailAnalysisRequest, resp *models.EmailAnalysisResponse) error {
	md := markdown.NewMarkdown(w)

	md.H1("E-mail Check")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"From", strings.TrimSpace(req.FromName + " <" + req.FromEmail + ">")},
			{"Subject", req.Subject},
		},
	})
	md.PlainText("")

	if resp == nil || resp.Summary == nil {
		md.Note("The analysis service returned no summary.")
	} else {
		md.H2("Result: " + resp.Summary.Overall)
		md.PlainText("")
		if len(resp.Summary.Reasons) > 0 {
			md.BulletList(resp.Summary.Reasons...)
		}
	}

	if resp != nil && len(resp.Extra) > 0 {
		data, err := json.MarshalIndent(resp.Extra, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode analysis details: %w", err)
		}
		md.PlainText("")
		md.H2("Details")
		md.CodeBlocks(markdown.SyntaxHighlight("json"), string(data))
	}

	return md.Build()
}

// WriteHistory writes stored diagnoses, newest first, with a tier chart
func WriteHistory(w io.Writer, userID string, recs []*models.DiagnosisRecord) error {
	md := markdown.NewMarkdown(w)

	md.H1("Diagnosis History")
	md.PlainText("")

	if len(recs) == 0 {
		md.PlainText("No diagnoses stored for `" + userID + "`.")
		return md.Build()
	}

	rows := make([][]string, 0, len(recs))
	counts := make(map[string]int)
	var order []string
	for _, rec := range recs {
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format(dateLayout),
			rec.DeviceName,
			rec.SurveyResult,
			strconv.Itoa(rec.SurveyScore),
			strconv.Itoa(len(rec.Advisories)),
			"`" + rec.ID.String() + "`",
		})
		if counts[rec.SurveyResult] == 0 {
			order = append(order, rec.SurveyResult)
		}
		counts[rec.SurveyResult]++
	}
	md.Table(markdown.TableSet{
		Header: []string{"Date", "Device", "Result", "Score", "Advisories", "ID"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Results"),
		piechart.WithShowData(true),
	)
	for _, label := range order {
		chart.LabelAndIntValue(label, uint64(counts[label]))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())

	return md.Build()
}
