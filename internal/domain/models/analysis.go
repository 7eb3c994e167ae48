package models

import "encoding/json"

// SMSAnalysisRequest is the body sent to the upstream /api/analyze endpoint
type SMSAnalysisRequest struct {
	URL         string `json:"url"`
	PhoneNumber string `json:"phoneNumber"`
}

// PhoneSummaryDetails are reputation attributes of the sender number
type PhoneSummaryDetails struct {
	FraudScore   *float64 `json:"fraud_score,omitempty"`
	RecentAbuse  *bool    `json:"recent_abuse,omitempty"`
	RawSpammer   *bool    `json:"raw_spammer,omitempty"`
	ActiveStatus string   `json:"active_status,omitempty"`
}

// PhoneSummary is the upstream verdict for the sender number
type PhoneSummary struct {
	Verdict string               `json:"verdict"`
	Reason  string               `json:"reason"`
	Details *PhoneSummaryDetails `json:"details,omitempty"`
}

// URLSummary is the upstream verdict for the link. Details is display data.
type URLSummary struct {
	Verdict string         `json:"verdict"`
	Reason  string         `json:"reason"`
	Details map[string]any `json:"details,omitempty"`
}

// SMSAnalysisResponse is the upstream /api/analyze response
type SMSAnalysisResponse struct {
	PhoneSummary *PhoneSummary `json:"phoneSummary,omitempty"`
	URLSummary   *URLSummary   `json:"urlSummary,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// EmailAnalysisRequest is the body sent to the upstream /api/analyze-email endpoint
type EmailAnalysisRequest struct {
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// EmailSummary is the headline of an e-mail verdict
type EmailSummary struct {
	Overall string   `json:"overall"`
	Reasons []string `json:"reasons"`
}

// EmailAnalysisResponse is the upstream /api/analyze-email response. Summary
// and Error are decoded; every other top-level key is kept verbatim in Extra
// and written back out by MarshalJSON.
type EmailAnalysisResponse struct {
	Summary *EmailSummary
	Error   string
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON decodes summary and error. A summary or error of an
// unexpected shape is kept in Extra rather than failing the response.
func (r *EmailAnalysisResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = EmailAnalysisResponse{}
	if v, ok := raw["summary"]; ok {
		var summary EmailSummary
		if err := json.Unmarshal(v, &summary); err == nil {
			r.Summary = &summary
			delete(raw, "summary")
		}
	}
	if v, ok := raw["error"]; ok {
		if err := json.Unmarshal(v, &r.Error); err == nil {
			delete(raw, "error")
		}
	}
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

// Fields returns the response as a top-level key map
func (r EmailAnalysisResponse) Fields() map[string]any {
	fields := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		fields[k] = v
	}
	if r.Summary != nil {
		fields["summary"] = r.Summary
	}
	if r.Error != "" {
		fields["error"] = r.Error
	}
	return fields
}

// MarshalJSON writes the decoded fields and the passed-through keys
func (r EmailAnalysisResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// VerdictSource records which path produced a smishing verdict
type VerdictSource string

const (
	VerdictSourceLocal         VerdictSource = "local"
	VerdictSourceRemote        VerdictSource = "remote+local"
	VerdictSourceLocalFallback VerdictSource = "local_fallback"
)

// SmishingCheckResult pairs the local pre-check with the upstream verdict
type SmishingCheckResult struct {
	Input         HeuristicInput       `json:"input"`
	Source        VerdictSource        `json:"source"`
	Verdict       HeuristicVerdict     `json:"verdict"`
	Local         HeuristicReport      `json:"local"`
	Phone         *PhoneDetails        `json:"phone,omitempty"`
	Remote        *SMSAnalysisResponse `json:"remote,omitempty"`
	RemoteError   string               `json:"remote_error,omitempty"`
	RemoteSummary string               `json:"remote_summary,omitempty"`
	Cached        bool                 `json:"cached"`
}
