package models

// FindingSeverity tags a heuristic finding
type FindingSeverity string

const (
	FindingSeverityWarning  FindingSeverity = "warning"
	FindingSeverityInfo     FindingSeverity = "info"
	FindingSeverityCritical FindingSeverity = "critical"
	FindingSeveritySafe     FindingSeverity = "safe"
	FindingSeverityError    FindingSeverity = "error"
)

// Weight orders severities for picking the headline finding
func (s FindingSeverity) Weight() int {
	switch s {
	case FindingSeverityCritical:
		return 4
	case FindingSeverityWarning:
		return 3
	case FindingSeverityError:
		return 2
	case FindingSeverityInfo:
		return 1
	default:
		return 0
	}
}

// HeuristicInput is the raw sender number and link of a text message
type HeuristicInput struct {
	PhoneNumber string `json:"phoneNumber"`
	URL         string `json:"url"`
}

// IsEmpty reports whether neither field was provided
func (in HeuristicInput) IsEmpty() bool {
	return in.PhoneNumber == "" && in.URL == ""
}

// HeuristicFinding is one rule hit
type HeuristicFinding struct {
	Rule     string          `json:"rule"`
	Severity FindingSeverity `json:"severity"`
	Message  string          `json:"message"`
}

// HeuristicVerdict summarises a report
type HeuristicVerdict string

const (
	HeuristicVerdictSmishing   HeuristicVerdict = "smishing"
	HeuristicVerdictSuspicious HeuristicVerdict = "suspicious"
	HeuristicVerdictSafe       HeuristicVerdict = "safe"
	HeuristicVerdictInvalid    HeuristicVerdict = "invalid"
)

// HeuristicReport holds findings in rule evaluation order: phone rules first,
// then the URL rule
type HeuristicReport struct {
	Findings []HeuristicFinding `json:"findings"`
}

// HighestSeverity returns the most severe finding level, or safe when empty
func (r HeuristicReport) HighestSeverity() FindingSeverity {
	highest := FindingSeveritySafe
	for _, f := range r.Findings {
		if f.Severity.Weight() > highest.Weight() {
			highest = f.Severity
		}
	}
	return highest
}

// Verdict collapses the findings into a single label
func (r HeuristicReport) Verdict() HeuristicVerdict {
	switch r.HighestSeverity() {
	case FindingSeverityCritical:
		return HeuristicVerdictSmishing
	case FindingSeverityWarning:
		return HeuristicVerdictSuspicious
	case FindingSeverityError:
		return HeuristicVerdictInvalid
	default:
		return HeuristicVerdictSafe
	}
}

// Messages returns the finding messages in order
func (r HeuristicReport) Messages() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Message
	}
	return out
}

// PhoneDetails is libphonenumber metadata about the sender number. It never
// influences the findings.
type PhoneDetails struct {
	Parsed      bool   `json:"parsed"`
	RegionCode  string `json:"region_code,omitempty"`
	CountryCode int32  `json:"country_code,omitempty"`
	IsValid     bool   `json:"is_valid"`
	NumberType  string `json:"number_type,omitempty"`
	E164        string `json:"e164,omitempty"`
}
