package services

import (
	"regexp"
	"strings"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
)

// Rule names, stable across releases so clients can key on them
const (
	RuleInternationalNumber = "international_number"
	RuleVoIPNumber          = "voip_number"
	RuleAreaCodeNumber      = "area_code_number"
	RuleCorporateHotline    = "corporate_hotline"
	RuleNumberNoAnomaly     = "number_no_anomaly"
	RuleShortenedURL        = "shortened_url"
	RulePackageURL          = "package_url"
	RuleURLNoIndicator      = "url_no_indicator"
	RuleNoInput             = "no_input"
)

// domesticAreaCode matches a leading 0 followed by one or two digits
var domesticAreaCode = regexp.MustCompile(`^0\d{1,2}`)

// HeuristicRules parameterises the rule table
type HeuristicRules struct {
	HomePrefix       string
	VoIPPrefix       string
	MobilePrefix     string
	TollFreePrefixes []string
	Shorteners       []string
	PackageSuffix    string
}

// DefaultHeuristicRules returns the rules for a South Korean home network
func DefaultHeuristicRules() HeuristicRules {
	return HeuristicRules{
		HomePrefix:       "+82",
		VoIPPrefix:       "070",
		MobilePrefix:     "010",
		TollFreePrefixes: []string{"1588", "1577"},
		Shorteners: []string{
			"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly", "is.gd",
			"buff.ly", "cutt.ly", "rb.gy", "shorturl.at", "me2.do", "han.gl",
		},
		PackageSuffix: ".apk",
	}
}

// HeuristicRulesFromConfig fills unset fields from the defaults
func HeuristicRulesFromConfig(cfg config.HeuristicsConfig) HeuristicRules {
	r := DefaultHeuristicRules()
	if cfg.HomePrefix != "" {
		r.HomePrefix = cfg.HomePrefix
	}
	if cfg.VoIPPrefix != "" {
		r.VoIPPrefix = cfg.VoIPPrefix
	}
	if cfg.MobilePrefix != "" {
		r.MobilePrefix = cfg.MobilePrefix
	}
	if len(cfg.TollFreePrefixes) > 0 {
		r.TollFreePrefixes = cfg.TollFreePrefixes
	}
	if len(cfg.Shorteners) > 0 {
		r.Shorteners = cfg.Shorteners
	}
	if cfg.PackageSuffix != "" {
		r.PackageSuffix = cfg.PackageSuffix
	}
	return r
}

// PhoneRule fires independently of other phone rules
type PhoneRule struct {
	Name     string
	Severity models.FindingSeverity
	Message  string
	Match    func(number string) bool
}

// URLRule is tried in order; the first match wins
type URLRule struct {
	Name     string
	Severity models.FindingSeverity
	Message  string
	Match    func(url string) bool
}

// HeuristicEvaluator applies the local smishing rule table. It holds no
// mutable state and is safe for concurrent use.
type HeuristicEvaluator struct {
	phoneRules    []PhoneRule
	phoneFallback PhoneRule
	urlRules      []URLRule
}

// NewHeuristicEvaluator compiles the rule table
func NewHeuristicEvaluator(rules HeuristicRules) *HeuristicEvaluator {
	return &HeuristicEvaluator{
		phoneRules: buildPhoneRules(rules),
		phoneFallback: PhoneRule{
			Name:     RuleNumberNoAnomaly,
			Severity: models.FindingSeveritySafe,
			Message:  "No anomaly detected in the sending number.",
			Match:    func(string) bool { return true },
		},
		urlRules: buildURLRules(rules),
	}
}

func buildPhoneRules(rules HeuristicRules) []PhoneRule {
	tollFree := append([]string(nil), rules.TollFreePrefixes...)

	return []PhoneRule{
		{
			Name:     RuleInternationalNumber,
			Severity: models.FindingSeverityWarning,
			Message:  "Sent from an international number; smishing risk is high.",
			Match: func(n string) bool {
				return strings.HasPrefix(n, "+") && !strings.HasPrefix(n, rules.HomePrefix)
			},
		},
		{
			Name:     RuleVoIPNumber,
			Severity: models.FindingSeverityWarning,
			Message:  "Internet-telephony number; smishing risk present.",
			Match: func(n string) bool {
				return rules.VoIPPrefix != "" && strings.HasPrefix(n, rules.VoIPPrefix)
			},
		},
		{
			Name:     RuleAreaCodeNumber,
			Severity: models.FindingSeverityInfo,
			Message:  "Landline/area-code origin; may be a legitimate business but spam is possible.",
			Match: func(n string) bool {
				return domesticAreaCode.MatchString(n) && !strings.HasPrefix(n, rules.MobilePrefix)
			},
		},
		{
			Name:     RuleCorporateHotline,
			Severity: models.FindingSeveritySafe,
			Message:  "Matches corporate hotline pattern; relatively safe.",
			Match: func(n string) bool {
				for _, p := range tollFree {
					if p != "" && strings.HasPrefix(n, p) {
						return true
					}
				}
				return false
			},
		},
	}
}

func buildURLRules(rules HeuristicRules) []URLRule {
	shorteners := append([]string(nil), rules.Shorteners...)

	return []URLRule{
		{
			Name:     RuleShortenedURL,
			Severity: models.FindingSeverityWarning,
			Message:  "Shortened URL detected; exercise caution.",
			Match: func(u string) bool {
				for _, s := range shorteners {
					if s != "" && strings.Contains(u, s) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:     RulePackageURL,
			Severity: models.FindingSeverityCritical,
			Message:  "Installable package link detected; treat as smishing.",
			Match: func(u string) bool {
				return rules.PackageSuffix != "" && strings.HasSuffix(u, rules.PackageSuffix)
			},
		},
		{
			Name:     RuleURLNoIndicator,
			Severity: models.FindingSeveritySafe,
			Message:  "URL shows no special risk indicators.",
			Match:    func(string) bool { return true },
		},
	}
}

// PhoneRules returns the independent phone rules in evaluation order
func (e *HeuristicEvaluator) PhoneRules() []PhoneRule {
	return e.phoneRules
}

// URLRules returns the first-match URL rules in evaluation order
func (e *HeuristicEvaluator) URLRules() []URLRule {
	return e.urlRules
}

// Evaluate runs the phone rules then the URL rules. Inputs are matched raw,
// without trimming or normalisation. With neither field set the report holds
// a single error finding.
func (e *HeuristicEvaluator) Evaluate(input models.HeuristicInput) models.HeuristicReport {
	if input.IsEmpty() {
		return models.HeuristicReport{
			Findings: []models.HeuristicFinding{{
				Rule:     RuleNoInput,
				Severity: models.FindingSeverityError,
				Message:  "Neither a number nor a URL was provided.",
			}},
		}
	}

	findings := make([]models.HeuristicFinding, 0, 3)

	if input.PhoneNumber != "" {
		findings = append(findings, e.evaluatePhone(input.PhoneNumber)...)
	}
	if input.URL != "" {
		findings = append(findings, e.evaluateURL(input.URL))
	}

	return models.HeuristicReport{Findings: findings}
}

func (e *HeuristicEvaluator) evaluatePhone(number string) []models.HeuristicFinding {
	var findings []models.HeuristicFinding
	for _, r := range e.phoneRules {
		if r.Match(number) {
			findings = append(findings, finding(r.Name, r.Severity, r.Message))
		}
	}
	if len(findings) == 0 {
		fb := e.phoneFallback
		findings = append(findings, finding(fb.Name, fb.Severity, fb.Message))
	}
	return findings
}

func (e *HeuristicEvaluator) evaluateURL(u string) models.HeuristicFinding {
	for _, r := range e.urlRules {
		if r.Match(u) {
			return finding(r.Name, r.Severity, r.Message)
		}
	}
	// unreachable: the last URL rule always matches
	return finding(RuleURLNoIndicator, models.FindingSeveritySafe, "URL shows no special risk indicators.")
}

func finding(rule string, sev models.FindingSeverity, msg string) models.HeuristicFinding {
	return models.HeuristicFinding{Rule: rule, Severity: sev, Message: msg}
}
