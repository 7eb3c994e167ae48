package services

import (
	"fmt"
	"strconv"
	"strings"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
)

// Advisory codes
const (
	AdvisoryOSOutdated    = "os_outdated"
	AdvisoryNoLockScreen  = "no_lock_screen"
	AdvisoryPublicNetwork = "public_network"
	AdvisoryJailbroken    = "jailbroken"
)

const (
	networkTypeOther       = "other"
	defaultMinIOSVersion   = 18
	defaultMinAndroidMajor = 14
)

// PostureAdvisor turns device facts into recommendations
type PostureAdvisor struct {
	minIOS     float64
	minAndroid float64
}

// NewPostureAdvisor creates an advisor; zero minimums fall back to iOS 18 / Android 14
func NewPostureAdvisor(cfg config.PostureConfig) *PostureAdvisor {
	a := &PostureAdvisor{minIOS: cfg.MinIOSVersion, minAndroid: cfg.MinAndroidVersion}
	if a.minIOS == 0 {
		a.minIOS = defaultMinIOSVersion
	}
	if a.minAndroid == 0 {
		a.minAndroid = defaultMinAndroidMajor
	}
	return a
}

// Advise evaluates the facts. Unknown facts (nil, empty, unparsable version)
// produce no advisory.
func (a *PostureAdvisor) Advise(facts models.DeviceFacts) []models.PostureAdvisory {
	var out []models.PostureAdvisory

	if v, ok := parseMajorMinor(facts.OSVersion); ok {
		switch facts.Platform {
		case models.DevicePlatformIOS:
			if v < a.minIOS {
				out = append(out, models.PostureAdvisory{
					Code:    AdvisoryOSOutdated,
					Level:   models.AdvisoryLevelWarning,
					Message: fmt.Sprintf("iOS version is below the recommended %s. Keep your OS up to date.", formatVersion(a.minIOS)),
				})
			}
		case models.DevicePlatformAndroid:
			if v < a.minAndroid {
				out = append(out, models.PostureAdvisory{
					Code:    AdvisoryOSOutdated,
					Level:   models.AdvisoryLevelWarning,
					Message: fmt.Sprintf("Android version is below the recommended %s. Keep your OS up to date.", formatVersion(a.minAndroid)),
				})
			}
		}
	}

	if facts.IsSecureDevice != nil && !*facts.IsSecureDevice {
		out = append(out, models.PostureAdvisory{
			Code:    AdvisoryNoLockScreen,
			Level:   models.AdvisoryLevelWarning,
			Message: "No lock screen is set. Set one up to protect your device.",
		})
	}

	if facts.IsJailbroken != nil && *facts.IsJailbroken {
		out = append(out, models.PostureAdvisory{
			Code:    AdvisoryJailbroken,
			Level:   models.AdvisoryLevelCritical,
			Message: "The device appears to be rooted or jailbroken. Malicious apps can bypass OS protections.",
		})
	}

	if facts.Network != nil && facts.Network.Type == networkTypeOther {
		out = append(out, models.PostureAdvisory{
			Code:    AdvisoryPublicNetwork,
			Level:   models.AdvisoryLevelNotice,
			Message: "The network type \"other\" is likely a public network. Be careful with sensitive information.",
		})
	}

	return out
}

// parseMajorMinor reads the leading "major.minor" of a version string the
// way a float parse would: "17.4.1" -> 17.4, "14" -> 14
func parseMajorMinor(version string) (float64, bool) {
	version = strings.TrimSpace(version)
	if version == "" {
		return 0, false
	}
	parts := strings.SplitN(version, ".", 3)
	s := parts[0]
	if len(parts) > 1 {
		s += "." + parts[1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatVersion(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
