package models

import "strings"

// DevicePlatform is the mobile OS family reported by the app
type DevicePlatform string

const (
	DevicePlatformIOS     DevicePlatform = "ios"
	DevicePlatformAndroid DevicePlatform = "android"
	DevicePlatformWeb     DevicePlatform = "web"
	DevicePlatformUnknown DevicePlatform = "unknown"
)

// ParseDevicePlatform normalises "iOS", "Android" etc.
func ParseDevicePlatform(s string) DevicePlatform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ios", "ipados":
		return DevicePlatformIOS
	case "android":
		return DevicePlatformAndroid
	case "web":
		return DevicePlatformWeb
	default:
		return DevicePlatformUnknown
	}
}

// NetworkInfo mirrors the connectivity state reported by the device
type NetworkInfo struct {
	Type                string         `json:"type"`
	IsConnected         *bool          `json:"isConnected,omitempty"`
	IsInternetReachable *bool          `json:"isInternetReachable,omitempty"`
	Details             map[string]any `json:"details,omitempty"`
}

// DeviceFacts are collected on the device and treated as opaque values here.
// Nil pointers mean the check could not be performed.
type DeviceFacts struct {
	Platform       DevicePlatform `json:"platform"`
	DeviceName     string         `json:"deviceName"`
	OSVersion      string         `json:"osVersion"`
	IsSecureDevice *bool          `json:"isSecureDevice"`
	IsJailbroken   *bool          `json:"isJailbroken"`
	IPAddress      string         `json:"ipAddress"`
	Carrier        string         `json:"carrierStatus"`
	Network        *NetworkInfo   `json:"networkInfo"`
}

// AdvisoryLevel grades a posture advisory
type AdvisoryLevel string

const (
	AdvisoryLevelNotice   AdvisoryLevel = "notice"
	AdvisoryLevelWarning  AdvisoryLevel = "warning"
	AdvisoryLevelCritical AdvisoryLevel = "critical"
)

// PostureAdvisory is a recommendation derived from device facts
type PostureAdvisory struct {
	Code    string        `json:"code"`
	Level   AdvisoryLevel `json:"level"`
	Message string        `json:"message"`
}
