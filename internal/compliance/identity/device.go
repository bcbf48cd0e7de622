package identity

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device classes recorded in audit metadata.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// DeviceClass reduces a User-Agent to a coarse class. The full string is
// recorded separately; the class keeps audit statistics groupable.
func DeviceClass(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceUnknown
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return DeviceBot
	case ua.Mobile():
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// DeviceName returns a display name such as "Chrome on macOS".
func DeviceName(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
