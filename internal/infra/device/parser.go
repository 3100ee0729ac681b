// Package device derives advisory device metadata from User-Agent headers.
package device

import (
	"strings"

	"bountyhub/internal/domain/service"
)

type uaParser struct{}

// NewParser returns a DeviceParser backed by substring matching. The output is
// display metadata only, so a best-effort match is acceptable.
func NewParser() service.DeviceParser {
	return &uaParser{}
}

func (p *uaParser) Parse(userAgent string) service.DeviceInfo {
	if userAgent == "" {
		return service.DeviceInfo{OS: "unknown", Browser: "unknown", Class: "unknown"}
	}

	ua := strings.ToLower(userAgent)

	return service.DeviceInfo{
		OS:      parseOS(ua),
		Browser: parseBrowser(ua),
		Class:   parseClass(ua),
	}
}

func parseOS(ua string) string {
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return "iOS"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "unknown"
	}
}

func parseBrowser(ua string) string {
	// Order matters. Chrome claims Safari, Edge claims Chrome.
	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "curl"):
		return "curl"
	default:
		return "unknown"
	}
}

func parseClass(ua string) string {
	switch {
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "iphone"), strings.Contains(ua, "android"):
		return "mobile"
	default:
		return "desktop"
	}
}
