package visitorlog

import "strings"

// Label classifies a user agent into a human-readable
// "Platform • Device • OS" string for the visitor log.
func Label(userAgent string) string {
	ua := strings.ToLower(userAgent)

	platform := "Browser"
	switch {
	case strings.Contains(ua, "instagram"):
		platform = "Instagram"
	case strings.Contains(ua, "facebook"):
		platform = "Facebook"
	case strings.Contains(ua, "chrome"):
		platform = "Chrome"
	case strings.Contains(ua, "safari"):
		platform = "Safari"
	}

	device := "Unknown"
	switch {
	case strings.Contains(ua, "iphone"):
		device = "iPhone"
	case strings.Contains(ua, "android"):
		device = "Android"
	case strings.Contains(ua, "windows"):
		device = "Windows PC"
	case strings.Contains(ua, "macintosh"):
		device = "Mac"
	}

	os := "Unknown OS"
	switch {
	case strings.Contains(ua, "ios"), strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "mac os"):
		os = "macOS"
	}

	return platform + " • " + device + " • " + os
}
