package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	ua "github.com/mssola/user_agent"
)

// ClientInfo describes the browser behind a request
type ClientInfo struct {
	IP         string `json:"ip"`
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// Fields returns the info as a JSON document for payment events
func (ci ClientInfo) Fields() map[string]interface{} {
	return map[string]interface{}{
		"device_type": ci.DeviceType,
		"os":          ci.OS,
		"browser":     ci.Browser,
		"is_bot":      ci.IsBot,
	}
}

// DescribeClient extracts IP and device information from the request
func DescribeClient(c *gin.Context) ClientInfo {
	info := ParseUserAgent(c.Request.UserAgent())
	info.IP = GetRealIP(c)
	return info
}

// ParseUserAgent parses a User-Agent string
func ParseUserAgent(userAgent string) ClientInfo {
	if userAgent == "" {
		return ClientInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)
	info := ClientInfo{
		IsBot:      parser.Bot(),
		OS:         "Unknown",
		Browser:    "Unknown",
		DeviceType: "desktop",
	}

	if osInfo := parser.OSInfo(); osInfo.Name != "" {
		info.OS = strings.TrimSpace(osInfo.Name + " " + osInfo.Version)
	}
	if name, version := parser.Browser(); name != "" {
		info.Browser = strings.TrimSpace(name + " " + version)
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
		lower := strings.ToLower(userAgent)
		if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
			info.DeviceType = "tablet"
		}
	}

	return info
}

// GetRealIP returns the client IP, preferring proxy headers.
// X-Real-IP wins, then the first public address in X-Forwarded-For.
func GetRealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		for _, candidate := range strings.Split(forwarded, ",") {
			ip := net.ParseIP(strings.TrimSpace(candidate))
			if ip != nil && !ip.IsPrivate() && !ip.IsLoopback() {
				return ip.String()
			}
		}
	}

	return c.ClientIP()
}
