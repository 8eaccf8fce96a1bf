package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func TestParseUserAgent(t *testing.T) {
	mobile := ParseUserAgent(iphoneUA)
	assert.Equal(t, "mobile", mobile.DeviceType)
	assert.False(t, mobile.IsBot)

	desktop := ParseUserAgent(desktopUA)
	assert.Equal(t, "desktop", desktop.DeviceType)
	assert.Contains(t, desktop.Browser, "Chrome")

	empty := ParseUserAgent("")
	assert.Equal(t, "unknown", empty.DeviceType)

	bot := ParseUserAgent("Googlebot/2.1 (+http://www.google.com/bot.html)")
	assert.True(t, bot.IsBot)
}

func TestGetRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newContext := func(headers map[string]string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.RemoteAddr = "10.0.0.9:5555"
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	assert.Equal(t, "181.49.10.2", GetRealIP(newContext(map[string]string{"X-Real-IP": "181.49.10.2"})))
	assert.Equal(t, "190.25.1.1", GetRealIP(newContext(map[string]string{"X-Forwarded-For": "10.1.1.1, 190.25.1.1"})))
	assert.Equal(t, "10.0.0.9", GetRealIP(newContext(nil)))
}

func TestDescribeClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("User-Agent", iphoneUA)
	c.Request.Header.Set("X-Real-IP", "181.49.10.2")

	info := DescribeClient(c)
	assert.Equal(t, "181.49.10.2", info.IP)
	assert.Equal(t, "mobile", info.Fields()["device_type"])
}
