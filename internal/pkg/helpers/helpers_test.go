package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("90m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("not-a-duration", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
	assert.Equal(t, 7*24*time.Hour, ParseDuration("7d", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("-1d", time.Hour))
}

func TestParseLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]int{
		"/?limit=5":    5,
		"/?limit=abc":  20,
		"/?limit=1000": MaxListLimit,
		"/":            20,
	}
	for url, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, url, nil)
		assert.Equal(t, want, ParseLimit(c, DefaultListLimit), url)
	}
}

func TestCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := CurrentUserID(c)
	assert.False(t, ok)

	c.Set("userID", int64(7))
	id, ok := CurrentUserID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}
