package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fluvid/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextFor(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParseVideoFilter(t *testing.T) {
	filter, err := parseVideoFilter(contextFor("privacy=public&status=ready&interactive=false&tag=tutorial&q=Light&sort=likes&owner=usr_admin"))
	require.NoError(t, err)

	assert.Equal(t, domain.PrivacyPublic, filter.Privacy)
	assert.Equal(t, domain.VideoReady, filter.Status)
	require.NotNil(t, filter.Interactive)
	assert.False(t, *filter.Interactive)
	assert.Equal(t, "tutorial", filter.Tag)
	assert.Equal(t, "Light", filter.Query)
	assert.Equal(t, domain.SortLikes, filter.Sort)
	assert.Equal(t, domain.UserID("usr_admin"), filter.OwnerID)
}

func TestParseVideoFilter_Empty(t *testing.T) {
	filter, err := parseVideoFilter(contextFor(""))
	require.NoError(t, err)
	assert.Equal(t, domain.VideoFilter{}, filter)
}

func TestParseVideoFilter_Invalid(t *testing.T) {
	tests := map[string]string{
		"privacy=friends":    "privacy",
		"status=deleted":     "status",
		"interactive=sortof": "interactive",
		"sort=random":        "sort",
	}
	for query, field := range tests {
		t.Run(query, func(t *testing.T) {
			_, err := parseVideoFilter(contextFor(query))
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, field, vErr.Field)
		})
	}
}

func TestParseSeriesFilter(t *testing.T) {
	filter, err := parseSeriesFilter(contextFor("status=draft&monetization=pay-per-view&q=doc"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, filter.Status)
	assert.Equal(t, domain.MonetizationPayPerView, filter.Monetization)
	assert.Equal(t, "doc", filter.Query)

	_, err = parseSeriesFilter(contextFor("monetization=donations"))
	assert.Error(t, err)
}
