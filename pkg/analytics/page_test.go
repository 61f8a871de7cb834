package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageObjectFromURL(t *testing.T) {
	testCases := []struct {
		name     string
		pathname string
		expected PageObject
	}{
		{"home", "/", PageObject{"home_page": map[string]interface{}{}}},
		{"empty path", "", PageObject{"home_page": map[string]interface{}{}}},
		{"movie with slug", "/movies/42/the-title", PageObject{"video_page": map[string]interface{}{"video_id": 42}}},
		{"video", "/video/7", PageObject{"video_page": map[string]interface{}{"video_id": 7}}},
		{"series", "/series/300/show", PageObject{"series_page": map[string]interface{}{"series_id": 300}}},
		{"tv shows alias", "/tv-shows/301", PageObject{"series_page": map[string]interface{}{"series_id": 301}}},
		{"category", "/category/action", PageObject{"category_page": map[string]interface{}{"category_slug": "action"}}},
		{"channel", "/channel/news", PageObject{"channel_page": map[string]interface{}{"channel_slug": "news"}}},
		{"search bare", "/search", PageObject{"search_page": map[string]interface{}{}}},
		{"search query", "/search/space", PageObject{"search_page": map[string]interface{}{}}},
		{"live trailing slash", "/live/", PageObject{"live_tv_page": map[string]interface{}{}}},
		{"query string ignored", "/my-stuff?tab=list", PageObject{"my_stuff_page": map[string]interface{}{}}},
		{"full url", "https://example.com/watch-history", PageObject{"history_page": map[string]interface{}{}}},
		{"non numeric id", "/movies/abc", nil},
		{"missing id", "/movies", nil},
		{"unknown", "/settings", nil},
		{"extra segment on fixed page", "/live/now", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetPageObjectFromURL(tc.pathname))
		})
	}
}

func TestPageObjectName(t *testing.T) {
	assert.Equal(t, "video_page", GetPageObjectFromURL("/movies/1").Name())
	assert.Equal(t, "", PageObject(nil).Name())
}

func TestGetAnalyticsPlatform(t *testing.T) {
	assert.Equal(t, "WEB", GetAnalyticsPlatform(PlatformWeb))
	assert.Equal(t, "AMAZON", GetAnalyticsPlatform(PlatformFireTV))
	assert.Equal(t, "WEB", GetAnalyticsPlatform(Platform("toaster")))
}

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, PlatformRoku, ParsePlatform(" Roku "))
	assert.Equal(t, PlatformWeb, ParsePlatform("unknown"))
	assert.Len(t, Platforms(), len(analyticsPlatforms))
}

func TestLocation(t *testing.T) {
	loc := NewLocation("/movies/1/")
	assert.Equal(t, "/movies/1", loc.CurrentPathname())

	loc.SetPathname("https://example.com/series/2?autoplay=true")
	assert.Equal(t, "/series/2", loc.CurrentPathname())

	loc.SetPathname("")
	assert.Equal(t, "/", loc.CurrentPathname())
}

func TestTrackLogging_NoLogger(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("TrackLogging panicked: %v", r)
		}
	}()

	TrackLogging(LogEvent{Type: LogTypeClientInfo, Subtype: "impressions", Message: "not initialized"})
	TrackLogging(LogEvent{Type: LogTypeClientError, Subtype: "impressions", Message: "boom"})
}
