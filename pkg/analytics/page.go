package analytics

import (
	"strconv"
	"strings"
)

// PageObject holds the page-type fields merged into a signal payload,
// e.g. {"video_page": {"video_id": 42}} or {"home_page": {}}.
type PageObject map[string]interface{}

// Name returns the page-type key, or "" for an empty object.
func (p PageObject) Name() string {
	for k := range p {
		return k
	}
	return ""
}

type pageRoute struct {
	prefix string
	page   string
	// param names the field filled from the first segment after prefix;
	// empty means the route takes no parameter.
	param   string
	numeric bool
	// optional allows the route to match with the parameter missing.
	optional bool
}

var pageRoutes = []pageRoute{
	{prefix: "movies", page: "video_page", param: "video_id", numeric: true},
	{prefix: "video", page: "video_page", param: "video_id", numeric: true},
	{prefix: "series", page: "series_page", param: "series_id", numeric: true},
	{prefix: "tv-shows", page: "series_page", param: "series_id", numeric: true},
	{prefix: "category", page: "category_page", param: "category_slug"},
	{prefix: "channel", page: "channel_page", param: "channel_slug"},
	{prefix: "search", page: "search_page", optional: true},
	{prefix: "live", page: "live_tv_page"},
	{prefix: "my-stuff", page: "my_stuff_page"},
	{prefix: "watch-history", page: "history_page"},
}

// GetPageObjectFromURL resolves the page-type object for a pathname.
// It returns nil when the path is not a page analytics knows about.
func GetPageObjectFromURL(pathname string) PageObject {
	path := normalizePathname(pathname)
	if path == "/" {
		return PageObject{"home_page": map[string]interface{}{}}
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, route := range pageRoutes {
		if segments[0] != route.prefix {
			continue
		}
		fields := map[string]interface{}{}
		if route.param == "" {
			if len(segments) > 1 && !route.optional {
				return nil
			}
			return PageObject{route.page: fields}
		}
		if len(segments) < 2 || segments[1] == "" {
			if route.optional {
				return PageObject{route.page: fields}
			}
			return nil
		}
		if route.numeric {
			id, err := strconv.Atoi(segments[1])
			if err != nil || id <= 0 {
				return nil
			}
			fields[route.param] = id
		} else {
			fields[route.param] = segments[1]
		}
		return PageObject{route.page: fields}
	}
	return nil
}
