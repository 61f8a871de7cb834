package analytics

import (
	"net/url"
	"strings"
	"sync"
)

// Location tracks the pathname of the page currently on screen.
type Location struct {
	mu       sync.RWMutex
	pathname string
}

// NewLocation returns a Location starting at pathname.
func NewLocation(pathname string) *Location {
	l := &Location{}
	l.SetPathname(pathname)
	return l
}

// SetPathname records a navigation. Full URLs are reduced to their path.
func (l *Location) SetPathname(pathname string) {
	l.mu.Lock()
	l.pathname = normalizePathname(pathname)
	l.mu.Unlock()
}

// CurrentPathname returns the path of the current page.
func (l *Location) CurrentPathname() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pathname
}

func normalizePathname(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if len(raw) > 1 {
		raw = strings.TrimRight(raw, "/")
		if raw == "" {
			raw = "/"
		}
	}
	return raw
}
