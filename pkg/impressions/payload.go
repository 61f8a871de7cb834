package impressions

import (
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TimestampLayout formats sent_timestamp: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Content is one tile of a container on the wire. Exactly one of VideoID
// and SeriesID is set.
type Content struct {
	VideoID  *int  `json:"video_id,omitempty"`
	SeriesID *int  `json:"series_id,omitempty"`
	Row      int   `json:"row"`
	Col      int   `json:"col"`
	Duration int64 `json:"duration"`
}

// Container groups the tiles seen in one row/shelf.
type Container struct {
	ID       string    `json:"id"`
	Contents []Content `json:"contents"`
}

// Payload is the single-event body for one (personalization id, page) group.
// Page fields are merged into the top level of the JSON object.
type Payload struct {
	SentTimestamp     string
	Platform          string
	DeviceID          string
	UserID            *int
	PersonalizationID string
	Containers        []Container
	Page              analytics.PageObject
}

// Fixed wire field names.
const (
	fieldSentTimestamp     = "sent_timestamp"
	fieldPlatform          = "platform"
	fieldDeviceID          = "device_id"
	fieldUserID            = "user_id"
	fieldPersonalizationID = "personalization_id"
	fieldContainers        = "containers"
)

// MarshalJSON writes the fixed fields and merges the page object alongside them.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Page)+6)
	for k, v := range p.Page {
		out[k] = v
	}
	out[fieldSentTimestamp] = p.SentTimestamp
	out[fieldPlatform] = p.Platform
	out[fieldDeviceID] = p.DeviceID
	if p.UserID != nil {
		out[fieldUserID] = *p.UserID
	}
	out[fieldPersonalizationID] = p.PersonalizationID
	containers := p.Containers
	if containers == nil {
		containers = []Container{}
	}
	out[fieldContainers] = containers
	return json.Marshal(out)
}

// UnmarshalJSON reads the fixed fields; every other top-level key is kept
// as part of the page object.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Payload{}
	fields := []struct {
		name   string
		target interface{}
	}{
		{fieldSentTimestamp, &p.SentTimestamp},
		{fieldPlatform, &p.Platform},
		{fieldDeviceID, &p.DeviceID},
		{fieldUserID, &p.UserID},
		{fieldPersonalizationID, &p.PersonalizationID},
		{fieldContainers, &p.Containers},
	}
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.target); err != nil {
			return fmt.Errorf("decode %s: %w", f.name, err)
		}
		delete(raw, f.name)
	}

	if len(raw) > 0 {
		p.Page = make(analytics.PageObject, len(raw))
		for k, v := range raw {
			var val interface{}
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			p.Page[k] = val
		}
	}
	return nil
}

// Tiles returns the number of contents across all containers.
func (p *Payload) Tiles() int {
	n := 0
	for _, c := range p.Containers {
		n += len(c.Contents)
	}
	return n
}

// impressionGroup is the unit of one payload.
type impressionGroup struct {
	personalizationID string
	pathname          string
	items             []concludedImpression
}

type groupKey struct {
	personalizationID string
	pathname          string
}

// groupImpressions groups by (personalization id, pathname), keeping
// conclude order within each group.
func groupImpressions(batch []concludedImpression) []*impressionGroup {
	index := make(map[groupKey]*impressionGroup)
	var groups []*impressionGroup
	for _, imp := range batch {
		k := groupKey{personalizationID: imp.PersonalizationID, pathname: imp.pathname}
		g, ok := index[k]
		if !ok {
			g = &impressionGroup{personalizationID: k.personalizationID, pathname: k.pathname}
			index[k] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, imp)
	}
	return groups
}

// buildContainers groups a group's tiles by container. Tiles whose content
// id is not an integer are skipped and counted in invalid.
func buildContainers(items []concludedImpression) (containers []Container, invalid int) {
	index := make(map[string]int)
	for _, imp := range items {
		content, ok := toContent(imp)
		if !ok {
			invalid++
			continue
		}
		i, seen := index[imp.ContainerID]
		if !seen {
			i = len(containers)
			index[imp.ContainerID] = i
			containers = append(containers, Container{ID: imp.ContainerID})
		}
		containers[i].Contents = append(containers[i].Contents, content)
	}
	return containers, invalid
}

func toContent(imp concludedImpression) (Content, bool) {
	id, err := strconv.Atoi(imp.ContentID)
	if err != nil {
		return Content{}, false
	}
	c := Content{
		Row:      imp.Row,
		Col:      imp.Col,
		Duration: imp.duration.Milliseconds(),
	}
	if imp.IsSeries {
		c.SeriesID = &id
	} else {
		c.VideoID = &id
	}
	return c, true
}

// FormatTimestamp renders t the way sent_timestamp expects.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a sent_timestamp value.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
