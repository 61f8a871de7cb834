package sink

import (
	"fmt"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
)

// Validate checks a payload the way the ingestion endpoint does: identity
// and page present, and every tile carrying exactly one content id. An
// empty personalization_id is a valid group of its own.
func Validate(p *impressions.Payload) error {
	switch {
	case p.DeviceID == "":
		return fmt.Errorf("device_id is required")
	case p.Platform == "":
		return fmt.Errorf("platform is required")
	case len(p.Containers) == 0:
		return fmt.Errorf("containers must not be empty")
	case len(p.Page) == 0:
		return fmt.Errorf("page object is required")
	}
	if _, err := impressions.ParseTimestamp(p.SentTimestamp); err != nil {
		return fmt.Errorf("sent_timestamp: %w", err)
	}

	for i, c := range p.Containers {
		if c.ID == "" {
			return fmt.Errorf("containers[%d]: id is required", i)
		}
		if len(c.Contents) == 0 {
			return fmt.Errorf("containers[%d]: contents must not be empty", i)
		}
		for j, content := range c.Contents {
			if (content.VideoID == nil) == (content.SeriesID == nil) {
				return fmt.Errorf("containers[%d].contents[%d]: exactly one of video_id and series_id is required", i, j)
			}
			if content.Duration < 0 {
				return fmt.Errorf("containers[%d].contents[%d]: negative duration", i, j)
			}
		}
	}
	return nil
}
