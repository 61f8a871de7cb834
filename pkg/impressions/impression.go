package impressions

import (
	"strconv"
	"time"
)

// Impression identifies a content tile shown at a grid position of a container.
type Impression struct {
	ContentID         string `json:"content_id"`
	ContainerID       string `json:"container_id"`
	Row               int    `json:"row"`
	Col               int    `json:"col"`
	// PersonalizationID may be empty; the empty token groups like any other.
	PersonalizationID string `json:"personalization_id"`
	IsSeries          bool   `json:"is_series,omitempty"`
}

// Key returns the identity of the impression. At most one impression per
// key is active at a time.
func (i Impression) Key() Key {
	return Key{
		ContentID:   i.ContentID,
		ContainerID: i.ContainerID,
		Row:         i.Row,
		Col:         i.Col,
	}
}

// Key is the composite identity of an impression. Being a comparable
// struct, two distinct impressions can never share a key.
type Key struct {
	ContentID   string
	ContainerID string
	Row         int
	Col         int
}

// String renders the key as content-container-row-col.
func (k Key) String() string {
	return k.ContentID + "-" + k.ContainerID + "-" + strconv.Itoa(k.Row) + "-" + strconv.Itoa(k.Col)
}

type activeImpression struct {
	Impression
	start    time.Time
	pathname string
}

type concludedImpression struct {
	Impression
	duration time.Duration
	// pathname is the page the tile was seen on, captured at start.
	pathname string
}
