// Package simulate replays scripted browse sessions against an
// impressions manager in virtual time.
package simulate

import (
	"fmt"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Action is what a step does to the manager.
type Action string

const (
	ActionStart    Action = "start"
	ActionEnd      Action = "end"
	ActionEndAll   Action = "end_all"
	ActionNavigate Action = "navigate"
	ActionTick     Action = "tick"
)

// Step is one timed event of a session.
type Step struct {
	// AtMS is the offset from the start of the session.
	AtMS        int64                    `json:"at_ms"`
	Action      Action                   `json:"action"`
	Pathname    string                   `json:"pathname,omitempty"`
	Impressions []impressions.Impression `json:"impressions,omitempty"`
}

// Script is a browse session.
type Script struct {
	Name     string `json:"name,omitempty"`
	Platform string `json:"platform,omitempty"`
	Steps    []Step `json:"steps"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a JSON script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that steps are in time order and well formed.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}
	sorted := sort.SliceIsSorted(s.Steps, func(i, j int) bool {
		return s.Steps[i].AtMS < s.Steps[j].AtMS
	})
	if !sorted {
		return fmt.Errorf("steps must be ordered by at_ms")
	}
	for i, step := range s.Steps {
		if step.AtMS < 0 {
			return fmt.Errorf("step %d: negative at_ms", i)
		}
		switch step.Action {
		case ActionStart, ActionEnd:
			if len(step.Impressions) == 0 {
				return fmt.Errorf("step %d: %s needs impressions", i, step.Action)
			}
		case ActionNavigate:
			if step.Pathname == "" {
				return fmt.Errorf("step %d: navigate needs a pathname", i)
			}
		case ActionEndAll, ActionTick:
		default:
			return fmt.Errorf("step %d: unknown action %q", i, step.Action)
		}
	}
	return nil
}

// Marshal encodes the script as indented JSON.
func (s *Script) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
