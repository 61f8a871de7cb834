// Package formatter renders signals and replay reports for the terminal.
package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/simulate"
)

var (
	Bold  = color.New(color.Bold)
	Faint = color.New(color.Faint)
	Info  = color.New(color.FgCyan)
)

// TileHeaders are the columns of TileRows.
var TileHeaders = []string{"CONTAINER", "ROW", "COL", "KIND", "ID", "DURATION_MS"}

// TileRows flattens a payload into one row per tile.
func TileRows(p *impressions.Payload) [][]string {
	var rows [][]string
	for _, c := range p.Containers {
		for _, content := range c.Contents {
			kind, id := "video", content.VideoID
			if content.SeriesID != nil {
				kind, id = "series", content.SeriesID
			}
			idStr := ""
			if id != nil {
				idStr = strconv.Itoa(*id)
			}
			rows = append(rows, []string{
				c.ID,
				strconv.Itoa(content.Row),
				strconv.Itoa(content.Col),
				kind,
				idStr,
				strconv.FormatInt(content.Duration, 10),
			})
		}
	}
	return rows
}

// SignalLine is a one-line summary of a payload, as printed by tail.
func SignalLine(p *impressions.Payload, at time.Time) string {
	user := "anonymous"
	if p.UserID != nil {
		user = "user " + strconv.Itoa(*p.UserID)
	}
	containers := make([]string, 0, len(p.Containers))
	for _, c := range p.Containers {
		containers = append(containers, fmt.Sprintf("%s(%d)", c.ID, len(c.Contents)))
	}
	return fmt.Sprintf("%s %s %s %s %s %s",
		Faint.Sprint(at.Local().Format("15:04:05.000")),
		Info.Sprint(p.Platform),
		Bold.Sprint(PageLabel(p.Page)),
		user,
		strings.Join(containers, " "),
		Faint.Sprintf("device=%s", p.DeviceID),
	)
}

// PageLabel renders a page object as name{field=value,...}.
func PageLabel(page analytics.PageObject) string {
	name := page.Name()
	if name == "" {
		return "unknown_page"
	}
	fields, ok := page[name].(map[string]interface{})
	if !ok || len(fields) == 0 {
		return name
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}

// ReportRecord summarizes a replay for output.PrintRecord.
func ReportRecord(r *simulate.Report) map[string]interface{} {
	return map[string]interface{}{
		"steps":        r.Steps,
		"virtual_time": r.Elapsed.String(),
		"started":      r.Started,
		"concluded":    r.Concluded,
		"payloads":     len(r.Payloads),
		"tiles":        r.Tiles(),
		"dropped":      countsString(r.Dropped),
		"flushes":      countsString(r.Flushes),
	}
}

func countsString(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
