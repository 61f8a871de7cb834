package service

import (
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/formatter"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
)

// PageHeaders are the columns of PageRows.
var PageHeaders = []string{"PATH", "PAGE", "TRACKED"}

// PagesService shows how pathnames resolve to analytics pages
type PagesService struct{}

// NewPagesService creates a new pages service
func NewPagesService() *PagesService {
	return &PagesService{}
}

// Resolve prints the page object of every path.
func (ps *PagesService) Resolve(paths []string) error {
	return output.PrintTable(PageHeaders, PageRows(paths))
}

// PageRows resolves paths to table rows. Paths that resolve to no page are
// marked untracked: impressions seen there are never sent.
func PageRows(paths []string) [][]string {
	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		page := analytics.GetPageObjectFromURL(path)
		if page == nil {
			rows = append(rows, []string{path, "-", "no"})
			continue
		}
		rows = append(rows, []string{path, formatter.PageLabel(page), "yes"})
	}
	return rows
}
