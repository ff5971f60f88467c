package utils

import (
	"fmt"
	"strings"
)

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Total      int
	PerPage    int
	Current    int
	Offset     int
	TotalPages int
}

// NewPagination clamps current into [1, TotalPages].
func NewPagination(total, perPage, current int) *PaginationInfo {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	return &PaginationInfo{
		Total:      total,
		PerPage:    perPage,
		Current:    current,
		Offset:     (current - 1) * perPage,
		TotalPages: totalPages,
	}
}

// GetRange returns the range of items on the current page (1-indexed)
func (p *PaginationInfo) GetRange() (start, end int) {
	start = p.Offset + 1
	end = min(p.Offset+p.PerPage, p.Total)
	return start, end
}

func (p *PaginationInfo) HasNext() bool { return p.Current < p.TotalPages }
func (p *PaginationInfo) HasPrev() bool { return p.Current > 1 }

// FormatSummary returns a human-readable summary
func (p *PaginationInfo) FormatSummary() string {
	if p.Total == 0 {
		return "No results"
	}
	start, end := p.GetRange()
	if p.TotalPages == 1 {
		return fmt.Sprintf("Showing %d-%d of %d result%s", start, end, p.Total, plural(p.Total))
	}
	return fmt.Sprintf("Showing %d-%d of %d result%s (page %d of %d)",
		start, end, p.Total, plural(p.Total), p.Current, p.TotalPages)
}

// FormatNavigation returns --page hints for the CLI.
func (p *PaginationInfo) FormatNavigation() string {
	if p.TotalPages <= 1 {
		return ""
	}
	var hints []string
	if p.HasPrev() {
		hints = append(hints, fmt.Sprintf("use --page %d for previous", p.Current-1))
	}
	if p.HasNext() {
		hints = append(hints, fmt.Sprintf("use --page %d for next", p.Current+1))
	}
	return strings.Join(hints, ", ")
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
