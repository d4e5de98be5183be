// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"

	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/service"
)

// Pagination holds pagination data for the shop and admin templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	From        int64
	To          int64
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	Links       []PaginationLink
}

// PaginationLink represents a single page link.
type PaginationLink struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// ShouldShow returns true if pagination should be displayed (more than 1 page).
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// buildPagination creates pagination data for a result page. baseURL is the
// path without query string; query holds parameters to keep, such as filters.
func buildPagination[T any](page service.Page[T], baseURL string, query url.Values) Pagination {
	totalPages := page.TotalPages()

	params := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			params[k] = v
		}
	}
	base := baseURL
	if len(params) > 0 {
		base += "?" + params.Encode()
	}
	pageURL := func(n int) string { return render.PageURL(base, n) }

	p := Pagination{
		CurrentPage: page.Page,
		TotalPages:  totalPages,
		TotalItems:  page.Total,
		From:        page.From(),
		To:          page.To(),
		HasPrev:     page.HasPrev(),
		HasNext:     page.HasNext(),
		PrevURL:     pageURL(page.PrevPage()),
		NextURL:     pageURL(page.NextPage()),
	}

	// Show up to 5 pages around the current one, plus first and last.
	start := page.Page - 2
	end := page.Page + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		p.Links = append(p.Links, PaginationLink{Number: 1, URL: pageURL(1)})
		if start > 2 {
			p.Links = append(p.Links, PaginationLink{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Links = append(p.Links, PaginationLink{
			Number:    i,
			URL:       pageURL(i),
			IsCurrent: i == page.Page,
		})
	}
	if end < totalPages {
		if end < totalPages-1 {
			p.Links = append(p.Links, PaginationLink{IsEllipsis: true})
		}
		p.Links = append(p.Links, PaginationLink{Number: totalPages, URL: pageURL(totalPages)})
	}

	return p
}
