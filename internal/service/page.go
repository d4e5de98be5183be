// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

// Page sizes.
const (
	ShopPerPage   = 12
	AdminPerPage  = 10
	EventsPerPage = 25
)

// Page is one page of an ordered result set. Page numbers start at 1.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
}

// NewPage returns an empty page with page clamped to at least 1.
func NewPage[T any](page, perPage int, total int64) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = AdminPerPage
	}
	return Page[T]{Page: page, PerPage: perPage, Total: total}
}

// Offset returns the number of rows preceding this page.
func (p Page[T]) Offset() int64 {
	return int64(p.Page-1) * int64(p.PerPage)
}

// TotalPages returns the number of pages, at least 1.
func (p Page[T]) TotalPages() int {
	if p.Total <= 0 || p.PerPage <= 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

// PrevPage returns the previous page number.
func (p Page[T]) PrevPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number.
func (p Page[T]) NextPage() int {
	return p.Page + 1
}

// From returns the 1-based position of the first item, or 0 when the page is empty.
func (p Page[T]) From() int64 {
	if len(p.Items) == 0 {
		return 0
	}
	return p.Offset() + 1
}

// To returns the 1-based position of the last item, or 0 when the page is empty.
func (p Page[T]) To() int64 {
	if len(p.Items) == 0 {
		return 0
	}
	return p.Offset() + int64(len(p.Items))
}

// Empty reports whether the page holds no items.
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}
