// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/olegiv/minishop-go/internal/store"
)

// ShopService serves the public catalog.
type ShopService struct {
	queries *store.Queries
}

// NewShopService creates a new ShopService.
func NewShopService(db *sql.DB) *ShopService {
	return &ShopService{queries: store.New(db)}
}

// ListAvailable returns a page of available products, newest first.
// Pages past the end are empty.
func (s *ShopService) ListAvailable(ctx context.Context, page int) (Page[store.Product], error) {
	total, err := s.queries.CountAvailableProducts(ctx)
	if err != nil {
		return Page[store.Product]{}, storageErr("counting available products", err)
	}

	p := NewPage[store.Product](page, ShopPerPage, total)
	if total == 0 {
		return p, nil
	}

	products, err := s.queries.ListAvailableProducts(ctx, store.ListAvailableProductsParams{
		Limit:  int64(p.PerPage),
		Offset: p.Offset(),
	})
	if err != nil {
		return Page[store.Product]{}, storageErr("listing available products", err)
	}

	p.Items = products
	return p, nil
}

// GetDetail returns any product, available or not.
func (s *ShopService) GetDetail(ctx context.Context, id int64) (store.Product, error) {
	return getProduct(ctx, s.queries, id)
}

func getProduct(ctx context.Context, q *store.Queries, id int64) (store.Product, error) {
	if id <= 0 {
		return store.Product{}, ErrProductNotFound
	}

	product, err := q.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Product{}, ErrProductNotFound
		}
		return store.Product{}, storageErr("loading product", err)
	}
	return product, nil
}
