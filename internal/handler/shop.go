// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/store"
)

// ShopHandler serves the public catalog.
type ShopHandler struct {
	shop     *service.ShopService
	renderer *render.Renderer
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(db *sql.DB, renderer *render.Renderer) *ShopHandler {
	return &ShopHandler{
		shop:     service.NewShopService(db),
		renderer: renderer,
	}
}

// ShopIndexData holds data for the catalog page.
type ShopIndexData struct {
	Products   []store.Product
	Pagination Pagination
}

// ShopShowData holds data for the product detail page.
type ShopShowData struct {
	Product store.Product
}

// Index handles GET / - available products, newest first, 12 per page.
func (h *ShopHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := h.shop.ListAvailable(r.Context(), pageParam(r))
	if err != nil {
		logAndInternalError(w, "failed to list products", "error", err)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "shop/index", render.TemplateData{
		Title: "Products",
		Data: ShopIndexData{
			Products:   page.Items,
			Pagination: buildPagination(page, RouteRoot, r.URL.Query()),
		},
	})
}

// Show handles GET /products/{id}. Unavailable products are shown too.
func (h *ShopHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		renderNotFound(w, r, h.renderer)
		return
	}

	product, err := h.shop.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			slog.Debug("product not found", "product_id", id)
			renderNotFound(w, r, h.renderer)
			return
		}
		logAndInternalError(w, "failed to get product", "error", err, "product_id", id)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "shop/show", render.TemplateData{
		Title: product.Name,
		Data:  ShopShowData{Product: product},
	})
}

// NotFound renders the 404 page for unmatched routes.
func (h *ShopHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, h.renderer)
}
