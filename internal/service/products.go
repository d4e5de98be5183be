// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/storage"
	"github.com/olegiv/minishop-go/internal/store"
	"github.com/olegiv/minishop-go/internal/util"
)

// ProductService implements the admin catalog workflow. It is the only
// writer of product rows and product image files.
type ProductService struct {
	queries *store.Queries
	files   storage.Store
	now     func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(db *sql.DB, files storage.Store) *ProductService {
	return &ProductService{
		queries: store.New(db),
		files:   files,
		now:     time.Now,
	}
}

// List returns a page of all products, newest first.
func (s *ProductService) List(ctx context.Context, page int) (Page[store.Product], error) {
	total, err := s.queries.CountProducts(ctx)
	if err != nil {
		return Page[store.Product]{}, storageErr("counting products", err)
	}

	p := NewPage[store.Product](page, AdminPerPage, total)
	if total == 0 {
		return p, nil
	}

	products, err := s.queries.ListProducts(ctx, store.ListProductsParams{
		Limit:  int64(p.PerPage),
		Offset: p.Offset(),
	})
	if err != nil {
		return Page[store.Product]{}, storageErr("listing products", err)
	}

	p.Items = products
	return p, nil
}

// Get returns a product by ID.
func (s *ProductService) Get(ctx context.Context, id int64) (store.Product, error) {
	return getProduct(ctx, s.queries, id)
}

// Create validates in, stores the image if one was supplied and inserts the
// product. Nothing is written when validation fails, and the stored image is
// removed again when the insert fails.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (store.Product, error) {
	valid, err := ValidateProductInput(in)
	if err != nil {
		return store.Product{}, err
	}

	var imageKey string
	if valid.Image != nil {
		imageKey, err = s.storeImage(ctx, valid)
		if err != nil {
			return store.Product{}, err
		}
	}

	now := s.now()
	product, err := s.queries.CreateProduct(ctx, store.CreateProductParams{
		Name:        valid.Name,
		Price:       valid.Price,
		Description: valid.Description,
		ImagePath:   util.NullStringFromValue(imageKey),
		Available:   valid.Available,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return store.Product{}, storageErr("creating product", err)
	}

	slog.Info("product created", "product_id", product.ID, "name", product.Name, "image", imageKey)
	return product, nil
}

// Update replaces every field of the product except the image, which changes
// only when a new one is supplied. The new image is stored before the row is
// updated and the previous file is deleted afterwards, so a failure at any
// step leaves the product with a working image.
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (store.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return store.Product{}, err
	}

	valid, err := ValidateProductInput(in)
	if err != nil {
		return store.Product{}, err
	}

	imagePath := current.ImagePath
	var newKey string
	if valid.Image != nil {
		newKey, err = s.storeImage(ctx, valid)
		if err != nil {
			return store.Product{}, err
		}
		imagePath = util.NullStringFromValue(newKey)
	}

	product, err := s.queries.UpdateProduct(ctx, store.UpdateProductParams{
		Name:        valid.Name,
		Price:       valid.Price,
		Description: valid.Description,
		ImagePath:   imagePath,
		Available:   valid.Available,
		UpdatedAt:   s.now(),
		ID:          id,
	})
	if err != nil {
		s.discardImage(ctx, newKey)
		if errors.Is(err, sql.ErrNoRows) {
			return store.Product{}, ErrProductNotFound
		}
		return store.Product{}, storageErr("updating product", err)
	}

	if newKey != "" && current.ImagePath.Valid && current.ImagePath.String != newKey {
		s.releaseImage(ctx, current.ImagePath.String)
	}

	slog.Info("product updated", "product_id", product.ID, "name", product.Name, "image_replaced", newKey != "")
	return product, nil
}

// Destroy deletes the product row and then its image file. A failure to
// delete the file is logged and does not fail the operation.
func (s *ProductService) Destroy(ctx context.Context, id int64) (store.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return store.Product{}, err
	}

	rows, err := s.queries.DeleteProduct(ctx, id)
	if err != nil {
		return store.Product{}, storageErr("deleting product", err)
	}
	if rows == 0 {
		return store.Product{}, ErrProductNotFound
	}

	if product.ImagePath.Valid && product.ImagePath.String != "" {
		s.releaseImage(ctx, product.ImagePath.String)
	}

	slog.Info("product deleted", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *ProductService) storeImage(ctx context.Context, valid *ValidatedProduct) (string, error) {
	hint := valid.Image.Filename
	if hint == "" {
		hint = valid.Name
	}

	key, err := s.files.Put(ctx, model.ProductImageNamespace, hint, valid.Image.Info.Extension, valid.Image.Data)
	if err != nil {
		return "", storageErr("storing product image", err)
	}
	return key, nil
}

// discardImage removes a file stored during a failed create or update.
func (s *ProductService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotExist) {
		slog.Warn("failed to remove image after failed write", "image", key, "error", err)
	}
}

// releaseImage deletes a file no longer referenced by the given product.
// Files still referenced by another product are kept.
func (s *ProductService) releaseImage(ctx context.Context, key string) {
	refs, err := s.queries.CountProductsByImagePath(ctx, util.NullStringFromValue(key))
	if err != nil {
		slog.Warn("failed to check image references", "image", key, "error", err)
		return
	}
	if refs > 0 {
		slog.Info("image still referenced, keeping file", "image", key, "references", refs)
		return
	}

	err = s.files.Delete(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotExist):
		slog.Info("product image already absent", "image", key)
	default:
		slog.Warn("failed to delete product image", "image", key, "error", fmt.Errorf("%w: %w", ErrStorage, err))
	}
}
