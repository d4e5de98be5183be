// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/storage"
	"github.com/olegiv/minishop-go/internal/store"
)

// ProductsHandler serves the admin product catalog. Every route is mounted
// behind middleware.RequireAdmin.
type ProductsHandler struct {
	products     *service.ProductService
	eventService *service.EventService
	renderer     *render.Renderer
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(db *sql.DB, files storage.Store, renderer *render.Renderer) *ProductsHandler {
	return &ProductsHandler{
		products:     service.NewProductService(db, files),
		eventService: service.NewEventService(db),
		renderer:     renderer,
	}
}

// ProductsListData holds data for the admin product list.
type ProductsListData struct {
	Products   []store.Product
	Pagination Pagination
}

// ProductFormData holds data for the create and edit forms.
type ProductFormData struct {
	Product *store.Product
	Values  ProductFormValues
	Errors  map[string]string
	Action  string
	IsEdit  bool
}

// ProductFormValues are the values shown in the form inputs.
type ProductFormValues struct {
	Name        string
	Price       string
	Description string
	Available   bool
}

// ProductShowData holds data for the admin product detail page.
type ProductShowData struct {
	Product store.Product
}

// Dashboard handles GET /admin.
func (h *ProductsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, redirectAdminProducts, http.StatusSeeOther)
}

// List handles GET /admin/products - every product, newest first, 10 per page.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.products.List(r.Context(), pageParam(r))
	if err != nil {
		logAndInternalError(w, "failed to list products", "error", err)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/products/index", render.TemplateData{
		Title: "Product Management",
		Data: ProductsListData{
			Products:   page.Items,
			Pagination: buildPagination(page, redirectAdminProducts, r.URL.Query()),
		},
	})
}

// NewForm handles GET /admin/products/create.
func (h *ProductsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, ProductFormData{
		Values: ProductFormValues{Available: true},
		Errors: map[string]string{},
		Action: redirectAdminProducts,
	})
}

// Create handles POST /admin/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseProductForm(w, r)
	var product store.Product
	if err == nil {
		product, err = h.products.Create(r.Context(), input)
	}
	if err != nil {
		h.handleWriteError(w, r, err, input, ProductFormData{
			Action: redirectAdminProducts,
		}, redirectAdminProductsCreate)
		return
	}

	h.logProductEvent(r, model.EventLevelInfo, "Product created", product)
	flashSuccess(w, r, h.renderer, redirectAdminProducts, MsgProductCreated)
}

// View handles GET /admin/products/{id}.
func (h *ProductsHandler) View(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/products/show", render.TemplateData{
		Title: product.Name,
		Data:  ProductShowData{Product: product},
	})
}

// EditForm handles GET /admin/products/{id}/edit.
func (h *ProductsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	h.renderForm(w, r, http.StatusOK, ProductFormData{
		Product: &product,
		Values:  formValuesFromProduct(product),
		Errors:  map[string]string{},
		Action:  fmt.Sprintf(redirectAdminProductsID, product.ID),
		IsEdit:  true,
	})
}

// Update handles PUT, PATCH and POST /admin/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectAdminProducts, MsgProductMissing)
		return
	}

	editURL := fmt.Sprintf(redirectAdminProductsIDEdit, id)
	input, parseErr := h.parseProductForm(w, r)
	err := parseErr
	var product store.Product
	if err == nil {
		product, err = h.products.Update(r.Context(), id, input)
	}
	if err != nil {
		form := ProductFormData{
			Action: fmt.Sprintf(redirectAdminProductsID, id),
			IsEdit: true,
		}
		if current, getErr := h.products.Get(r.Context(), id); getErr == nil {
			form.Product = &current
			if parseErr != nil {
				// Nothing was read from the body; show the stored values.
				form.Values = formValuesFromProduct(current)
			}
		}
		h.handleWriteError(w, r, err, input, form, editURL)
		return
	}

	h.logProductEvent(r, model.EventLevelInfo, "Product updated", product)
	flashSuccess(w, r, h.renderer, redirectAdminProducts, MsgProductUpdated)
}

// Delete handles DELETE /admin/products/{id} and POST /admin/products/{id}/delete.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectAdminProducts, MsgProductMissing)
		return
	}

	product, err := h.products.Destroy(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			flashError(w, r, h.renderer, redirectAdminProducts, MsgProductMissing)
			return
		}
		slog.Error("failed to delete product", "error", err, "product_id", id)
		flashError(w, r, h.renderer, redirectAdminProducts, "Error deleting product.")
		return
	}

	h.logProductEvent(r, model.EventLevelInfo, "Product deleted", product)
	flashSuccess(w, r, h.renderer, redirectAdminProducts, MsgProductDeleted)
}

// loadProduct resolves the {id} parameter. A missing product redirects to
// the list with an error flash.
func (h *ProductsHandler) loadProduct(w http.ResponseWriter, r *http.Request) (store.Product, bool) {
	id, ok := parseIDParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectAdminProducts, MsgProductMissing)
		return store.Product{}, false
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			flashError(w, r, h.renderer, redirectAdminProducts, MsgProductMissing)
			return store.Product{}, false
		}
		logAndInternalError(w, "failed to get product", "error", err, "product_id", id)
		return store.Product{}, false
	}
	return product, true
}

// errInvalidForm marks a product form body that could not be parsed.
var errInvalidForm = errors.New("invalid product form")

// parseProductForm reads the product form, multipart or urlencoded, and
// maps it to a service input. The checkbox is mapped explicitly so an
// unchecked box yields false. A body over MaxProductFormBytes is reported as
// an image validation error, since only the file can make it that large.
func (h *ProductsHandler) parseProductForm(w http.ResponseWriter, r *http.Request) (service.ProductInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxProductFormBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			slog.Warn("product form too large", "limit", maxErr.Limit)
			return service.ProductInput{}, service.NewImageTooLargeError()
		}
		return service.ProductInput{}, fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	available, availableValue := service.ParseCheckbox(r.PostForm[service.FieldAvailable])
	input := service.ProductInput{
		Name:           r.PostFormValue(service.FieldName),
		Price:          r.PostFormValue(service.FieldPrice),
		Description:    r.PostFormValue(service.FieldDescription),
		Available:      available,
		AvailableValue: availableValue,
	}

	upload, err := readUpload(r, service.FieldImage)
	if err != nil {
		return service.ProductInput{}, fmt.Errorf("%w: %w", errInvalidForm, err)
	}
	input.Image = upload

	return input, nil
}

// readUpload returns the named file part, or nil when none was sent. At most
// one byte past the image limit is read so oversized files fail validation
// without being buffered whole.
func readUpload(r *http.Request, field string) (*service.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer func(f multipart.File) {
		_ = f.Close()
	}(file)

	if header.Filename == "" && header.Size == 0 {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, model.ProductImageMaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	return &service.ImageUpload{Filename: header.Filename, Data: data}, nil
}

// handleWriteError maps a failed create or update to a response: validation
// errors re-render the form with 422, the rest redirect with a flash. Form
// values already set on form are kept.
func (h *ProductsHandler) handleWriteError(w http.ResponseWriter, r *http.Request, err error, input service.ProductInput, form ProductFormData, failURL string) {
	if verr, ok := service.AsValidationError(err); ok {
		if form.Values == (ProductFormValues{}) {
			form.Values = ProductFormValues{
				Name:        input.Name,
				Price:       input.Price,
				Description: input.Description,
				Available:   input.Available,
			}
		}
		form.Errors = verr.Fields
		h.renderForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	switch {
	case errors.Is(err, errInvalidForm):
		slog.Warn("failed to parse product form", "error", err)
		flashError(w, r, h.renderer, failURL, MsgInvalidForm)
	case errors.Is(err, service.ErrProductNotFound):
		flashError(w, r, h.renderer, redirectAdminProducts, MsgProductMissing)
	case errors.Is(err, service.ErrStorage):
		slog.Error("product write failed", "error", err)
		_ = h.eventService.LogStorageEvent(r.Context(), model.EventLevelError, "Product write failed", middleware.GetUserIDPtr(r), middleware.GetClientIP(r), r.URL.Path, map[string]any{"error": err.Error()})
		flashError(w, r, h.renderer, failURL, MsgStorageFailed)
	default:
		logAndInternalError(w, "product write failed", "error", err)
	}
}

func (h *ProductsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form ProductFormData) {
	title := "Add New Product"
	if form.IsEdit {
		title = "Edit Product"
	}
	renderPage(w, r, h.renderer, status, "admin/products/form", render.TemplateData{
		Title: title,
		Data:  form,
	})
}

func (h *ProductsHandler) logProductEvent(r *http.Request, level, message string, product store.Product) {
	_ = h.eventService.LogProductEvent(r.Context(), level, message, middleware.GetUserIDPtr(r), middleware.GetClientIP(r), r.URL.Path, map[string]any{
		"product_id":   product.ID,
		"product_name": product.Name,
		"image":        product.ImageKey(),
	})
}

func formValuesFromProduct(p store.Product) ProductFormValues {
	return ProductFormValues{
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Description: p.Description,
		Available:   p.Available,
	}
}
