// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path and the public catalog.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixCreate is the suffix for "create" forms.
	RouteSuffixCreate = "/create"
	// RouteSuffixEdit is the suffix for "edit" forms.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for HTML form deletes.
	RouteSuffixDelete = "/delete"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteHealth is the health check route.
	RouteHealth = "/health"

	// RouteProducts is the public product detail prefix.
	RouteProducts = "/products"
	// RouteAdmin is the admin area prefix.
	RouteAdmin = "/admin"
	// RouteAdminProducts is the admin product routes prefix, relative to RouteAdmin.
	RouteAdminProducts = "/products"
	// RouteAdminEvents is the admin event log route, relative to RouteAdmin.
	RouteAdminEvents = "/events"

	// RouteProductsID is the public product detail pattern.
	RouteProductsID = RouteProducts + RouteParamID
	// RouteAdminProductsID is the admin product pattern.
	RouteAdminProductsID = RouteAdminProducts + RouteParamID
)

const (
	redirectAdminProducts       = RouteAdmin + RouteAdminProducts
	redirectAdminProductsCreate = redirectAdminProducts + RouteSuffixCreate
	redirectAdminProductsID     = redirectAdminProducts + "/%d"
	redirectAdminProductsIDEdit = redirectAdminProductsID + RouteSuffixEdit
	redirectAdminEvents         = RouteAdmin + RouteAdminEvents
	redirectLogin               = RouteLogin
	redirectRegister            = RouteRegister
)

// Flash messages shown after admin product actions.
const (
	MsgProductCreated = "Product created successfully!"
	MsgProductUpdated = "Product updated successfully!"
	MsgProductDeleted = "Product deleted successfully!"
	MsgProductMissing = "Product not found."
	MsgStorageFailed  = "The image could not be saved. Please try again."
	MsgInvalidForm    = "Invalid form data."
)

// Utility constants shared by the handlers.
const (
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
	// MaxProductFormBytes caps the admin product form body, image included.
	MaxProductFormBytes = 10 << 20
	// multipartMemory is the part of a multipart form kept in memory.
	multipartMemory = 4 << 20
)
