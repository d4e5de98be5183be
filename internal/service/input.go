// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/olegiv/minishop-go/internal/imaging"
	"github.com/olegiv/minishop-go/internal/model"
)

// MaxPrice is the largest price the catalog accepts (DECIMAL(10,2)).
var MaxPrice = decimal.RequireFromString("99999999.99")

// Field names used in validation messages and form templates.
const (
	FieldName        = "name"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldAvailable   = "available"
)

// ImageUpload is an uploaded file as received from the form.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductInput is the raw admin product form. Strings are trimmed before
// validation. Available and AvailableValue come from ParseCheckbox.
type ProductInput struct {
	Name           string `form:"name" validate:"required,max=255"`
	Price          string `form:"price" validate:"required,numeric"`
	Description    string `form:"description" validate:"required"`
	Available      bool   `form:"-"`
	AvailableValue string `form:"available" validate:"omitempty,boolean"`
	Image          *ImageUpload
}

// ValidatedImage is an accepted upload.
type ValidatedImage struct {
	Filename string
	Data     []byte
	Info     *imaging.Info
}

// ValidatedProduct holds the normalized values of a valid ProductInput.
type ValidatedProduct struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Available   bool
	Image       *ValidatedImage
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseCheckbox maps the submitted values of a checkbox field. The box is
// checked whenever the field is present, whatever its value; value is the
// last submitted value, left for validation against the boolean vocabulary.
func ParseCheckbox(values []string) (checked bool, value string) {
	if len(values) == 0 {
		return false, ""
	}
	return true, strings.TrimSpace(values[len(values)-1])
}

// ValidateProductInput checks in and returns the normalized product. On
// failure the error is a *ValidationError with one message per field.
func ValidateProductInput(in ProductInput) (*ValidatedProduct, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)

	verr := NewValidationError()

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validating product: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	}

	out := &ValidatedProduct{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
	}

	if !verr.Has(FieldPrice) {
		price, err := decimal.NewFromString(in.Price)
		switch {
		case err != nil:
			verr.Add(FieldPrice, "The price field must be a number.")
		case price.IsNegative():
			verr.Add(FieldPrice, "The price field must be at least 0.")
		case price.GreaterThan(MaxPrice):
			verr.Add(FieldPrice, "The price field must not be greater than "+MaxPrice.StringFixed(2)+".")
		default:
			out.Price = price.Round(2)
		}
	}

	if in.Image != nil {
		img, msg := validateImage(in.Image)
		if msg != "" {
			verr.Add(FieldImage, msg)
		} else {
			out.Image = img
		}
	}

	if !verr.Empty() {
		return nil, verr
	}
	return out, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", fe.Field())
	case "boolean":
		return fmt.Sprintf("The %s field must be true or false.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

// validateImage applies the image, mimes and max rules in that order and
// returns the first failing rule's message.
func validateImage(upload *ImageUpload) (*ValidatedImage, string) {
	if len(upload.Data) == 0 {
		return nil, "The image failed to upload."
	}

	mimeType := imaging.DetectMimeType(upload.Data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "The image field must be an image."
	}
	if !model.IsProductImageMimeType(mimeType) {
		return nil, "The image field must be a file of type: jpeg, png, jpg, gif."
	}

	info, err := imaging.Inspect(upload.Data, model.ProductImageMaxBytes)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return nil, imageTooLargeMessage()
	case errors.Is(err, imaging.ErrDimensions):
		return nil, "The image field has invalid image dimensions."
	case err != nil:
		return nil, "The image field must be an image."
	}

	return &ValidatedImage{
		Filename: upload.Filename,
		Data:     upload.Data,
		Info:     info,
	}, ""
}

func imageTooLargeMessage() string {
	return fmt.Sprintf("The image field must not be greater than %d kilobytes.", model.ProductImageMaxKB)
}

// NewImageTooLargeError returns the validation error for an image over the
// size limit, for callers that reject the upload before it reaches
// ValidateProductInput.
func NewImageTooLargeError() *ValidationError {
	verr := NewValidationError()
	verr.Add(FieldImage, imageTooLargeMessage())
	return verr
}
