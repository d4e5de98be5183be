// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/testutil"
)

func validInput() ProductInput {
	return ProductInput{
		Name:        "Test Mug",
		Price:       "9.99",
		Description: "A mug for testing.",
	}
}

func TestValidateProductInput_Valid(t *testing.T) {
	in := validInput()
	in.Name = "  Test Mug  "
	in.Price = " 9.999 "
	in.Available = true

	got, err := ValidateProductInput(in)
	if err != nil {
		t.Fatalf("ValidateProductInput: %v", err)
	}
	if got.Name != "Test Mug" {
		t.Errorf("Name = %q, want trimmed %q", got.Name, "Test Mug")
	}
	if got.Price.String() != "10" {
		t.Errorf("Price = %s, want 10 (rounded to cents)", got.Price)
	}
	if !got.Available {
		t.Error("Available = false, want true")
	}
	if got.Image != nil {
		t.Error("Image should be nil when none was uploaded")
	}
}

func TestValidateProductInput_Fields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ProductInput)
		field  string
		want   string
	}{
		{"missing name", func(in *ProductInput) { in.Name = "" }, FieldName, "The name field is required."},
		{"blank name", func(in *ProductInput) { in.Name = "   " }, FieldName, "The name field is required."},
		{"long name", func(in *ProductInput) { in.Name = strings.Repeat("a", 256) }, FieldName, "The name field must not be greater than 255 characters."},
		{"missing price", func(in *ProductInput) { in.Price = "" }, FieldPrice, "The price field is required."},
		{"text price", func(in *ProductInput) { in.Price = "abc" }, FieldPrice, "The price field must be a number."},
		{"negative price", func(in *ProductInput) { in.Price = "-1" }, FieldPrice, "The price field must be at least 0."},
		{"huge price", func(in *ProductInput) { in.Price = "100000000" }, FieldPrice, "The price field must not be greater than 99999999.99."},
		{"missing description", func(in *ProductInput) { in.Description = "" }, FieldDescription, "The description field is required."},
		{"empty upload", func(in *ProductInput) { in.Image = &ImageUpload{Filename: "a.jpg"} }, FieldImage, "The image failed to upload."},
		{"not an image", func(in *ProductInput) { in.Image = &ImageUpload{Filename: "a.txt", Data: []byte("hello")} }, FieldImage, "The image field must be an image."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			_, err := ValidateProductInput(in)
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if got := verr.Fields[tt.field]; got != tt.want {
				t.Errorf("Fields[%q] = %q, want %q", tt.field, got, tt.want)
			}
			if len(verr.Fields) != 1 {
				t.Errorf("got %d field errors, want 1: %v", len(verr.Fields), verr.Fields)
			}
		})
	}
}

func TestValidateProductInput_NameLengthCountsCharacters(t *testing.T) {
	in := validInput()
	in.Name = strings.Repeat("é", 255)

	if _, err := ValidateProductInput(in); err != nil {
		t.Errorf("255 multi-byte characters should be accepted: %v", err)
	}
}

func TestValidateProductInput_AllFieldsAtOnce(t *testing.T) {
	_, err := ValidateProductInput(ProductInput{})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	for _, field := range []string{FieldName, FieldPrice, FieldDescription} {
		if !verr.Has(field) {
			t.Errorf("missing violation for %s", field)
		}
	}
	if verr.Has(FieldImage) {
		t.Error("image is optional and should not be reported")
	}
	if !strings.Contains(verr.Error(), "description: The description field is required.") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestValidateProductInput_Images(t *testing.T) {
	for _, format := range []string{"jpeg", "png", "gif"} {
		t.Run(format, func(t *testing.T) {
			in := validInput()
			in.Image = &ImageUpload{Filename: "mug." + format, Data: testutil.ImageBytes(t, format, 20, 20)}

			got, err := ValidateProductInput(in)
			if err != nil {
				t.Fatalf("ValidateProductInput: %v", err)
			}
			if got.Image == nil || got.Image.Info.Width != 20 {
				t.Fatalf("Image = %+v, want 20px wide image", got.Image)
			}
		})
	}
}

func TestValidateProductInput_ImageRules(t *testing.T) {
	bmp := append([]byte("BM"), make([]byte, 64)...)
	oversized := append(testutil.ImageBytes(t, "png", 4, 4), bytes.Repeat([]byte{0}, model.ProductImageMaxBytes)...)
	corrupt := testutil.ImageBytes(t, "png", 8, 8)[:20]
	hugeCanvas := testutil.ImageBytes(t, "gif", 2, 2)
	hugeCanvas[6], hugeCanvas[7], hugeCanvas[8], hugeCanvas[9] = 0xFF, 0xFF, 0xFF, 0xFF

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"bmp is not an accepted type", bmp, "The image field must be a file of type: jpeg, png, jpg, gif."},
		{"larger than 2MB", oversized, "The image field must not be greater than 2048 kilobytes."},
		{"truncated png", corrupt, "The image field must be an image."},
		{"canvas over the pixel limit", hugeCanvas, "The image field has invalid image dimensions."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Image = &ImageUpload{Filename: "x", Data: tt.data}

			_, err := ValidateProductInput(in)
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if got := verr.Fields[FieldImage]; got != tt.want {
				t.Errorf("image error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCheckbox(t *testing.T) {
	tests := []struct {
		name        string
		values      []string
		wantChecked bool
		wantValue   string
	}{
		{"absent", nil, false, ""},
		{"one", []string{"1"}, true, "1"},
		{"zero", []string{"0"}, true, "0"},
		{"empty", []string{""}, true, ""},
		{"junk", []string{"garbage"}, true, "garbage"},
		{"last value wins", []string{"0", " 1 "}, true, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checked, value := ParseCheckbox(tt.values)
			if checked != tt.wantChecked || value != tt.wantValue {
				t.Errorf("ParseCheckbox(%v) = (%v, %q), want (%v, %q)",
					tt.values, checked, value, tt.wantChecked, tt.wantValue)
			}
		})
	}
}

func TestValidateProductInput_AvailableValue(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    bool
		wantErr string
	}{
		{"absent", nil, false, ""},
		{"one", []string{"1"}, true, ""},
		{"zero still present", []string{"0"}, true, ""},
		{"true", []string{"true"}, true, ""},
		{"junk", []string{"garbage"}, false, "The available field must be true or false."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Available, in.AvailableValue = ParseCheckbox(tt.values)

			got, err := ValidateProductInput(in)
			if tt.wantErr != "" {
				verr, ok := AsValidationError(err)
				if !ok {
					t.Fatalf("error = %v, want *ValidationError", err)
				}
				if msg := verr.Fields[FieldAvailable]; msg != tt.wantErr {
					t.Errorf("Fields[%q] = %q, want %q", FieldAvailable, msg, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateProductInput: %v", err)
			}
			if got.Available != tt.want {
				t.Errorf("Available = %v, want %v", got.Available, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	if !verr.Empty() {
		t.Error("new ValidationError should be empty")
	}

	verr.Add(FieldName, "first")
	verr.Add(FieldName, "second")
	if verr.Fields[FieldName] != "first" {
		t.Errorf("Add kept %q, want first message", verr.Fields[FieldName])
	}

	wrapped := errors.Join(errors.New("context"), verr)
	if got, ok := AsValidationError(wrapped); !ok || got != verr {
		t.Error("AsValidationError should unwrap joined errors")
	}
	if _, ok := AsValidationError(ErrProductNotFound); ok {
		t.Error("AsValidationError(ErrProductNotFound) should be false")
	}
}
