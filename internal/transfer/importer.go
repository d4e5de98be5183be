// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/minishop-go/internal/auth"
	"github.com/olegiv/minishop-go/internal/imaging"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/storage"
	"github.com/olegiv/minishop-go/internal/store"
)

// Result summarizes an import run.
type Result struct {
	UsersImported    int
	ProductsImported int
	ProductsSkipped  int
	ImagesCopied     int
	ImagesMissing    int
	Errors           []string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Importer copies legacy rows into the store. Users are matched by email and
// overwritten; products are matched by name and skipped when present.
type Importer struct {
	db       *sql.DB
	files    storage.Store
	imageDir string
	logger   *slog.Logger
	now      func() time.Time
}

// NewImporter creates a new Importer. imageDir is the legacy public disk
// holding the files named by products.image_path; empty skips images.
func NewImporter(db *sql.DB, files storage.Store, imageDir string, logger *slog.Logger) *Importer {
	return &Importer{
		db:       db,
		files:    files,
		imageDir: imageDir,
		logger:   logger,
		now:      time.Now,
	}
}

// Import reads everything from src and writes it in a single transaction.
// Rows that fail validation are reported in Result.Errors and skipped.
// Image files are copied before the transaction commits; a rollback leaves
// them for the orphan sweep.
func (i *Importer) Import(ctx context.Context, src Source) (*Result, error) {
	users, err := src.Users(ctx)
	if err != nil {
		return nil, err
	}
	products, err := src.Products(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := store.New(i.db).WithTx(tx)
	result := &Result{}

	for _, u := range users {
		if err := i.importUser(ctx, queries, u); err != nil {
			if errors.Is(err, errSkip) {
				result.addError("user %d: %v", u.ID, err)
				continue
			}
			return nil, fmt.Errorf("importing user %d: %w", u.ID, err)
		}
		result.UsersImported++
	}

	for _, p := range products {
		imported, err := i.importProduct(ctx, queries, p, result)
		if err != nil {
			if errors.Is(err, errSkip) {
				result.addError("product %d: %v", p.ID, err)
				result.ProductsSkipped++
				continue
			}
			return nil, fmt.Errorf("importing product %d: %w", p.ID, err)
		}
		if imported {
			result.ProductsImported++
		} else {
			result.ProductsSkipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	i.logger.Info("legacy import finished",
		"users", result.UsersImported,
		"products", result.ProductsImported,
		"skipped", result.ProductsSkipped,
		"images", result.ImagesCopied,
		"images_missing", result.ImagesMissing,
		"errors", len(result.Errors),
	)
	return result, nil
}

// errSkip marks a row that cannot be imported.
var errSkip = errors.New("skipped")

func skip(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errSkip, fmt.Sprintf(format, args...))
}

func (i *Importer) importUser(ctx context.Context, queries *store.Queries, u LegacyUser) error {
	email := service.NormalizeEmail(u.Email)
	if email == "" {
		return skip("empty email")
	}
	if strings.TrimSpace(u.Name) == "" {
		return skip("empty name for %s", email)
	}
	// Legacy accounts use bcrypt; it is verified and rehashed on the next login.
	if !auth.IsBcryptHash(u.PasswordHash) && !strings.HasPrefix(u.PasswordHash, "$argon2id$") {
		return skip("unsupported password hash for %s", email)
	}

	role, err := model.ParseRole(u.Role)
	if err != nil {
		i.logger.Warn("unknown legacy role, importing as customer", "email", email, "role", u.Role)
		role = model.RoleCustomer
	}

	now := i.now()
	_, err = queries.UpsertUserByEmail(ctx, store.UpsertUserByEmailParams{
		Name:            strings.TrimSpace(u.Name),
		Email:           email,
		PasswordHash:    u.PasswordHash,
		Role:            role,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       timeOr(u.CreatedAt, now),
		UpdatedAt:       timeOr(u.UpdatedAt, now),
	})
	return err
}

// importProduct returns false when a product with the same name exists.
func (i *Importer) importProduct(ctx context.Context, queries *store.Queries, p LegacyProduct, result *Result) (bool, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return false, skip("empty name")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return false, skip("invalid price %q", p.Price)
	}
	if price.IsNegative() {
		return false, skip("negative price %s", price)
	}

	_, err = queries.GetProductByName(ctx, name)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	var imagePath sql.NullString
	if p.ImagePath.Valid && p.ImagePath.String != "" {
		key, err := i.copyImage(ctx, p.ImagePath.String)
		if err != nil {
			result.ImagesMissing++
			result.addError("product %d image %q: %v", p.ID, p.ImagePath.String, err)
		} else if key != "" {
			imagePath = sql.NullString{String: key, Valid: true}
			result.ImagesCopied++
		}
	}

	now := i.now()
	_, err = queries.CreateProduct(ctx, store.CreateProductParams{
		Name:        name,
		Price:       price.Round(2),
		Description: p.Description.String,
		ImagePath:   imagePath,
		Available:   p.Available,
		CreatedAt:   timeOr(p.CreatedAt, now),
		UpdatedAt:   timeOr(p.UpdatedAt, now),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// copyImage copies a legacy image into the store under the same key. It
// returns an empty key when no image directory is configured.
func (i *Importer) copyImage(ctx context.Context, legacyPath string) (string, error) {
	if i.imageDir == "" {
		return "", nil
	}

	key, err := storage.CleanKey(legacyPath)
	if err != nil {
		return "", err
	}
	if path.Dir(key) != model.ProductImageNamespace {
		return "", fmt.Errorf("outside the %s directory", model.ProductImageNamespace)
	}

	data, err := os.ReadFile(filepath.Join(i.imageDir, filepath.FromSlash(key)))
	if err != nil {
		return "", err
	}
	if len(data) > model.ProductImageMaxBytes {
		return "", fmt.Errorf("larger than %d KB", model.ProductImageMaxKB)
	}
	if mimeType := imaging.DetectMimeType(data); !model.IsProductImageMimeType(mimeType) {
		return "", fmt.Errorf("unsupported type %s", mimeType)
	}

	if err := i.files.PutKey(ctx, key, data); err != nil {
		return "", fmt.Errorf("storing: %w", err)
	}
	return key, nil
}
