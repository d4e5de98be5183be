// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage keeps product images on a public disk addressed by
// relative keys such as "products/headphones-1f0c....jpg".
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/minishop-go/internal/util"
)

// ErrNotExist is returned when a key does not refer to a stored object.
var ErrNotExist = errors.New("storage: object does not exist")

// ErrInvalidKey is returned for keys that are empty, absolute or escape the
// storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// maxNameHintLength bounds the slug part of generated keys.
const maxNameHintLength = 60

// Object describes a stored file.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store persists binary objects under relative keys.
type Store interface {
	// Put stores data under a new unique key in namespace and returns the key.
	Put(ctx context.Context, namespace, nameHint, ext string, data []byte) (string, error)
	// PutKey stores data under an exact key, replacing any existing object.
	PutKey(ctx context.Context, key string, data []byte) error
	// Delete removes the object. It returns ErrNotExist when there is none.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the objects stored directly in namespace.
	List(ctx context.Context, namespace string) ([]Object, error)
	// URL returns the public URL for key.
	URL(key string) string
}

// NewKey builds a unique key of the form "<namespace>/<slug>-<uuid><ext>".
func NewKey(namespace, nameHint, ext string) (string, error) {
	namespace = strings.Trim(namespace, "/")
	if namespace == "" || util.ContainsPathTraversal(namespace) {
		return "", fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}

	slug := util.SlugifyMax(strings.TrimSuffix(nameHint, path.Ext(nameHint)), maxNameHintLength)
	if slug == "" {
		slug = "file"
	}

	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\`) {
		return "", fmt.Errorf("%w: extension %q", ErrInvalidKey, ext)
	}

	return namespace + "/" + slug + "-" + uuid.NewString() + ext, nil
}

// CleanKey validates key and returns it in canonical slash-separated form.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
