// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olegiv/minishop-go/internal/util"
)

// Local stores objects as files below a root directory.
type Local struct {
	root      string
	urlPrefix string
}

// NewLocal creates the root directory if needed and returns a Local store.
// urlPrefix is prepended to keys by URL, e.g. "/storage".
func NewLocal(root, urlPrefix string) (*Local, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Local{
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Root returns the directory holding the stored files.
func (l *Local) Root() string {
	return l.root
}

// Put implements Store.
func (l *Local) Put(ctx context.Context, namespace, nameHint, ext string, data []byte) (string, error) {
	key, err := NewKey(namespace, nameHint, ext)
	if err != nil {
		return "", err
	}
	if err := l.PutKey(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// PutKey implements Store. The file is written to a temporary name in the
// target directory and renamed into place, so readers never see partial data.
func (l *Local) PutKey(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := l.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("moving %s into place: %w", key, err)
	}

	return nil
}

// Delete implements Store.
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExist
		}
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Exists implements Store.
func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	target, err := l.path(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return info.Mode().IsRegular(), nil
}

// List implements Store. Temporary upload files and subdirectories are
// skipped. Objects are sorted by key.
func (l *Local) List(ctx context.Context, namespace string) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ns, err := CleanKey(namespace)
	if err != nil {
		return nil, err
	}
	dir, err := l.path(ns)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", ns, err)
	}

	objects := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		objects = append(objects, Object{
			Key:     path.Join(ns, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// URL implements Store.
func (l *Local) URL(key string) string {
	cleaned, err := CleanKey(key)
	if err != nil {
		return ""
	}
	if l.urlPrefix == "/" {
		return "/" + cleaned
	}
	return l.urlPrefix + "/" + cleaned
}

// path maps a key to a file path inside root.
func (l *Local) path(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	full, err := util.SafeJoinPath(l.root, filepath.FromSlash(cleaned))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return full, nil
}
