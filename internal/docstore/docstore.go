// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
Package docstore stores document payloads on the filesystem, addressed
by content hash.

Layout: <root>/<first two hex chars>/<full sha256 hex>. Content
addressing makes writes idempotent (re-uploading the same bytes is a
no-op) and lets multiple document rows share one blob, which is why
deleting a document row never deletes the blob.

Writes stream through a temp file in the same directory and finish with
an atomic rename, so a crash mid-upload leaves no partial blob at a
final address.
*/
package docstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/logging"
)

var (
	// ErrTooLarge is returned when an upload exceeds the size cap.
	ErrTooLarge = errors.New("document exceeds maximum size")

	// ErrNotFound is returned when no blob exists for the checksum.
	ErrNotFound = errors.New("document payload not found")

	// ErrBadChecksum is returned for malformed checksum addresses.
	ErrBadChecksum = errors.New("invalid document checksum")
)

// Store is a content-addressed blob store rooted at one directory.
type Store struct {
	root     string
	maxBytes int64
}

// New creates the store, ensuring the root directory exists.
func New(cfg *config.StorageConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DocumentsDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	logging.Info().Str("dir", cfg.DocumentsDir).Msg("Document store initialized")
	return &Store{root: cfg.DocumentsDir, maxBytes: cfg.MaxUploadBytes}, nil
}

// Save streams the payload into the store and returns its sha256 hex
// checksum and size. Returns ErrTooLarge when the payload exceeds the
// cap; nothing is left behind in that case.
func (s *Store) Save(r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after rename

	hasher := sha256.New()
	// Read one byte past the cap so an exactly-at-cap payload passes.
	limited := io.LimitReader(r, s.maxBytes+1)
	size, err := io.Copy(io.MultiWriter(tmp, hasher), limited)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to write payload: %w", err)
	}
	if size > s.maxBytes {
		return "", 0, ErrTooLarge
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	path, err := s.blobPath(checksum)
	if err != nil {
		return "", 0, err
	}

	if _, err := os.Stat(path); err == nil {
		// Identical content already stored.
		return checksum, size, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", 0, fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", 0, fmt.Errorf("failed to store payload: %w", err)
	}
	return checksum, size, nil
}

// Open returns a reader over the blob for the checksum.
// The caller closes it. Supports seeking for HTTP range serving.
func (s *Store) Open(checksum string) (io.ReadSeekCloser, error) {
	path, err := s.blobPath(checksum)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}
	return f, nil
}

// Exists reports whether a blob is stored for the checksum.
func (s *Store) Exists(checksum string) (bool, error) {
	path, err := s.blobPath(checksum)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat payload: %w", err)
}

// blobPath maps a checksum to its sharded path, rejecting anything that
// is not 64 hex characters so a crafted checksum can never traverse out
// of the root.
func (s *Store) blobPath(checksum string) (string, error) {
	if len(checksum) != sha256.Size*2 {
		return "", ErrBadChecksum
	}
	if _, err := hex.DecodeString(checksum); err != nil {
		return "", ErrBadChecksum
	}
	return filepath.Join(s.root, checksum[:2], checksum), nil
}
