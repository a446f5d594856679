// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package docstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docket-hq/docket/internal/config"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	store, err := New(&config.StorageConfig{
		DocumentsDir:   t.TempDir(),
		MaxUploadBytes: maxBytes,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t, 1024)
	payload := []byte("signed retainer agreement")

	checksum, size, err := store.Save(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", size, len(payload))
	}
	want := sha256.Sum256(payload)
	if checksum != hex.EncodeToString(want[:]) {
		t.Errorf("checksum = %q, want sha256 of payload", checksum)
	}

	blob, err := store.Open(checksum)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer blob.Close()
	got, err := io.ReadAll(blob)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("blob = %q, want %q", got, payload)
	}
}

// Saving the same bytes twice is a no-op with the same address.
func TestSaveIsIdempotent(t *testing.T) {
	store := newTestStore(t, 1024)
	payload := []byte("identical content")

	first, _, err := store.Save(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, _, err := store.Save(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if first != second {
		t.Errorf("checksums differ: %q vs %q", first, second)
	}
}

func TestSaveTooLarge(t *testing.T) {
	store := newTestStore(t, 8)

	// Exactly at the cap passes.
	if _, size, err := store.Save(strings.NewReader("12345678")); err != nil || size != 8 {
		t.Errorf("Save(at cap) = %d, %v; want 8, nil", size, err)
	}
	// One byte over fails, and leaves no stray files behind.
	if _, _, err := store.Save(strings.NewReader("123456789")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Save(over cap) error = %v, want ErrTooLarge", err)
	}

	err := filepath.WalkDir(store.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), ".upload-") {
			t.Errorf("leftover temp file %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk store root: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	store := newTestStore(t, 1024)

	missing := sha256.Sum256([]byte("never stored"))
	if _, err := store.Open(hex.EncodeToString(missing[:])); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
}

func TestExists(t *testing.T) {
	store := newTestStore(t, 1024)

	checksum, _, err := store.Save(strings.NewReader("stored"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if ok, err := store.Exists(checksum); err != nil || !ok {
		t.Errorf("Exists(stored) = %v, %v; want true", ok, err)
	}
	other := sha256.Sum256([]byte("absent"))
	if ok, err := store.Exists(hex.EncodeToString(other[:])); err != nil || ok {
		t.Errorf("Exists(absent) = %v, %v; want false", ok, err)
	}
}

// Malformed checksums are rejected before any path is built, so a
// crafted address can never escape the root.
func TestBadChecksumRejected(t *testing.T) {
	store := newTestStore(t, 1024)

	for _, checksum := range []string{
		"",
		"abc",
		"../../etc/passwd",
		strings.Repeat("z", 64), // right length, not hex
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
	} {
		if _, err := store.Open(checksum); !errors.Is(err, ErrBadChecksum) {
			t.Errorf("Open(%q) error = %v, want ErrBadChecksum", checksum, err)
		}
		if _, err := store.Exists(checksum); !errors.Is(err, ErrBadChecksum) {
			t.Errorf("Exists(%q) error = %v, want ErrBadChecksum", checksum, err)
		}
	}
}
