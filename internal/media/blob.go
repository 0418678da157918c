package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	"github.com/google/uuid"
)

// BlobStore abstracts where uploaded bytes land so the ingest service does
// not care about the storage backend.
type BlobStore interface {
	Save(ctx context.Context, kind enums.MediaKind, fileName string, r io.Reader) (ref string, size int64, err error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Remove(ctx context.Context, ref string) error
}

var subdirByKind = map[enums.MediaKind]string{
	enums.MediaKindImage: "images",
	enums.MediaKindVideo: "videos",
	enums.MediaKindOther: "others",
}

// DiskStore writes uploads under a root directory, one subdirectory per kind.
type DiskStore struct {
	root string
	now  func() time.Time
}

// NewDiskStore creates the per-kind subdirectories eagerly so a misconfigured
// upload path fails at startup instead of on the first upload.
func NewDiskStore(root string) (*DiskStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	for _, sub := range subdirByKind {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir upload dir %q: %w", sub, err)
		}
	}
	return &DiskStore{root: root, now: time.Now}, nil
}

// Save streams the reader to disk and returns a storage ref relative to the
// root. The ref embeds a fresh UUID so two uploads in the same millisecond
// never collide.
func (d *DiskStore) Save(ctx context.Context, kind enums.MediaKind, fileName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	sub, ok := subdirByKind[kind]
	if !ok {
		sub = subdirByKind[enums.MediaKindOther]
	}

	name := fmt.Sprintf("%d-%s%s", d.now().UnixMilli(), uuid.NewString(), sanitizeExt(fileName))
	ref := path.Join(sub, name)
	full := filepath.Join(d.root, sub, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", 0, fmt.Errorf("write upload file: %w", err)
	}
	return ref, written, nil
}

// Open returns the stored bytes for a ref produced by Save.
func (d *DiskStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.resolve(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes the stored file. Missing files are not an error.
func (d *DiskStore) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := d.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve rejects refs that escape the upload root.
func (d *DiskStore) resolve(ref string) (string, error) {
	clean := path.Clean(strings.TrimSpace(ref))
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage ref %q", ref)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

// sanitizeExt keeps only a safe file extension from the client-supplied name.
func sanitizeExt(fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.TrimSpace(fileName))))
	if ext == "" || len(ext) > 12 {
		return ""
	}
	for _, r := range ext[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}
	return ext
}
