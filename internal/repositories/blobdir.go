package repositories

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// BlobDir is a single flat directory holding uploaded file bytes, one entry
// per sanitized filename. Blobs are addressed two ways: writes and deletes go
// through the absolute path recorded in metadata, reads resolve root+name.
type BlobDir struct {
	root string
}

var Blobs *BlobDir

// InitBlobDir creates the storage root if missing, probes it for writability
// and installs the package-wide BlobDir. A root we cannot write into is a
// misconfiguration, so the caller is expected to abort on error.
func InitBlobDir(root string) error {
	b, err := NewBlobDir(root)
	if err != nil {
		return err
	}
	Blobs = b
	log.Println("Storage root ready at", b.root)
	return nil
}

func NewBlobDir(root string) (*BlobDir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	// Probe: the directory must actually accept writes, not just exist.
	probe := filepath.Join(abs, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return nil, fmt.Errorf("storage root is not writable: %w", err)
	}
	_ = os.Remove(probe)

	return &BlobDir{root: abs}, nil
}

func (b *BlobDir) Root() string {
	return b.root
}

// Save writes src to root/name, silently overwriting any existing blob with
// that name, and reports the absolute path and the byte count actually written.
func (b *BlobDir) Save(name string, src io.Reader) (string, int64, error) {
	dst := filepath.Join(b.root, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("creating blob %s: %w", name, err)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("writing blob %s: %w", name, err)
	}
	return dst, n, nil
}

// Open resolves a blob by name under the root. The name must be a bare
// sanitized filename; anything that still looks like a path is treated as
// absent rather than resolved.
func (b *BlobDir) Open(name string) (*os.File, error) {
	if name == "" || name != SanitizeFilename(name) {
		return nil, fs.ErrNotExist
	}
	return os.Open(filepath.Join(b.root, name))
}

// Remove deletes the blob at the given absolute path. A missing blob surfaces
// as fs.ErrNotExist so callers can tell "already gone" from a real IO failure;
// either way the blob was not removed by this call.
func (b *BlobDir) Remove(path string) error {
	return os.Remove(path)
}

// SanitizeFilename reduces an uploaded name to a bare filename safe to join
// under the storage root: path separators and traversal sequences are
// stripped, control bytes dropped. Returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.ReplaceAll(name, "..", "")

	var sb strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}
	name = strings.Trim(sb.String(), " .")
	if name == "/" {
		return ""
	}
	return name
}
