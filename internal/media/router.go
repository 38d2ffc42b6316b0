package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/models"
)

const (
	// DiskUsageTTL bounds how stale a cached DiskUsage result may be.
	DiskUsageTTL = 30 * time.Second

	maxPlaceAttempts = 64
	maxNameLength    = 180
	usageKey         = "root"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = fmt.Errorf("file exceeds upload limit: %w", apperr.ErrValidation)

// Placement describes a file that was written to disk.
type Placement struct {
	Kind      models.Kind
	Path      string
	FileName  string
	Extension string
	MimeType  string
	Size      int64
}

// Router owns the storage root.
type Router struct {
	root     string
	maxBytes int64
	now      func() time.Time
	usage    *lru.LRU[string, int64]
}

// Option customizes a Router.
type Option func(*Router)

// WithMaxBytes caps the size of a single placed file. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(r *Router) { r.maxBytes = n }
}

// WithClock overrides the time source used to build file names.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// NewRouter creates a router rooted at root. Directories are created lazily.
func NewRouter(root string, opts ...Option) *Router {
	r := &Router{
		root:  filepath.Clean(root),
		now:   time.Now,
		usage: lru.NewLRU[string, int64](1, nil, DiskUsageTTL),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the storage root directory.
func (r *Router) Root() string {
	return r.root
}

// Place streams src into a new file named {millis}_{sanitized name} inside
// the directory for the MIME type's kind. The file is created exclusively;
// on a name collision the next millisecond is tried. If the copy fails or
// ctx is cancelled the partial file is removed.
func (r *Router) Place(ctx context.Context, src io.Reader, mimeType, originalName string) (Placement, error) {
	kind := Classify(mimeType)
	dir := filepath.Join(r.root, Directory(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Placement{}, fmt.Errorf("create %s: %w: %w", dir, apperr.ErrStorage, err)
	}

	base := SanitizeName(originalName)
	f, name, err := r.create(dir, base)
	if err != nil {
		return Placement{}, err
	}
	path := filepath.Join(dir, name)

	size, err := r.copy(ctx, f, src)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w: %w", path, apperr.ErrStorage, closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return Placement{}, err
	}

	r.usage.Purge()
	return Placement{
		Kind:      kind,
		Path:      path,
		FileName:  name,
		Extension: Extension(base),
		MimeType:  normalizeMIME(mimeType),
		Size:      size,
	}, nil
}

func (r *Router) create(dir, base string) (*os.File, string, error) {
	millis := r.now().UnixMilli()
	for attempt := int64(0); attempt < maxPlaceAttempts; attempt++ {
		name := strconv.FormatInt(millis+attempt, 10) + "_" + base
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create file: %w: %w", apperr.ErrStorage, err)
		}
	}
	return nil, "", fmt.Errorf("no free name for %q after %d attempts: %w", base, maxPlaceAttempts, apperr.ErrStorage)
}

func (r *Router) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	reader := io.Reader(&ctxReader{ctx: ctx, r: src})
	if r.maxBytes > 0 {
		reader = io.LimitReader(reader, r.maxBytes+1)
	}
	n, err := io.Copy(dst, reader)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
		return n, fmt.Errorf("write file: %w: %w", apperr.ErrStorage, err)
	}
	if r.maxBytes > 0 && n > r.maxBytes {
		return n, ErrTooLarge
	}
	return n, nil
}

// Open opens a stored file for reading. Paths outside the root are treated
// as missing.
func (r *Router) Open(path string) (*os.File, error) {
	if !r.contains(path) {
		return nil, fmt.Errorf("file %w", apperr.ErrNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("open file: %w: %w", apperr.ErrStorage, err)
	}
	return f, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (r *Router) Remove(path string) error {
	if !r.contains(path) {
		return fmt.Errorf("refusing to remove %q outside storage root: %w", path, apperr.ErrStorage)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w: %w", apperr.ErrStorage, err)
	}
	r.usage.Purge()
	return nil
}

// DiskUsage sums the sizes of regular files under the root. Unreadable
// entries are skipped. Results are cached for DiskUsageTTL.
func (r *Router) DiskUsage(ctx context.Context) (int64, error) {
	if total, ok := r.usage.Get(usageKey); ok {
		return total, nil
	}

	var total int64
	err := filepath.WalkDir(r.root, func(_ string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.usage.Add(usageKey, total)
	return total, nil
}

func (r *Router) contains(path string) bool {
	rel, err := filepath.Rel(r.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName reduces an uploaded file name to a safe base name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		name = "file"
	}
	if len(name) > maxNameLength {
		ext := filepath.Ext(name)
		if len(ext) >= maxNameLength {
			ext = ""
		}
		name = name[:maxNameLength-len(ext)] + ext
	}
	return name
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
