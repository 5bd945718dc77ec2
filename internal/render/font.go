package render

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Resolver resolves a font name to a sized face. The compositor holds
// its own last-resort built-in face, so resolver failures never abort
// rendering.
type Resolver interface {
	Resolve(name string, size float64) (font.Face, error)
}

// Compile-time interface compliance check.
var _ Resolver = (*FileResolver)(nil)

// fontExts are the font file extensions the resolver loads.
var fontExts = map[string]bool{
	".ttf": true,
	".otf": true,
}

// FileResolver loads OpenType fonts from disk. A name that is a file
// path is loaded directly; otherwise the search directories are
// walked for a file whose base name matches.
type FileResolver struct {
	dirs     []string
	readFile func(string) ([]byte, error)
}

// FileResolverOption configures a FileResolver.
type FileResolverOption func(*FileResolver)

// WithFontDirs prepends extra search directories.
func WithFontDirs(dirs ...string) FileResolverOption {
	return func(r *FileResolver) {
		r.dirs = append(dirs, r.dirs...)
	}
}

// WithReadFile sets the file reader (for testing).
func WithReadFile(fn func(string) ([]byte, error)) FileResolverOption {
	return func(r *FileResolver) {
		r.readFile = fn
	}
}

// NewFileResolver creates a FileResolver with the platform's
// conventional font directories.
func NewFileResolver(opts ...FileResolverOption) *FileResolver {
	r := &FileResolver{
		dirs:     systemFontDirs(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// systemFontDirs returns the conventional font locations per platform.
func systemFontDirs() []string {
	var dirs []string
	switch runtime.GOOS {
	case "darwin":
		dirs = []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	case "windows":
		dirs = []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	default:
		dirs = []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".fonts"))
		}
	}
	return dirs
}

// Resolve loads the named font at the given size.
func (r *FileResolver) Resolve(name string, size float64) (font.Face, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty font name", ErrFontNotFound)
	}
	if size <= 0 {
		size = 12
	}

	path := name
	if !fontExts[strings.ToLower(filepath.Ext(name))] {
		found, err := r.find(name)
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := r.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontNotFound, path, err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontNotFound, path, err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontNotFound, path, err)
	}
	return face, nil
}

// find walks the search directories for a font file whose base name
// matches name (case-insensitive, extension ignored).
func (r *FileResolver) find(name string) (string, error) {
	want := strings.ToLower(name)
	for _, dir := range r.dirs {
		var found string
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			base := strings.ToLower(d.Name())
			ext := filepath.Ext(base)
			if !fontExts[ext] {
				return nil
			}
			if strings.TrimSuffix(base, ext) == want {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrFontNotFound, name)
}
