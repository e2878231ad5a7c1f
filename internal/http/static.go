package http

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
)

var (
	// Files embedded within the go binary
	//
	//go:embed static
	embedded embed.FS

	// AssetsFS serves static assets with cache-busting paths.
	AssetsFS = NewCacheBuster(embedded)

	_ http.FileSystem = (*CacheBuster)(nil)

	// regexp for a hex-formatted sha256 hash sum
	sha256re = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// AddStaticHandler adds a handler to router serving static assets (CSS, etc)
// from within the go binary.
func AddStaticHandler(r *mux.Router) {
	r = r.NewRoute().Subrouter()

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Instruct browser to cache static content for a very long time (1
			// year), and rely on the cache buster to insert a hash to each
			// requested URL, ensuring any content change invalidates the cache.
			w.Header().Set("Cache-Control", "max-age=31536000")
			next.ServeHTTP(w, r)
		})
	})
	r.PathPrefix("/static/").Handler(http.FileServer(AssetsFS)).Methods("GET")
}

// CacheBuster provides a cache-busting filesystem wrapper, mapping paths
// containing a sha256 hash to paths without the hash in the wrapped
// filesystem, e.g.
//
// /static/css/console.<hash>.css -> /static/css/console.css
type CacheBuster struct {
	fs.FS

	// hashed paths keyed by original path
	paths *internal.SafeMap[string, string]
}

func NewCacheBuster(fsys fs.FS) *CacheBuster {
	return &CacheBuster{FS: fsys, paths: internal.NewSafeMap[string, string]()}
}

// Open strips the hash from the name before opening it in the wrapped
// filesystem.
func (cb *CacheBuster) Open(fname string) (http.File, error) {
	var partsSansHash []string
	for p := range strings.SplitSeq(fname, ".") {
		if !sha256re.MatchString(p) {
			partsSansHash = append(partsSansHash, p)
		}
	}
	return http.FS(cb.FS).Open(strings.Join(partsSansHash, "."))
}

// Path inserts a hash of the named file into its filename, before the filename
// extension: <path>.<ext> -> <path>.<hash>.<ext>. Hashes are computed once
// and then cached.
func (cb *CacheBuster) Path(fname string) (string, error) {
	if hashed, ok := cb.paths.Get(fname); ok {
		return hashed, nil
	}

	// fs.FS expects paths without a leading slash
	f, err := cb.FS.Open(strings.TrimPrefix(fname, "/"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	ext := filepath.Ext(fname)
	hashed := fmt.Sprintf("%s.%x%s", strings.TrimSuffix(fname, ext), h.Sum(nil), ext)
	cb.paths.Set(fname, hashed)
	return hashed, nil
}
