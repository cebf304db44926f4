package redirect

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// DefaultPrefix is the path prefix of post pages.
const DefaultPrefix = "/posts/"

// Middleware applies policy to GET and HEAD requests under prefix. Id paths
// get a 301 to prefix+slug with the query string kept; unknown ids get 404
// and an unavailable index gets 503, both with a JSON error body. Every
// other request reaches next untouched.
func Middleware(policy *Policy, prefix string) func(http.Handler) http.Handler {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			param, ok := strings.CutPrefix(r.URL.Path, prefix)
			if !ok || param == "" || strings.Contains(param, "/") {
				next.ServeHTTP(w, r)
				return
			}

			d := policy.Route(r.Context(), param)
			switch d.Outcome {
			case Redirect:
				target := prefix + url.PathEscape(d.Slug)
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
			case NotFound:
				writeError(w, http.StatusNotFound, "post not found")
			case Unavailable:
				writeError(w, http.StatusServiceUnavailable, "post index unavailable")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
