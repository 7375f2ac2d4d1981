package middleware

import (
	"net/http"
	"strings"
)

// HostRedirect answers HEAD probes with an empty 200 and sends requests that
// arrive on the legacy host alias to the same path on canonicalDomain.
// Either part is skipped when its setting is empty.
func HostRedirect(canonicalDomain, legacyPattern string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusOK)
				return
			}

			if canonicalDomain != "" && legacyPattern != "" && strings.Contains(r.Host, legacyPattern) {
				target := requestScheme(r) + "://" + canonicalDomain + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
