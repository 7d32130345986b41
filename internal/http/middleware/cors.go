package middleware

import (
	"net/http"
	"strings"
)

// CORS provides an allowlist-based CORS middleware for the widget and the
// admin console. "*" echoes any Origin; "https://*.example.com" allows every
// subdomain of example.com over https.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allow := map[string]struct{}{}
	var wildcards []wildcardOrigin
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAny = true
			continue
		}
		if scheme, rest, ok := strings.Cut(origin, "://*."); ok {
			wildcards = append(wildcards, wildcardOrigin{prefix: scheme + "://", suffix: "." + rest})
			continue
		}
		allow[origin] = struct{}{}
	}

	allowedHeaders := "Authorization, Content-Type, X-Session-Id"
	allowedMethods := "GET, POST, PUT, PATCH, DELETE, OPTIONS"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" && (allowAny || isAllowedOrigin(allow, wildcards, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			// Handle preflight requests.
			if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type wildcardOrigin struct {
	prefix string
	suffix string
}

func isAllowedOrigin(allow map[string]struct{}, wildcards []wildcardOrigin, origin string) bool {
	if _, ok := allow[origin]; ok {
		return true
	}
	for _, w := range wildcards {
		if strings.HasPrefix(origin, w.prefix) && strings.HasSuffix(origin, w.suffix) && len(origin) > len(w.prefix)+len(w.suffix) {
			return true
		}
	}
	return false
}
