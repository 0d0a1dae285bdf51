// Package cors sets the CORS response headers and answers preflight
// requests.
package cors

import (
	"net/http"
	"slices"
	"strings"

	"github.com/pakkasys/fluidquery/endpoint"
)

const (
	headerAllowOrigin      = "Access-Control-Allow-Origin"
	headerAllowMethods     = "Access-Control-Allow-Methods"
	headerAllowHeaders     = "Access-Control-Allow-Headers"
	headerAllowCredentials = "Access-Control-Allow-Credentials"
	headerVary             = "Vary"

	originHeader        = "Origin"
	requestMethodHeader = "Access-Control-Request-Method"
)

var (
	corsAllowHeaders = []string{"Content-Type"}
)

// Middleware creates a new CORS middleware. Origins are matched exactly
// unless the list contains "*". Preflight requests are answered with 204
// without calling the next handler.
//
//   - allowedOrigins: The list of allowed origins
//   - allowedMethods: The list of allowed methods
//   - allowedHeaders: The list of allowed headers
func Middleware(
	allowedOrigins []string,
	allowedMethods []string,
	allowedHeaders []string,
) endpoint.Middleware {
	isWildcardOrigin := slices.Contains(allowedOrigins, "*")
	methods := strings.Join(allowedMethods, ",")
	headers := strings.Join(slices.Concat(corsAllowHeaders, allowedHeaders), ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get(originHeader)
			if isWildcardOrigin {
				w.Header().Set(headerAllowOrigin, "*")
			} else if origin != "" && slices.Contains(allowedOrigins, origin) {
				w.Header().Set(headerAllowOrigin, origin)
				w.Header().Add(headerVary, originHeader)
				w.Header().Set(headerAllowCredentials, "true")
			}

			w.Header().Set(headerAllowMethods, methods)
			w.Header().Set(headerAllowHeaders, headers)

			if r.Method == http.MethodOptions &&
				r.Header.Get(requestMethodHeader) != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
