package reqhandler

import (
	"net"
	"net/http"
	"strings"
)

// RequestIPAddress returns the client IP address of the request, preferring
// the first address of the X-Forwarded-For header.
func RequestIPAddress(request *http.Request) string {
	forwarded := request.Header.Get(headerXForwardedFor)
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return ip
}
