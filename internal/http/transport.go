package http

import (
	"crypto/tls"
	"net/http"
)

// Transport returns the http transport for clients to use, optionally
// skipping verification of server certificates.
func Transport(skipTLSVerification bool) http.RoundTripper {
	if !skipTLSVerification {
		return http.DefaultTransport
	}
	clone := http.DefaultTransport.(*http.Transport).Clone()
	clone.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	return clone
}
