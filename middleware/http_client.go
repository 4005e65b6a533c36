package middleware

import (
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// GetXRayHTTPClient returns an HTTP client instrumented with X-Ray.
// Use this client for outbound calls to the runtime sidecar so they show
// up as subsegments of the request trace.
func GetXRayHTTPClient() *http.Client {
	return xray.Client(&http.Client{})
}

// GetCustomXRayHTTPClient instruments a caller-supplied HTTP client
// (e.g. one with custom timeouts or transport) with X-Ray.
func GetCustomXRayHTTPClient(client *http.Client) *http.Client {
	return xray.Client(client)
}
