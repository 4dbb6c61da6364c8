package observe

import (
	"net/http"
	"strconv"
	"strings"
)

// Transport is an [http.RoundTripper] that counts Lavalink REST calls per
// node, operation and response status. Transport errors are recorded with
// status "error".
type Transport struct {
	// Base is the underlying transport. nil means [http.DefaultTransport].
	Base http.RoundTripper

	// Node labels the metrics with the node this transport talks to.
	Node string

	// Metrics receives the request counts.
	Metrics *Metrics
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.Metrics.RecordRestRequest(req.Context(), t.Node, Operation(req.Method, req.URL.Path), status)

	return resp, err
}

// Operation maps a Lavalink REST method and path to a stable operation label
// so metrics do not explode on per-guild path segments.
func Operation(method, path string) string {
	switch {
	case strings.HasSuffix(path, "/loadtracks"):
		return "loadtracks"
	case strings.Contains(path, "/players/"):
		switch method {
		case http.MethodPatch:
			return "updatePlayer"
		case http.MethodDelete:
			return "destroyPlayer"
		default:
			return "getPlayer"
		}
	default:
		return strings.ToLower(method)
	}
}
