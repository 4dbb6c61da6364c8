package lavalink

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoNodes is returned when a pool has no nodes left to hand out.
	ErrNoNodes = errors.New("lavalink: no nodes available")

	// ErrNotReady is returned by REST calls made before the node confirmed
	// its websocket session.
	ErrNotReady = errors.New("lavalink: node not ready")
)

// RestError is the error document a node returns for failed REST calls.
type RestError struct {
	Timestamp int64  `json:"timestamp"`
	Status    int    `json:"status"`
	ErrorText string `json:"error"`
	Trace     string `json:"trace,omitempty"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func (e *RestError) Error() string {
	return fmt.Sprintf("lavalink: %d %s on %s: %s", e.Status, e.ErrorText, e.Path, e.Message)
}

// IsNotFound reports whether err is a node 404. The REST API answers 404 for
// players that do not exist on the node.
func IsNotFound(err error) bool {
	var restErr *RestError
	return errors.As(err, &restErr) && restErr.Status == http.StatusNotFound
}

// InvalidResponseError reports a node response that decoded neither as the
// expected type nor as the node's error document.
type InvalidResponseError struct {
	Node   string
	Status int
	Body   string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("lavalink: node %s returned an undecodable %d response: %q", e.Node, e.Status, e.Body)
}
