package offline

import (
	"context"
	"encoding/json"
	"net/http"
)

// RootDocument is served to HTML requests that fail entirely.
const RootDocument = "/index.html"

type offlinePayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// fallback returns the cached root document, or a 503 JSON payload when
// that is not cached either.
func (c *Controller) fallback(ctx context.Context) *Response {
	if cached, err := c.storage.Match(ctx, RootDocument); err == nil {
		return cached
	}
	return OfflineResponse()
}

// OfflineResponse is the generic 503 returned when nothing can be served.
func OfflineResponse() *Response {
	body, _ := json.Marshal(offlinePayload{
		Error:   "Offline",
		Message: "This content is not available offline",
	})
	return &Response{
		Status: http.StatusServiceUnavailable,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}
