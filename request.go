package rtsp2webrtc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	req "github.com/imroc/req/v3"

	"github.com/rtspkit/rtsp2webrtc/diagnostics"
	"github.com/rtspkit/rtsp2webrtc/internal/utils"
)

// requester applies the shared request/response policy for both backend
// clients: per-operation diagnostics counters, transport failures mapped to
// ErrClientError, and HTTP error statuses mapped to ErrResponseError with any
// server-supplied detail folded into the message.
type requester struct {
	http *req.Client
	diag *diagnostics.Diagnostics

	// errorField is the JSON field carrying human-readable error detail in
	// failure responses: "error" for RTSPtoWebRTC, "payload" for RTSPtoWeb.
	errorField string
}

func (r *requester) get(label, url string) ([]byte, error) {
	r.diag.Increment(label + "." + eventRequest)
	status, body, err := utils.GET(r.http, url)
	return r.outcome(label, status, body, err)
}

func (r *requester) postForm(label, url string, form map[string]string) ([]byte, error) {
	r.diag.Increment(label + "." + eventRequest)
	status, body, err := utils.PostForm(r.http, url, form)
	return r.outcome(label, status, body, err)
}

func (r *requester) postJSON(label, url string, payload interface{}) ([]byte, error) {
	r.diag.Increment(label + "." + eventRequest)
	status, body, err := utils.PostJSON(r.http, url, payload)
	return r.outcome(label, status, body, err)
}

func (r *requester) outcome(label string, status int, body []byte, err error) ([]byte, error) {
	if err != nil {
		r.diag.Increment(label + "." + eventClientError)
		return nil, fmt.Errorf("%w: %v", ErrClientError, err)
	}
	if status >= http.StatusBadRequest {
		r.diag.Increment(label + "." + eventResponseError)
		detail := errorDetail(body, r.errorField)
		detail = append(detail, fmt.Sprintf("HTTP %d %s", status, http.StatusText(status)))
		return nil, fmt.Errorf("%w: %s", ErrResponseError, strings.Join(detail, ": "))
	}
	r.diag.Increment(label + "." + eventSuccess)
	return body, nil
}

// errorDetail extracts a human-readable message from an error response body.
// Extraction is best-effort: a body that is not JSON, or that carries no
// string under field, yields no detail rather than masking the HTTP error.
func errorDetail(body []byte, field string) []string {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	raw, ok := data[field]
	if !ok {
		return nil
	}
	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return nil
	}
	return []string{message}
}
