package rtsp2webrtc

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gaukas/logging"
	req "github.com/imroc/req/v3"

	"github.com/rtspkit/rtsp2webrtc/diagnostics"
	"github.com/rtspkit/rtsp2webrtc/internal/utils"
)

// WebRTCClient talks to an RTSPtoWebRTC server: a single signaling endpoint
// with one implicit stream and no CRUD surface.
type WebRTCClient struct {
	ServerAddr         string // base server URL including scheme, e.g. "http://127.0.0.1:8083"
	SNI                string // SNI override for HTTPS server addresses
	InsecureSkipVerify bool   // skip TLS certificate verification for HTTPS

	HTTP        *req.Client              // optional transport; built from the fields above when nil
	Logger      logging.Logger           // optional
	Diagnostics *diagnostics.Diagnostics // optional; defaults to diagnostics.Default().Get("webrtc")

	initOnce sync.Once
	r        *requester
}

var _ Client = (*WebRTCClient)(nil)

func (c *WebRTCClient) Offer(offerSDP, rtspURL string) (string, error) {
	return c.OfferStreamID("ignored", offerSDP, rtspURL, nil)
}

func (c *WebRTCClient) OfferStreamID(streamID, offerSDP, rtspURL string, channelData map[string]interface{}) (string, error) {
	// streamID is unused: RTSPtoWebRTC servers track a single implicit
	// stream per RTSP URL.
	_ = streamID
	if c.ServerAddr == "" {
		return "", ErrInvalidServerAddr
	}
	if c.Logger != nil {
		c.Logger.Debugf("WebRTCClient: offer rtsp_url=%s", rtspURL)
	}

	form := map[string]string{
		dataURL:   rtspURL,
		dataSDP64: encodeSDP(offerSDP),
	}
	for key, value := range channelData {
		form[key] = fmt.Sprint(value)
	}

	body, err := c.requester().postForm("stream", c.url(webrtcStreamPath), form)
	if err != nil {
		return "", err
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("%w: invalid response format: %v", ErrResponseError, err)
	}
	rawAnswer, ok := data[dataSDP64]
	if !ok {
		return "", fmt.Errorf("%w: response missing SDP answer: %s", ErrResponseError, body)
	}
	var answer64 string
	if err := json.Unmarshal(rawAnswer, &answer64); err != nil {
		return "", fmt.Errorf("%w: invalid response format: %v", ErrResponseError, err)
	}
	answer, err := decodeSDP(answer64)
	if err != nil {
		return "", err
	}
	if c.Logger != nil {
		c.Logger.Debugf("WebRTCClient: answer=%s", answer)
	}
	return answer, nil
}

// Heartbeat probes the static asset endpoint. Any non-error response, even an
// unrelated document, counts as alive.
func (c *WebRTCClient) Heartbeat() error {
	if c.ServerAddr == "" {
		return ErrInvalidServerAddr
	}
	_, err := c.requester().get("heartbeat", c.url(webrtcHeartbeatPath))
	return err
}

func (c *WebRTCClient) url(path string) string {
	return strings.TrimRight(c.ServerAddr, "/") + path
}

func (c *WebRTCClient) requester() *requester {
	c.initOnce.Do(func() {
		if c.InsecureSkipVerify && utils.IsHTTPS(c.ServerAddr) && c.Logger != nil {
			c.Logger.Warnf("WebRTCClient: InsecureSkipVerify enabled, connection is not secure unless the server is local")
		}
		httpClient := c.HTTP
		if httpClient == nil {
			httpClient = utils.NewClient(c.InsecureSkipVerify, c.SNI)
		}
		diag := c.Diagnostics
		if diag == nil {
			diag = diagnostics.Default().Get(diagWebRTC)
		}
		c.r = &requester{http: httpClient, diag: diag, errorField: dataError}
	})
	return c.r
}
