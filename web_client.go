package rtsp2webrtc

import (
	"crypto/md5"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"

	"github.com/gaukas/logging"
	req "github.com/imroc/req/v3"

	"github.com/rtspkit/rtsp2webrtc/diagnostics"
	"github.com/rtspkit/rtsp2webrtc/internal/utils"
)

// WebClient talks to an RTSPtoWeb server: full stream/channel CRUD plus a
// per-channel webrtc signaling sub-endpoint. Every CRUD response is wrapped
// in the {status, payload} envelope.
type WebClient struct {
	ServerAddr         string // base server URL including scheme, e.g. "http://127.0.0.1:8083"
	SNI                string // SNI override for HTTPS server addresses
	InsecureSkipVerify bool   // skip TLS certificate verification for HTTPS

	HTTP        *req.Client              // optional transport; built from the fields above when nil
	Logger      logging.Logger           // optional
	Diagnostics *diagnostics.Diagnostics // optional; defaults to diagnostics.Default().Get("web")

	initOnce sync.Once
	r        *requester
}

var _ Client = (*WebClient)(nil)

// ListStreams returns every stream registered with the server, keyed by
// stream id.
func (c *WebClient) ListStreams() (map[string]Stream, error) {
	body, err := c.get("list_streams", webStreamsPath)
	if err != nil {
		return nil, err
	}
	var streams map[string]Stream
	if err := decodeEnvelopeInto(body, &streams); err != nil {
		return nil, err
	}
	return streams, nil
}

// AddStream registers a new stream under streamID. data is typically a
// Stream, but any JSON-marshalable payload is accepted.
func (c *WebClient) AddStream(streamID string, data interface{}) error {
	return c.mutateStream("add_stream", streamID, webOpAdd, data)
}

// UpdateStream replaces the stream definition registered under streamID.
func (c *WebClient) UpdateStream(streamID string, data interface{}) error {
	return c.mutateStream("update_stream", streamID, webOpEdit, data)
}

// ReloadStream asks the server to restart the stream's source connections.
func (c *WebClient) ReloadStream(streamID string) error {
	return c.opStream("reload_stream", streamID, webOpReload)
}

// GetStreamInfo returns the stream definition registered under streamID.
func (c *WebClient) GetStreamInfo(streamID string) (Stream, error) {
	body, err := c.get("get_stream_info", c.streamPath(streamID, webOpInfo))
	if err != nil {
		return Stream{}, err
	}
	var stream Stream
	if err := decodeEnvelopeInto(body, &stream); err != nil {
		return Stream{}, err
	}
	return stream, nil
}

// DeleteStream removes the stream registered under streamID.
func (c *WebClient) DeleteStream(streamID string) error {
	return c.opStream("delete_stream", streamID, webOpDelete)
}

// AddChannel registers a new channel under an existing stream.
func (c *WebClient) AddChannel(streamID, channelID string, data interface{}) error {
	return c.mutateChannel("add_channel", streamID, channelID, webOpAdd, data)
}

// UpdateChannel replaces a channel definition.
func (c *WebClient) UpdateChannel(streamID, channelID string, data interface{}) error {
	return c.mutateChannel("update_channel", streamID, channelID, webOpEdit, data)
}

// ReloadChannel asks the server to restart the channel's source connection.
func (c *WebClient) ReloadChannel(streamID, channelID string) error {
	return c.opChannel("reload_channel", streamID, channelID, webOpReload)
}

// GetChannelInfo returns the channel definition.
func (c *WebClient) GetChannelInfo(streamID, channelID string) (Channel, error) {
	body, err := c.get("get_channel_info", c.channelPath(streamID, channelID, webOpInfo))
	if err != nil {
		return Channel{}, err
	}
	var channel Channel
	if err := decodeEnvelopeInto(body, &channel); err != nil {
		return Channel{}, err
	}
	return channel, nil
}

// GetCodecInfo returns the codecs negotiated for the channel's source.
func (c *WebClient) GetCodecInfo(streamID, channelID string) ([]CodecInfo, error) {
	body, err := c.get("get_codec_info", c.channelPath(streamID, channelID, webOpCodec))
	if err != nil {
		return nil, err
	}
	var codecs []CodecInfo
	if err := decodeEnvelopeInto(body, &codecs); err != nil {
		return nil, err
	}
	return codecs, nil
}

// DeleteChannel removes a channel from a stream.
func (c *WebClient) DeleteChannel(streamID, channelID string) error {
	return c.opChannel("delete_channel", streamID, channelID, webOpDelete)
}

// WebRTC exchanges the offer SDP on the channel's webrtc sub-endpoint. The
// response body is raw base64, not an envelope.
func (c *WebClient) WebRTC(streamID, channelID, offerSDP string) (string, error) {
	if c.ServerAddr == "" {
		return "", ErrInvalidServerAddr
	}
	form := map[string]string{
		dataData: encodeSDP(offerSDP),
	}
	body, err := c.requester().postForm("webrtc", c.url(c.channelPath(streamID, channelID, webOpWebRTC)), form)
	if err != nil {
		return "", err
	}
	return decodeSDP(string(body))
}

// Offer derives a stream id from the RTSP URL so repeated offers for the same
// source reuse one server-side stream, then runs the OfferStreamID workflow.
func (c *WebClient) Offer(offerSDP, rtspURL string) (string, error) {
	return c.OfferStreamID(streamIDFromURL(rtspURL), offerSDP, rtspURL, nil)
}

// OfferStreamID ensures a stream registration for rtspURL exists under
// streamID, then exchanges the offer on channel "0". The listing is observed
// before deciding add-vs-edit so an existing multi-channel definition is
// never clobbered: only channel "0" is touched, and only when its source URL
// actually changed.
func (c *WebClient) OfferStreamID(streamID, offerSDP, rtspURL string, channelData map[string]interface{}) (string, error) {
	if c.ServerAddr == "" {
		return "", ErrInvalidServerAddr
	}
	if c.Logger != nil {
		c.Logger.Debugf("WebClient: offer stream_id=%s rtsp_url=%s", streamID, rtspURL)
	}

	streams, err := c.ListStreams()
	if err != nil {
		return "", err
	}

	channel := map[string]interface{}{
		"name":  webDefaultChannelName,
		dataURL: rtspURL,
	}
	for key, value := range channelData {
		channel[key] = value
	}
	data := map[string]interface{}{
		"name": streamID,
		"channels": map[string]interface{}{
			webDefaultChannelID: channel,
		},
	}

	if existing, ok := streams[streamID]; ok {
		if existing.Channels[webDefaultChannelID].URL != rtspURL {
			if err := c.UpdateStream(streamID, data); err != nil {
				return "", err
			}
		}
	} else {
		if err := c.AddStream(streamID, data); err != nil {
			return "", err
		}
	}

	return c.WebRTC(streamID, webDefaultChannelID, offerSDP)
}

// Heartbeat probes the stream listing endpoint, ignoring the listing itself.
func (c *WebClient) Heartbeat() error {
	_, err := c.get("heartbeat", webStreamsPath)
	return err
}

func (c *WebClient) mutateStream(label, streamID, op string, data interface{}) error {
	if c.ServerAddr == "" {
		return ErrInvalidServerAddr
	}
	body, err := c.requester().postJSON(label, c.url(c.streamPath(streamID, op)), data)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(body)
	return err
}

func (c *WebClient) opStream(label, streamID, op string) error {
	body, err := c.get(label, c.streamPath(streamID, op))
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(body)
	return err
}

func (c *WebClient) mutateChannel(label, streamID, channelID, op string, data interface{}) error {
	if c.ServerAddr == "" {
		return ErrInvalidServerAddr
	}
	body, err := c.requester().postJSON(label, c.url(c.channelPath(streamID, channelID, op)), data)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(body)
	return err
}

func (c *WebClient) opChannel(label, streamID, channelID, op string) error {
	body, err := c.get(label, c.channelPath(streamID, channelID, op))
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(body)
	return err
}

func (c *WebClient) get(label, path string) ([]byte, error) {
	if c.ServerAddr == "" {
		return nil, ErrInvalidServerAddr
	}
	return c.requester().get(label, c.url(path))
}

func (c *WebClient) streamPath(streamID, op string) string {
	return fmt.Sprintf(webStreamPathFmt, streamID, op)
}

func (c *WebClient) channelPath(streamID, channelID, op string) string {
	return fmt.Sprintf(webChannelPathFmt, streamID, channelID, op)
}

func (c *WebClient) url(path string) string {
	return strings.TrimRight(c.ServerAddr, "/") + path
}

func (c *WebClient) requester() *requester {
	c.initOnce.Do(func() {
		if c.InsecureSkipVerify && utils.IsHTTPS(c.ServerAddr) && c.Logger != nil {
			c.Logger.Warnf("WebClient: InsecureSkipVerify enabled, connection is not secure unless the server is local")
		}
		httpClient := c.HTTP
		if httpClient == nil {
			httpClient = utils.NewClient(c.InsecureSkipVerify, c.SNI)
		}
		diag := c.Diagnostics
		if diag == nil {
			diag = diagnostics.Default().Get(diagWeb)
		}
		c.r = &requester{http: httpClient, diag: diag, errorField: dataPayload}
	})
	return c.r
}

// streamIDFromURL maps an RTSP URL to a deterministic stream id: the base32
// encoding of its MD5 digest. Base32 keeps the id safe for use in URL paths.
func streamIDFromURL(rtspURL string) string {
	digest := md5.Sum([]byte(rtspURL))
	return base32.StdEncoding.EncodeToString(digest[:])
}
