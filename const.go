package rtsp2webrtc

import (
	"errors"
	"fmt"
)

var (
	// ErrClientError covers communication failures: DNS, connect, TLS, or any
	// other transport-level problem, as well as the adaptive discovery failing
	// to find a live server of either flavor.
	ErrClientError = errors.New("server communication failure")

	// ErrResponseError means the server was reached but rejected the request:
	// a non-2xx status, an envelope failure, or a missing/malformed field.
	// It wraps ErrClientError, so errors.Is(err, ErrClientError) holds for
	// every error this library returns.
	ErrResponseError = fmt.Errorf("%w: server failure", ErrClientError)

	// ErrInvalidServerAddr is returned when a client is used without a
	// server address.
	ErrInvalidServerAddr = fmt.Errorf("%w: invalid server address", ErrClientError)
)

// RTSPtoWebRTC server endpoints.
const (
	webrtcStreamPath    = "/stream"
	webrtcHeartbeatPath = "/static"
)

// RTSPtoWeb server endpoints. Stream/channel ids are substituted into the
// templates with fmt.Sprintf.
const (
	webStreamsPath       = "/streams"
	webStreamPathFmt     = "/stream/%s/%s"            // stream_id, op
	webChannelPathFmt    = "/stream/%s/channel/%s/%s" // stream_id, channel_id, op
	webOpAdd             = "add"
	webOpEdit            = "edit"
	webOpReload          = "reload"
	webOpInfo            = "info"
	webOpCodec           = "codec"
	webOpDelete          = "delete"
	webOpWebRTC           = "webrtc"
	webDefaultChannelID   = "0"
	webDefaultChannelName = "ch1"
)

// Wire field names shared by the two protocols.
const (
	dataURL     = "url"
	dataSDP64   = "sdp64"
	dataError   = "error"
	dataData    = "data"
	dataStatus  = "status"
	dataPayload = "payload"

	statusSuccess = "1"
)

// Diagnostics subsystem names and event key suffixes.
const (
	diagDiscovery = "discovery"
	diagWeb       = "web"
	diagWebRTC    = "webrtc"

	eventRequest       = "request"
	eventSuccess       = "success"
	eventFailure       = "failure"
	eventClientError   = "client_error"
	eventResponseError = "response_error"
)
