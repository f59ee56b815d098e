package rtsp2webrtc

import (
	"github.com/gaukas/logging"
	"github.com/hashicorp/go-multierror"
	req "github.com/imroc/req/v3"

	"github.com/rtspkit/rtsp2webrtc/diagnostics"
)

// Config carries the shared settings for adaptive client discovery. Only
// ServerAddr is required.
type Config struct {
	ServerAddr         string // base server URL including scheme
	SNI                string // SNI override for HTTPS server addresses
	InsecureSkipVerify bool   // skip TLS certificate verification for HTTPS

	HTTP        *req.Client           // optional transport shared by both probes
	Logger      logging.Logger        // optional
	Diagnostics *diagnostics.Registry // optional; defaults to diagnostics.Default()
}

// GetAdaptiveClient determines which server flavor answers at the configured
// address and returns a ready-to-use client for it.
//
// Both flavors are probed concurrently with a single heartbeat each, so
// discovery latency is bounded by the slower probe rather than the sum of the
// two. When both servers answer, RTSPtoWeb wins: it offers the fuller
// multi-channel surface. When exactly one answers, the other's probe error is
// expected (that flavor simply is not deployed) and is logged at debug level,
// then discarded. Only when both probes fail does an error reach the caller,
// carrying both captured probe failures.
func GetAdaptiveClient(config Config) (Client, error) {
	if config.ServerAddr == "" {
		return nil, ErrInvalidServerAddr
	}

	registry := config.Diagnostics
	if registry == nil {
		registry = diagnostics.Default()
	}

	webClient := &WebClient{
		ServerAddr:         config.ServerAddr,
		SNI:                config.SNI,
		InsecureSkipVerify: config.InsecureSkipVerify,
		HTTP:               config.HTTP,
		Logger:             config.Logger,
		Diagnostics:        registry.Get(diagWeb),
	}
	webrtcClient := &WebRTCClient{
		ServerAddr:         config.ServerAddr,
		SNI:                config.SNI,
		InsecureSkipVerify: config.InsecureSkipVerify,
		HTTP:               config.HTTP,
		Logger:             config.Logger,
		Diagnostics:        registry.Get(diagWebRTC),
	}

	discovery := registry.Get(diagDiscovery)
	discovery.Increment("attempt")

	// Both probes must be in flight before either is awaited.
	webDone := make(chan error, 1)
	webrtcDone := make(chan error, 1)
	go func() { webDone <- webClient.Heartbeat() }()
	go func() { webrtcDone <- webrtcClient.Heartbeat() }()

	var chosen Client

	webErr := <-webDone
	if webErr != nil {
		discovery.Increment(diagWeb + "." + eventFailure)
		if config.Logger != nil {
			config.Logger.Debugf("discovery of RTSPtoWeb server failed: %v", webErr)
		}
	} else {
		discovery.Increment(diagWeb + "." + eventSuccess)
		chosen = webClient
	}

	webrtcErr := <-webrtcDone
	if webrtcErr != nil {
		discovery.Increment(diagWebRTC + "." + eventFailure)
		if config.Logger != nil {
			config.Logger.Debugf("discovery of RTSPtoWebRTC server failed: %v", webrtcErr)
		}
		if chosen == nil {
			return nil, multierror.Append(webErr, webrtcErr)
		}
	} else {
		discovery.Increment(diagWebRTC + "." + eventSuccess)
		if chosen == nil {
			chosen = webrtcClient
		}
	}

	return chosen, nil
}
