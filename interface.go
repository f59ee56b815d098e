package rtsp2webrtc

// Client negotiates WebRTC playback of an RTSP source against an
// RTSPtoWeb or RTSPtoWebRTC server. Both server flavors are hidden behind
// this interface; use GetAdaptiveClient to obtain whichever one is live.
//
// A Client is self-contained once constructed and may be reused for any
// number of Offer calls, from multiple goroutines.
type Client interface {
	// Offer sends the WebRTC offer SDP for the specified RTSP source and
	// returns the answer SDP. The server-side stream identity is derived
	// from the RTSP URL, so repeated calls with the same URL reuse the
	// same stream registration.
	Offer(offerSDP, rtspURL string) (answerSDP string, err error)

	// OfferStreamID is Offer with an explicit stream id and optional extra
	// per-channel settings. Servers that have no notion of stream ids
	// ignore the id. Extra channel settings are passed through to the
	// server untouched and may be nil.
	OfferStreamID(streamID, offerSDP, rtspURL string, channelData map[string]interface{}) (answerSDP string, err error)

	// Heartbeat probes the server and returns nil if it is alive. Used by
	// adaptive discovery to detect the server flavor.
	Heartbeat() error
}
