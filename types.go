package rtsp2webrtc

// Channel is one tracked feed within an RTSPtoWeb stream.
type Channel struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url"`
	OnDemand bool   `json:"on_demand,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
	Status   int64  `json:"status,omitempty"`
}

// Stream is a server-side registration of one RTSP source under a set of
// channels, keyed by channel id. Default workflows use channel id "0".
type Stream struct {
	Name     string             `json:"name,omitempty"`
	Channels map[string]Channel `json:"channels"`
}

// CodecInfo describes one negotiated codec of a channel, as reported by the
// RTSPtoWeb codec endpoint.
type CodecInfo struct {
	Type string `json:"Type,omitempty"`
}
