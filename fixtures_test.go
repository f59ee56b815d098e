package rtsp2webrtc

import (
	"encoding/base64"
	"testing"

	"github.com/rtspkit/rtsp2webrtc/internal/stubserver"
)

const (
	testOfferSDP  = "v=0\r\no=carol 28908764872 28908764872 IN IP4 100.3.6.6\r\n..."
	testAnswerSDP = "v=0\r\no=bob 2890844730 2890844730 IN IP4 h.example.com\r\n..."
	testRTSPURL   = "rtsp://example"

	// base32(md5("rtsp://example")), the derived stream id for testRTSPURL.
	testHashStreamID = "Y7L7SZDOZXHIYFHESPL7YPKXHI======"
)

var testAnswerPayload = base64.StdEncoding.EncodeToString([]byte(testAnswerSDP))

var testSuccessEnvelope = map[string]interface{}{
	"status":  1,
	"payload": "success",
}

func testStream(urls ...string) map[string]interface{} {
	channels := make(map[string]interface{}, len(urls))
	for i, u := range urls {
		channels[intToChannelID(i)] = map[string]interface{}{
			"name": "ch1",
			"url":  u,
		}
	}
	return map[string]interface{}{
		"name":     "test video",
		"channels": channels,
	}
}

func intToChannelID(i int) string {
	return string(rune('0' + i))
}

func newStub(t *testing.T) *stubserver.Server {
	t.Helper()
	srv, err := stubserver.Start()
	if err != nil {
		t.Fatalf("start stub server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}
