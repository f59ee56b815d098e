package rtsp2webrtc

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rtspkit/rtsp2webrtc/diagnostics"
	"github.com/rtspkit/rtsp2webrtc/internal/stubserver"
)

func TestWebRTCClientOffer(t *testing.T) {
	srv := newStub(t)
	srv.ScriptJSON("/stream", 200, map[string]interface{}{"sdp64": testAnswerPayload})

	client := &WebRTCClient{ServerAddr: srv.URL(), Diagnostics: diagnostics.New()}
	answer, err := client.Offer(testOfferSDP, testRTSPURL)
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if answer != testAnswerSDP {
		t.Fatalf("answer = %q, want %q", answer, testAnswerSDP)
	}
	if paths := srv.Paths(); !reflect.DeepEqual(paths, []string{"/stream"}) {
		t.Fatalf("unexpected request paths: %v", paths)
	}
	forms := srv.Forms()
	if len(forms) != 1 {
		t.Fatalf("expected 1 form request, got %d", len(forms))
	}
	if forms[0]["url"] != testRTSPURL {
		t.Fatalf("form url = %q, want %q", forms[0]["url"], testRTSPURL)
	}
	if forms[0]["sdp64"] != encodeSDP(testOfferSDP) {
		t.Fatalf("form sdp64 = %q, want %q", forms[0]["sdp64"], encodeSDP(testOfferSDP))
	}
}

func TestWebRTCClientOfferChannelData(t *testing.T) {
	srv := newStub(t)
	srv.ScriptJSON("/stream", 200, map[string]interface{}{"sdp64": testAnswerPayload})

	client := &WebRTCClient{ServerAddr: srv.URL(), Diagnostics: diagnostics.New()}
	answer, err := client.OfferStreamID("stream_id", testOfferSDP, testRTSPURL, map[string]interface{}{
		"insecure_skip_verify": true,
	})
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if answer != testAnswerSDP {
		t.Fatalf("answer = %q, want %q", answer, testAnswerSDP)
	}
	forms := srv.Forms()
	if len(forms) != 1 {
		t.Fatalf("expected 1 form request, got %d", len(forms))
	}
	if forms[0]["insecure_skip_verify"] != "true" {
		t.Fatalf("channel data not passed through: %v", forms[0])
	}
}

func TestWebRTCClientOfferMissingAnswer(t *testing.T) {
	srv := newStub(t)
	srv.ScriptJSON("/stream", 200, map[string]interface{}{})

	client := &WebRTCClient{ServerAddr: srv.URL(), Diagnostics: diagnostics.New()}
	_, err := client.Offer(testOfferSDP, testRTSPURL)
	if !errors.Is(err, ErrResponseError) {
		t.Fatalf("expected ErrResponseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing SDP answer") {
		t.Fatalf("error %q does not mention the missing answer", err)
	}
}

func TestWebRTCClientServerFailure(t *testing.T) {
	srv := newStub(t)
	srv.Script("/stream", stubserver.Response{Status: 502})

	client := &WebRTCClient{ServerAddr: srv.URL(), Diagnostics: diagnostics.New()}
	_, err := client.Offer(testOfferSDP, testRTSPURL)
	if !errors.Is(err, ErrResponseError) {
		t.Fatalf("expected ErrResponseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "server failure") {
		t.Fatalf("error %q does not mention server failure", err)
	}
}

func TestWebRTCClientServerFailureWithDetail(t *testing.T) {
	srv := newStub(t)
	srv.ScriptJSON("/stream", 502, map[string]interface{}{"error": "a message"})

	client := &WebRTCClient{ServerAddr: srv.URL(), Diagnostics: diagnostics.New()}
	_, err := client.Offer(testOfferSDP, testRTSPURL)
	if !errors.Is(err, ErrResponseError) {
		t.Fatalf("expected ErrResponseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "a message") {
		t.Fatalf("error %q does not carry the server detail", err)
	}
}

func TestWebRTCClientHeartbeat(t *testing.T) {
	srv := newStub(t)
	srv.Script("/static", stubserver.Response{Status: 200})
	srv.Script("/static", stubserver.Response{Status: 502})
	srv.Script("/static", stubserver.Response{Status: 404})
	srv.Script("/static", stubserver.Response{Status: 200})

	diag := diagnostics.New()
	client := &WebRTCClient{ServerAddr: srv.URL(), Diagnostics: diag}

	if err := client.Heartbeat(); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if err := client.Heartbeat(); !errors.Is(err, ErrResponseError) {
		t.Fatalf("expected ErrResponseError, got %v", err)
	}
	if err := client.Heartbeat(); !errors.Is(err, ErrResponseError) {
		t.Fatalf("expected ErrResponseError, got %v", err)
	}
	if err := client.Heartbeat(); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	want := map[string]int64{
		"heartbeat.request":        4,
		"heartbeat.success":        2,
		"heartbeat.response_error": 2,
	}
	if got := diag.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("diagnostics = %v, want %v", got, want)
	}
}

func TestWebRTCClientTransportFailure(t *testing.T) {
	srv := newStub(t)
	addr := srv.URL()
	srv.Close()

	diag := diagnostics.New()
	client := &WebRTCClient{ServerAddr: addr, Diagnostics: diag}
	_, err := client.Offer(testOfferSDP, testRTSPURL)
	if !errors.Is(err, ErrClientError) {
		t.Fatalf("expected ErrClientError, got %v", err)
	}
	if errors.Is(err, ErrResponseError) {
		t.Fatalf("transport failure must not be a response error: %v", err)
	}
	if got := diag.Snapshot()["stream.client_error"]; got != 1 {
		t.Fatalf("stream.client_error = %d, want 1", got)
	}
}

func TestWebRTCClientNoServerAddr(t *testing.T) {
	client := &WebRTCClient{}
	if _, err := client.Offer(testOfferSDP, testRTSPURL); !errors.Is(err, ErrInvalidServerAddr) {
		t.Fatalf("expected ErrInvalidServerAddr, got %v", err)
	}
	if err := client.Heartbeat(); !errors.Is(err, ErrInvalidServerAddr) {
		t.Fatalf("expected ErrInvalidServerAddr, got %v", err)
	}
}
