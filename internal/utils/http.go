// Package utils builds the HTTP transport shared by the rtsp2webrtc backend
// clients. One *req.Client is constructed per backend client and reused for
// every request it issues.
package utils

import (
	"context"
	"io"
	"net"
	"strings"

	ctls "crypto/tls"

	tls "github.com/refraction-networking/utls"

	req "github.com/imroc/req/v3"
)

func IsHTTPS(url string) bool {
	return strings.HasPrefix(url, "https://")
}

// TLSConn adapts a uTLS connection to the crypto/tls connection-state shape
// expected by net/http.
type TLSConn struct {
	*tls.UConn
}

func (conn *TLSConn) ConnectionState() ctls.ConnectionState {
	cs := conn.UConn.ConnectionState()
	return ctls.ConnectionState{
		Version:                     cs.Version,
		HandshakeComplete:           cs.HandshakeComplete,
		DidResume:                   cs.DidResume,
		CipherSuite:                 cs.CipherSuite,
		NegotiatedProtocol:          cs.NegotiatedProtocol,
		NegotiatedProtocolIsMutual:  cs.NegotiatedProtocolIsMutual,
		ServerName:                  cs.ServerName,
		PeerCertificates:            cs.PeerCertificates,
		VerifiedChains:              cs.VerifiedChains,
		SignedCertificateTimestamps: cs.SignedCertificateTimestamps,
		OCSPResponse:                cs.OCSPResponse,
		TLSUnique:                   cs.TLSUnique,
	}
}

// NewClient returns a req.Client that dials HTTPS with a uTLS Chrome hello.
// sni overrides the server name sent in the handshake when non-empty; plain
// HTTP URLs never reach the TLS dialer.
func NewClient(insecureSkipVerify bool, sni string) *req.Client {
	c := req.C()
	c.SetDialTLS(func(ctx context.Context, network, addr string) (net.Conn, error) {
		plainConn, err := net.Dial(network, addr)
		if err != nil {
			return nil, err
		}
		colonPos := strings.LastIndex(addr, ":")
		if colonPos == -1 {
			colonPos = len(addr)
		}
		hostname := addr[:colonPos]
		utlsConfig := &tls.Config{ServerName: hostname, NextProtos: c.GetTLSClientConfig().NextProtos, MinVersion: tls.VersionTLS12, InsecureSkipVerify: insecureSkipVerify}
		if sni != "" {
			utlsConfig.ServerName = sni
		}
		conn := tls.UClient(plainConn, utlsConfig, tls.HelloChrome_106_Shuffle)
		return &TLSConn{conn}, nil
	})

	return c
}

// GET issues a GET request and returns the response status and body. A
// non-nil error means the request never produced a response.
func GET(c *req.Client, url string) (status int, body []byte, err error) {
	resp, err := c.R().Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// PostForm issues a POST request with a URL-encoded form body.
func PostForm(c *req.Client, url string, form map[string]string) (status int, body []byte, err error) {
	resp, err := c.R().SetFormData(form).Post(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// PostJSON issues a POST request with payload marshaled as a JSON body.
func PostJSON(c *req.Client, url string, payload interface{}) (status int, body []byte, err error) {
	resp, err := c.R().SetBodyJsonMarshal(payload).Post(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}
