package rtsp2webrtc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// encodeSDP packs opaque SDP text into its base64 wire form.
func encodeSDP(sdp string) string {
	return base64.StdEncoding.EncodeToString([]byte(sdp))
}

// decodeSDP unpacks base64-encoded SDP received from a server.
func decodeSDP(sdp64 string) (string, error) {
	sdp, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sdp64))
	if err != nil {
		return "", fmt.Errorf("%w: invalid SDP encoding: %v", ErrResponseError, err)
	}
	return string(sdp), nil
}

// decodeEnvelope unwraps an RTSPtoWeb {status, payload} response and returns
// the raw payload. Any envelope violation is an ErrResponseError carrying the
// offending body.
func decodeEnvelope(body []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid response format: %v", ErrResponseError, err)
	}
	rawStatus, ok := envelope[dataStatus]
	if !ok {
		return nil, fmt.Errorf("%w: server missing status: %s", ErrResponseError, body)
	}
	if envelopeStatus(rawStatus) != statusSuccess {
		return nil, fmt.Errorf("%w: %s", ErrResponseError, body)
	}
	payload, ok := envelope[dataPayload]
	if !ok {
		return nil, fmt.Errorf("%w: server missing payload: %s", ErrResponseError, body)
	}
	return payload, nil
}

// decodeEnvelopeInto unwraps the envelope and unmarshals the payload into
// dest. A payload of the wrong shape is an ErrResponseError ("malformed
// payload") rather than a bare JSON error.
func decodeEnvelopeInto(body []byte, dest interface{}) error {
	payload, err := decodeEnvelope(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("%w: malformed payload: %s", ErrResponseError, payload)
	}
	return nil
}

// envelopeStatus normalizes the envelope status field: RTSPtoWeb servers emit
// it both as a JSON string ("1") and as a bare number (1).
func envelopeStatus(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return strings.TrimSpace(string(raw))
}
