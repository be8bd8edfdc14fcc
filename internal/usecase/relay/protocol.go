// Package relay implements the per-connection streaming worker that
// multiplexes control and audio frames in and transcript events out.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Control frame types accepted from the client.
const (
	ControlSessionStarted = "session_started"
	ControlPing           = "ping"
)

// Outbound frame types sent to the client.
const (
	FrameAck              = "ack"
	FramePong             = "pong"
	FrameError            = "error"
	FrameTranscriptUpdate = "transcript_update"
)

// ControlMessage is a structured text frame from the client. The type
// discriminator selects the handler; unknown or malformed frames are
// logged and dropped without closing the connection.
type ControlMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
}

// DecodeControl parses a text frame into a control message
func DecodeControl(data []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ControlMessage{}, fmt.Errorf("malformed control frame: %w", err)
	}
	if strings.TrimSpace(msg.Type) == "" {
		return ControlMessage{}, fmt.Errorf("control frame missing type")
	}
	return msg, nil
}

// Frame is the outbound message envelope
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// TranscriptUpdate is the payload of a transcript_update frame. Interim
// updates carry provisional text; final updates are settled and were
// persisted (when a session is bound).
type TranscriptUpdate struct {
	Text       string  `json:"text"`
	IsFinal    bool    `json:"is_final"`
	Timestamp  float64 `json:"timestamp"`
	Speaker    string  `json:"speaker,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// EncodeAck builds an ack frame with a human-readable message
func EncodeAck(message string) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameAck, Data: map[string]string{"message": message}})
}

// EncodePong builds the reply to a ping control frame
func EncodePong() ([]byte, error) {
	return json.Marshal(Frame{Type: FramePong, Data: map[string]string{}})
}

// EncodeError builds a non-fatal error frame; the connection stays open
func EncodeError(message string) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameError, Data: map[string]string{"message": message}})
}

// EncodeTranscriptUpdate builds a transcript_update frame
func EncodeTranscriptUpdate(update TranscriptUpdate) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameTranscriptUpdate, Data: update})
}
