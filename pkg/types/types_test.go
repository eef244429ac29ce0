package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageClone(t *testing.T) {
	req := require.New(t)
	orig := &Message{
		ID:        1,
		Sender:    "alice",
		Body:      "hello",
		Room:      "general",
		Timestamp: time.Now(),
		ReadBy:    map[string]bool{"alice": true},
		Reactions: map[string][]string{"👍": {"bob"}},
	}

	clone := orig.Clone()
	clone.ReadBy["bob"] = true
	clone.Reactions["👍"] = append(clone.Reactions["👍"], "carol")

	req.Equal(map[string]bool{"alice": true}, orig.ReadBy)
	req.Equal([]string{"bob"}, orig.Reactions["👍"])
}

func TestMessageJSONFieldNames(t *testing.T) {
	req := require.New(t)
	msg := &Message{
		ID:      42,
		Sender:  "alice",
		Body:    "hello",
		FileURL: "http://example.com/uploads/1-a.png",
		Room:    "general",
	}

	data, err := json.Marshal(msg)
	req.NoError(err)

	var raw map[string]json.RawMessage
	req.NoError(json.Unmarshal(data, &raw))
	req.Contains(raw, "message")
	req.Contains(raw, "fileUrl")
	req.NotContains(raw, "body")
}

func TestInboundDefersPayloadDecoding(t *testing.T) {
	req := require.New(t)
	data := []byte(`{"type": "send_message", "payload": {"message": "hi", "room": "general"}}`)

	var frame Inbound
	req.NoError(json.Unmarshal(data, &frame))
	req.Equal(EventSendMessage, frame.Type)

	var p SendMessagePayload
	req.NoError(json.Unmarshal(frame.Payload, &p))
	req.Equal("hi", p.Message)
	req.Equal("general", p.Room)
}
