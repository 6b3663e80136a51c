package socket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_IsPush(t *testing.T) {
	push := &Message{Type: TypeNewNotification}
	assert.True(t, push.IsPush())

	resp := &Message{Type: TypeDndState, RequestID: json.RawMessage("0")}
	assert.False(t, resp.IsPush())
}

func TestMessage_RequestIDRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "12345", `"abc"`, "null"} {
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(`{"type":"get_all","_request_id":`+raw+`}`), &msg))

		out, err := json.Marshal(&msg)
		require.NoError(t, err)

		var echoed Message
		require.NoError(t, json.Unmarshal(out, &echoed))
		assert.Equal(t, json.RawMessage(raw), echoed.RequestID, "raw id %s", raw)
	}
}

func TestMessage_UnusedFieldsOmitted(t *testing.T) {
	out, err := json.Marshal(&Message{Type: TypeGetAll, RequestID: json.RawMessage("1")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"get_all","_request_id":1}`, string(out))
}
