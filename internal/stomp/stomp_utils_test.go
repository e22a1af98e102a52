package stomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	f := NewFrame(SEND, "line one\nline two\n",
		Header{Key: "destination", Value: "/sports"},
		Header{Key: "x", Value: "1"},
		Header{Key: "x", Value: "2"},
	)

	got := string(Encode(f))
	assert.Equal(t, "SEND\ndestination:/sports\nx:1\nx:2\n\nline one\nline two\n\x00", got)
}

func TestEncodeUnknownCommandUsesName(t *testing.T) {
	f := Frame{Command: UNKNOWN, Name: "BEGIN", Headers: []Header{{Key: "transaction", Value: "tx1"}}}
	assert.Equal(t, "BEGIN\ntransaction:tx1\n\n\x00", string(Encode(f)))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"single line", "hello"},
		{"trailing newline", "hello\n"},
		{"multi line", "user: bob\ncity: X\ndescription:\nsmoke\nand fire\n"},
		{"embedded blank lines", "a\n\nb\n\n"},
		{"colons in body", "time: 10:30\nkey:value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewFrame(MESSAGE, tt.body,
				Header{Key: "destination", Value: "/police"},
				Header{Key: "message-id", Value: "7"},
			)
			out, err := Decode(Encode(in))
			require.NoError(t, err)

			assert.Equal(t, MESSAGE, out.Command)
			assert.Equal(t, tt.body, out.Body)
			destination, ok := out.Header("destination")
			require.True(t, ok)
			assert.Equal(t, "/police", destination)
			id, ok := GetHeader("message-id", out.Headers)
			require.True(t, ok)
			assert.Equal(t, "7", id)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("receipt", func(t *testing.T) {
		f, err := Decode([]byte("RECEIPT\nreceipt-id:3\n\n"))
		require.NoError(t, err)
		assert.Equal(t, RECEIPT, f.Command)
		assert.Equal(t, []Header{{Key: "receipt-id", Value: "3"}}, f.Headers)
		assert.Empty(t, f.Body)
	})

	t.Run("no blank line means no body", func(t *testing.T) {
		f, err := Decode([]byte("CONNECTED\nversion:1.2"))
		require.NoError(t, err)
		assert.Equal(t, CONNECTED, f.Command)
		assert.Empty(t, f.Body)
		version, ok := f.Header("version")
		require.True(t, ok)
		assert.Equal(t, "1.2", version)
	})

	t.Run("leading heart-beat newlines and terminator", func(t *testing.T) {
		f, err := Decode([]byte("\n\r\nCONNECTED\r\nversion:1.2\r\n\r\n\x00"))
		require.NoError(t, err)
		assert.Equal(t, CONNECTED, f.Command)
		assert.Equal(t, "CONNECTED", f.Name)
	})

	t.Run("header value keeps later colons", func(t *testing.T) {
		f, err := Decode([]byte("ERROR\nmessage:bad frame: missing id\n\n"))
		require.NoError(t, err)
		message, _ := f.Header("message")
		assert.Equal(t, "bad frame: missing id", message)
	})

	t.Run("unknown command passes through", func(t *testing.T) {
		f, err := Decode([]byte("NACK\nid:1\n\n"))
		require.NoError(t, err)
		assert.Equal(t, UNKNOWN, f.Command)
		assert.Equal(t, "NACK", f.Name)
	})

	t.Run("empty input", func(t *testing.T) {
		for _, raw := range []string{"", "\x00", "\n\n", "  \n"} {
			_, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrEmptyFrame, "input %q", raw)
		}
	})
}

func TestGetHeaderFirstWins(t *testing.T) {
	headers := []Header{
		{Key: "id", Value: "first"},
		{Key: "other", Value: "x"},
		{Key: "id", Value: "second"},
	}
	value, ok := GetHeader("id", headers)
	require.True(t, ok)
	assert.Equal(t, "first", value)

	_, ok = GetHeader("missing", headers)
	assert.False(t, ok)
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		command  Command
		expected string
		outbound bool
		inbound  bool
	}{
		{CONNECT, "CONNECT", true, false},
		{SUBSCRIBE, "SUBSCRIBE", true, false},
		{UNSUBSCRIBE, "UNSUBSCRIBE", true, false},
		{SEND, "SEND", true, false},
		{DISCONNECT, "DISCONNECT", true, false},
		{CONNECTED, "CONNECTED", false, true},
		{ERROR, "ERROR", false, true},
		{RECEIPT, "RECEIPT", false, true},
		{MESSAGE, "MESSAGE", false, true},
		{UNKNOWN, "UNKNOWN", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.command.String())
		assert.Equal(t, tt.outbound, tt.command.IsOutbound(), tt.expected)
		assert.Equal(t, tt.inbound, tt.command.IsInbound(), tt.expected)
		if tt.command != UNKNOWN {
			assert.Equal(t, tt.command, ParseCommand(tt.expected))
		}
	}
}
