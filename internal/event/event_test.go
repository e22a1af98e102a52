package event

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageBody(t *testing.T) {
	body := "user: bob\n" +
		"channel name: sports\n" +
		"city: X\n" +
		"event name: Fire\n" +
		"date time: 1000\n" +
		"general information:\n" +
		"  active: true\n" +
		"  forces_arrival_at_scene: false\n" +
		"description:\n" +
		"smoke at 10:30\n" +
		"city: not a field\n"

	ev, err := ParseMessageBody(body)
	require.NoError(t, err)
	assert.Equal(t, "bob", ev.Owner)
	assert.Equal(t, "sports", ev.Channel)
	assert.Equal(t, "X", ev.City)
	assert.Equal(t, "Fire", ev.Name)
	assert.Equal(t, int64(1000), ev.DateTime)
	assert.Equal(t, map[string]string{"active": "true", "forces_arrival_at_scene": "false"}, ev.Info)
	assert.Equal(t, "smoke at 10:30\ncity: not a field\n", ev.Description)
	assert.True(t, ev.IsFlagSet(InfoActive))
	assert.False(t, ev.IsFlagSet(InfoForcesArrivalAtScene))
}

func TestParseMessageBodyMinimal(t *testing.T) {
	ev, err := ParseMessageBody("user: bob\ncity: X\nevent name: Fire\ndate time: 1000\ndescription:\nsmoke\n")
	require.NoError(t, err)
	assert.Equal(t, "smoke\n", ev.Description)
	assert.Empty(t, ev.Info)
	assert.Empty(t, ev.Channel)
}

func TestParseMessageBodyTolerance(t *testing.T) {
	ev, err := ParseMessageBody("date time: 5\nweather: rainy\nno colon here\n")
	require.NoError(t, err)
	assert.Equal(t, int64(5), ev.DateTime)
	assert.Empty(t, ev.Owner)
	assert.Empty(t, ev.Description)
}

func TestParseMessageBodyErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing date time", "user: bob\ncity: X\n"},
		{"non integer date time", "user: bob\ndate time: yesterday\n"},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessageBody(tt.body)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, KeyDateTime, parseErr.Field)
		})
	}
}

func TestFormatForSend(t *testing.T) {
	ev := Event{
		Channel:     "sports",
		City:        "X",
		Name:        "Fire",
		DateTime:    1000,
		Description: "smoke\n",
		Info:        map[string]string{"zeta": "1", "active": "true"},
		Owner:       "alice",
	}

	expected := "user: alice\n" +
		"city: X\n" +
		"event name: Fire\n" +
		"date time: 1000\n" +
		"general information:\n" +
		"  active: true\n" +
		"  zeta: 1\n" +
		"description:\n" +
		"smoke\n"
	assert.Equal(t, expected, ev.FormatForSend("alice"))

	parsed, err := ParseMessageBody(ev.FormatForSend("alice"))
	require.NoError(t, err)
	assert.Equal(t, ev.Info, parsed.Info)
	assert.Equal(t, ev.Description, parsed.Description)
	assert.Equal(t, "alice", parsed.Owner)
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 9, 7, 0, 0, time.Local).Unix()
	assert.Equal(t, "05/03/24 09:07", FormatDateTime(ts))
}

func TestLoadReport(t *testing.T) {
	content := `{
  "channel_name": "police",
  "events": [
    {
      "event_name": "Grand Theft Auto",
      "city": "Liberty City",
      "date_time": 1718236800,
      "description": "stolen car",
      "general_information": {"active": true, "forces_arrival_at_scene": "false", "units": 3}
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	report, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, "police", report.Channel)
	require.Len(t, report.Events, 1)

	record := report.Events[0]
	assert.Equal(t, "Grand Theft Auto", record.EventName)
	assert.Equal(t, int64(1718236800), record.DateTime)
	assert.Equal(t, map[string]string{"active": "true", "forces_arrival_at_scene": "false", "units": "3"}, record.Info)

	ev := NewEvent(report.Channel, record, "alice")
	assert.Equal(t, "police", ev.Channel)
	assert.Equal(t, "alice", ev.Owner)
	assert.True(t, ev.IsFlagSet(InfoActive))
	ev.Info["units"] = "4"
	assert.Equal(t, "3", record.Info["units"])
}

func TestLoadReportErrors(t *testing.T) {
	_, err := LoadReport(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ParseReport([]byte(`{"events": []}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = ParseReport([]byte(`not json`))
	assert.Error(t, err)
}
