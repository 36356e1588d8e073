package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrentTime(t *testing.T) {
	testCases := []struct {
		name     string
		testTime time.Time
	}{
		{name: "UTC Time", testTime: time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC)},
		{name: "Local Time", testTime: time.Date(2025, 5, 3, 12, 0, 0, 0, time.Local)},
		{name: "Zero Time", testTime: time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := NewCurrentTime(tc.testTime)

			assert.Equal(t, tc.testTime.UnixNano()/int64(time.Millisecond), result.Time)
			assert.Equal(t, tc.testTime.Format(time.RFC3339), result.ReadableTime)
		})
	}
}

func TestCurrentTimeEntryEndToEnd(t *testing.T) {
	testTime := time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC)
	response := NewEntryResponse(NewCurrentTime(testTime))

	jsonData, err := json.Marshal(response)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonData, &result))

	data, ok := result["data"].(map[string]interface{})
	require.True(t, ok, "Expected data to be an object, got %T", result["data"])
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "Expected entry to be an object, got %T", data["entry"])

	assert.Equal(t, float64(1746273600000), entry["time"])
	assert.Equal(t, "2025-05-03T12:00:00Z", entry["readableTime"])
}
