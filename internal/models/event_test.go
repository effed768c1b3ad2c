package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrack() *TrackRequest {
	return &TrackRequest{
		VisitorID:      "v1",
		SessionID:      "s1",
		PageInstanceID: "p1",
		Event:          "page_opened",
		Timestamp:      1700000000000,
	}
}

func TestTrackRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TrackRequest)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(r *TrackRequest) {},
		},
		{
			name:    "missing visitorId",
			mutate:  func(r *TrackRequest) { r.VisitorID = "" },
			wantErr: "visitorId",
		},
		{
			name:    "missing sessionId",
			mutate:  func(r *TrackRequest) { r.SessionID = "" },
			wantErr: "sessionId",
		},
		{
			name:    "missing pageInstanceId",
			mutate:  func(r *TrackRequest) { r.PageInstanceID = "" },
			wantErr: "pageInstanceId",
		},
		{
			name:    "missing event",
			mutate:  func(r *TrackRequest) { r.Event = "" },
			wantErr: "event",
		},
		{
			name:    "zero timestamp",
			mutate:  func(r *TrackRequest) { r.Timestamp = 0 },
			wantErr: "timestamp",
		},
		{
			name:    "negative timestamp",
			mutate:  func(r *TrackRequest) { r.Timestamp = -5 },
			wantErr: "timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validTrack()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTrackRequestDecode(t *testing.T) {
	payload := `{
		"visitorId": "v1",
		"sessionId": "s1",
		"pageInstanceId": "p1",
		"referrer": "https://instagram.com",
		"screen": {"width": 390, "height": 844, "devicePixelRatio": 3},
		"event": "section_viewed",
		"meta": {"section": "cake", "totalTime": 1200},
		"timestamp": 1700000000000
	}`

	var req TrackRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))
	require.NoError(t, req.Validate())

	assert.Equal(t, "section_viewed", req.Event)
	require.NotNil(t, req.Screen)
	assert.Equal(t, 390, req.Screen.Width)
	assert.Equal(t, float64(3), req.Screen.DevicePixelRatio)
	assert.Equal(t, "cake", req.Meta["section"])
	assert.Equal(t, float64(1200), req.Meta["totalTime"])
}
