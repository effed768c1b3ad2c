package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSessionShape(t *testing.T) {
	events := buildSession("v1", "s1", "p1", "test-agent", 1000)

	require.GreaterOrEqual(t, len(events), 4)

	assert.Equal(t, "page_opened", events[0].Event)
	assert.Equal(t, "card_opened", events[1].Event)
	assert.Equal(t, "page_closed", events[len(events)-1].Event)

	for i, ev := range events {
		assert.Equal(t, "v1", ev.VisitorID)
		assert.Equal(t, "s1", ev.SessionID)
		assert.Equal(t, "p1", ev.PageInstanceID)
		assert.Positive(t, ev.Timestamp)
		if i > 0 {
			assert.GreaterOrEqual(t, ev.Timestamp, events[i-1].Timestamp,
				"events should be in timeline order")
		}
	}

	last := events[len(events)-1]
	require.NotNil(t, last.Meta)
	assert.Contains(t, last.Meta, "totalTime")
}

func TestWithEventDoesNotMutateBase(t *testing.T) {
	base := trackEvent{VisitorID: "v1", SessionID: "s1", PageInstanceID: "p1"}

	ev := withEvent(base, "card_opened", map[string]any{"k": "v"}, 42)

	assert.Equal(t, "card_opened", ev.Event)
	assert.EqualValues(t, 42, ev.Timestamp)
	assert.Empty(t, base.Event)
	assert.Zero(t, base.Timestamp)
}
