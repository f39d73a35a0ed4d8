package mclog_test

import (
	"testing"
	"time"

	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_GroupsByKind(t *testing.T) {
	agg := mclog.NewAggregator()
	ts := time.Date(2023, time.January, 2, 10, 0, 0, 0, time.Local)

	join, err := event.NewJoinLeave(ts, "Alice", event.Joined)
	require.NoError(t, err)
	leave, err := event.NewJoinLeave(ts.Add(time.Minute), "Alice", event.Left)
	require.NoError(t, err)
	chat, err := event.NewChat(ts.Add(30*time.Second), "Alice", "hi")
	require.NoError(t, err)

	agg.Add(join)
	agg.Add(chat)
	agg.Add(leave)

	assert.Equal(t, 3, agg.Len())
	require.Len(t, agg.Events(event.JoinLeave), 2)
	assert.Equal(t, event.Joined, agg.Events(event.JoinLeave)[0].Direction)
	assert.Equal(t, event.Left, agg.Events(event.JoinLeave)[1].Direction)
	require.Len(t, agg.Events(event.Chat), 1)
	assert.Empty(t, agg.Events(event.Death))
}

func TestAggregator_KindOrder(t *testing.T) {
	agg := mclog.NewAggregator()
	ts := time.Date(2023, time.January, 2, 10, 0, 0, 0, time.Local)

	// Custom kinds sort after base kinds regardless of arrival order.
	agg.Add(event.Event{Kind: "zulu", Timestamp: ts})
	agg.Add(event.Event{Kind: "alpha", Timestamp: ts})

	chat, err := event.NewChat(ts, "Alice", "hi")
	require.NoError(t, err)
	agg.Add(chat)

	death, err := event.NewDeath(ts, "Alice", "drowned", "")
	require.NoError(t, err)
	agg.Add(death)

	want := []event.Kind{event.Death, event.Chat, "alpha", "zulu"}
	assert.Equal(t, want, agg.Kinds())
}

func TestAggregator_Result(t *testing.T) {
	agg := mclog.NewAggregator()
	ts := time.Date(2023, time.January, 2, 10, 0, 0, 0, time.Local)

	chat, err := event.NewChat(ts, "Alice", "hi")
	require.NoError(t, err)
	agg.Add(chat)

	stats := mclog.Stats{Lines: 10, Unmatched: 9}
	warn := []error{assert.AnError}
	result := agg.Result(stats, warn)

	assert.Equal(t, 1, result.Total())
	assert.Equal(t, []event.Kind{event.Chat}, result.Kinds())
	assert.Equal(t, 10, result.Stats.Lines)
	require.Len(t, result.Warnings, 1)
}

func TestResult_EmptyKinds(t *testing.T) {
	result := mclog.NewAggregator().Result(mclog.Stats{}, nil)
	assert.Empty(t, result.Kinds())
	assert.Zero(t, result.Total())
}
