package mclog_test

import (
	"context"
	"testing"
	"time"

	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Invalid(t *testing.T) {
	noon := time.Date(2023, 1, 2, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		opts    []mclog.Option
		wantErr string
	}{
		{
			name: "dir and paths together",
			opts: []mclog.Option{
				mclog.WithLogDir("logs"),
				mclog.WithPaths("latest.log"),
			},
			wantErr: "mutually exclusive",
		},
		{
			name:    "empty path",
			opts:    []mclog.Option{mclog.WithPaths("")},
			wantErr: "must not be empty",
		},
		{
			name: "include and exclude together",
			opts: []mclog.Option{
				mclog.WithIncludeKinds(event.Chat),
				mclog.WithExcludeKinds(event.Death),
			},
			wantErr: "mutually exclusive",
		},
		{
			name:    "empty matcher name",
			opts:    []mclog.Option{mclog.WithMatcher("", missMatcher)},
			wantErr: "must not be empty",
		},
		{
			name:    "nil matcher",
			opts:    []mclog.Option{mclog.WithMatcher("custom", nil)},
			wantErr: "is nil",
		},
		{
			name: "until before since",
			opts: []mclog.Option{
				mclog.WithSince(noon),
				mclog.WithUntil(noon.Add(-time.Hour)),
			},
			wantErr: "before since",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mclog.Aggregate(context.Background(), tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptions_NilOptionIgnored(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "2023-01-02-1.log.gz",
		"[10:00:00] [Server thread/INFO]: Alice joined the game",
	)

	result, err := mclog.Aggregate(context.Background(), mclog.WithLogDir(dir), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total())
}

func TestOptions_EqualSinceUntilIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "2023-01-02-1.log.gz",
		"[10:00:00] [Server thread/INFO]: <Alice> hello",
	)

	at := time.Date(2023, 1, 2, 10, 0, 0, 0, time.Local)
	result, err := mclog.Aggregate(context.Background(),
		mclog.WithLogDir(dir),
		mclog.WithSince(at),
		mclog.WithUntil(at),
	)
	require.NoError(t, err)
	assert.Zero(t, result.Total(), "until is exclusive, so an empty window matches nothing")
}

func TestOptions_LastKindFilterWins(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "2023-01-02-1.log.gz",
		"[10:00:00] [Server thread/INFO]: Alice joined the game",
		"[10:00:05] [Server thread/INFO]: <Alice> hello",
	)

	result, err := mclog.Aggregate(context.Background(),
		mclog.WithLogDir(dir),
		mclog.WithIncludeKinds(event.Chat),
		mclog.WithIncludeKinds(event.JoinLeave),
	)
	require.NoError(t, err)

	assert.Len(t, result.Events[event.JoinLeave], 1)
	assert.Empty(t, result.Events[event.Chat])
}
