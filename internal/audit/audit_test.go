package audit

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-xai/internal/format"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

func setupTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLog_RecordAndRecent(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, l.Record(ctx, router.Invocation{
		ID:        "a",
		Tool:      "list_datasets",
		Arguments: json.RawMessage(`{"category":"tabular"}`),
		OK:        true,
		Duration:  12 * time.Millisecond,
		At:        base,
	}))
	require.NoError(t, l.Record(ctx, router.Invocation{
		ID:        "b",
		Tool:      "load_model",
		OK:        false,
		ErrorCode: "INVALID_PARAMETER",
		Error:     `[INVALID_PARAMETER] invalid parameter "ml_model"`,
		At:        base.Add(time.Second),
	}))

	invs, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, invs, 2)

	assert.Equal(t, "b", invs[0].ID)
	assert.False(t, invs[0].OK)
	assert.Equal(t, "INVALID_PARAMETER", invs[0].ErrorCode)
	assert.Nil(t, invs[0].Arguments)

	assert.Equal(t, "a", invs[1].ID)
	assert.True(t, invs[1].OK)
	assert.Empty(t, invs[1].ErrorCode)
	assert.JSONEq(t, `{"category":"tabular"}`, string(invs[1].Arguments))
	assert.Equal(t, 12*time.Millisecond, invs[1].Duration)
	assert.True(t, base.Equal(invs[1].At))

	invs, err = l.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, "b", invs[0].ID)
}

func TestLog_DuplicateIDFails(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()

	inv := router.Invocation{ID: "dup", Tool: "ping", OK: true, At: time.Now()}
	require.NoError(t, l.Record(ctx, inv))
	assert.Error(t, l.Record(ctx, inv))
}

func TestLog_RecentEmpty(t *testing.T) {
	l := setupTestLog(t)

	invs, err := l.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, invs)
	assert.NotNil(t, invs)
}

func TestLog_AsRouterRecorder(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()

	r := router.New(router.WithRecorder(l))
	require.NoError(t, r.Register(router.ToolSpec{
		Name:   "echo",
		Params: []router.ParamSpec{{Name: "text", Type: router.String, Required: true}},
	}, func(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
		return format.Text(args.String("text")), nil
	}))

	r.Invoke(ctx, "echo", json.RawMessage(`{"text":"hi"}`))
	r.Invoke(ctx, "echo", json.RawMessage(`{}`))
	r.Invoke(ctx, "missing", nil)

	invs, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, invs, 3)

	byTool := map[string][]router.Invocation{}
	for _, inv := range invs {
		assert.NotEmpty(t, inv.ID)
		byTool[inv.Tool] = append(byTool[inv.Tool], inv)
	}
	require.Len(t, byTool["echo"], 2)
	require.Len(t, byTool["missing"], 1)
	assert.Equal(t, "UNKNOWN_TOOL", byTool["missing"][0].ErrorCode)

	codes := []string{byTool["echo"][0].ErrorCode, byTool["echo"][1].ErrorCode}
	assert.ElementsMatch(t, []string{"", "INVALID_PARAMETER"}, codes)
}
