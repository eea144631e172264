package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentTime_Local(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	tool := &CurrentTimeTool{now: func() time.Time { return fixed }}

	out, err := tool.Execute(context.Background(), nil, map[string]string{})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, fixed.Format(time.RFC3339), result["time"])
	assert.Equal(t, fixed.Unix(), result["unix"])
}

func TestCurrentTime_Timezone(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	tool := &CurrentTimeTool{now: func() time.Time { return fixed }}

	out, err := tool.Execute(context.Background(), nil, map[string]string{
		"timezone": "America/New_York",
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, "America/New_York", result["timezone"])
	assert.Equal(t, fixed.Unix(), result["unix"])
}

func TestCurrentTime_UnknownTimezone(t *testing.T) {
	tool := NewCurrentTimeTool()

	_, err := tool.Execute(context.Background(), nil, map[string]string{
		"timezone": "Mars/Olympus_Mons",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown timezone")
}
