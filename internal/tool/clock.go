package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/assistd-ai/assistd/pkg/types"
)

// CurrentTimeTool reports the current time, optionally in a given zone.
type CurrentTimeTool struct {
	now func() time.Time
}

// NewCurrentTimeTool creates a current_time tool.
func NewCurrentTimeTool() *CurrentTimeTool {
	return &CurrentTimeTool{now: time.Now}
}

func (t *CurrentTimeTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "current_time",
		Description: "Get the current date and time",
		Category:    types.CategoryUtility,
		Parameters: []types.ToolParameter{
			{Name: "timezone", Type: "string", Description: "IANA zone name, defaults to local time"},
		},
		DangerLevel:          types.DangerSafe,
		RequiresConfirmation: false,
		Examples:             []string{`[TOOL: current_time("Europe/Berlin")]`},
	}
}

func (t *CurrentTimeTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	now := t.now()

	zone := params["timezone"]
	if zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone: %s", zone)
		}
		now = now.In(loc)
	}

	return map[string]any{
		"time":     now.Format(time.RFC3339),
		"timezone": now.Location().String(),
		"unix":     now.Unix(),
	}, nil
}
