// Package clock exposes a time lookup tool.
package clock

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/m-mizutani/goerr/v2"

	"github.com/shibaleo/repomcp/internal/logging"
	"github.com/shibaleo/repomcp/internal/modules"
)

// defaultZone is the zone used when the caller does not pass one.
const defaultZone = "America/Chicago"

// timeFormat renders e.g. "Friday, August 29, 2025, at 03:04 PM CDT"
const timeFormat = "Monday, January 02, 2006, at 03:04 PM MST"

// Module implements the modules.Module interface for the time tool
type Module struct{}

// New creates a new clock Module
func New() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "clock"
}

// Description returns the module description
func (m *Module) Description() string {
	return "Time lookup - current date and time in a requested IANA time zone"
}

// Tools returns all available tools
func (m *Module) Tools() []modules.Tool {
	return []modules.Tool{
		{
			Name: "get_time",
			Description: "Returns the current date and time for a time zone " +
				"(IANA name, default America/Chicago).",
			Annotations: modules.AnnotateReadOnly,
			InputSchema: modules.InputSchema{
				Type: "object",
				Properties: map[string]modules.Property{
					"time_zone": {Type: "string", Description: `IANA time zone name, e.g. "America/Chicago"`},
				},
			},
		},
	}
}

// ExecuteTool executes a tool by name
func (m *Module) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	if name != "get_time" {
		return "", goerr.New("unknown tool", goerr.V("tool", name))
	}

	zone := defaultZone
	if tz, ok := params["time_zone"].(string); ok && tz != "" {
		zone = tz
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", goerr.Wrap(err, "unknown time zone", goerr.V("time_zone", zone))
	}

	return logging.CtxTime(ctx).In(loc).Format(timeFormat), nil
}
