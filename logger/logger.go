package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/remiges-tech/logharbour/logharbour"
)

// Level names accepted in configuration.
const (
	LevelDefault = "default"
	LevelInfo    = "info"
	LevelDebug   = "debug"
)

// LoadLogger creates the application logger writing JSON log entries to w,
// or to stdout when w is nil. An empty level selects the default priority;
// "debug" lets every debug entry through.
func LoadLogger(appName string, w io.Writer, level string) (*logharbour.Logger, error) {
	priority := logharbour.DefaultPriority
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", LevelDefault:
	case LevelInfo:
		priority = logharbour.Info
	case LevelDebug:
		priority = logharbour.Debug2
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	if w == nil {
		w = os.Stdout
	}
	lctx := logharbour.NewLoggerContext(priority)
	return logharbour.NewLogger(lctx, appName, w), nil
}
