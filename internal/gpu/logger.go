package gpu

import (
	"log/slog"

	"github.com/gogpu/glade"
)

// slogger returns the module logger. internal/gpu has no logger of its
// own; warnings flow through the root package's atomic logger, so
// glade.SetLogger propagates here without extra plumbing.
func slogger() *slog.Logger { return glade.Logger() }
