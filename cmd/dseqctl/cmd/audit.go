package cmd

import (
	"github.com/dmrogers-hpc/dseq/internal/audit"
)

// buildAuditRecorder constructs the Recorder named by the loaded
// config, falling back to a no-op (and a logged warning) if
// construction fails rather than aborting a demo/benchmark run over
// it.
func buildAuditRecorder() audit.Recorder {
	c := GetConfig()
	if c == nil {
		return audit.NewNoop()
	}
	rec, err := audit.New(&c.Audit)
	if err != nil {
		GetLogger().Warn("audit recorder disabled: %v", err)
		return audit.NewNoop()
	}
	return rec
}
