package cli

import (
	"context"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/store"
)

// recorder wraps the session store so commands can log attempts without
// caring whether recording is enabled or the store failed to open. A failed
// open degrades to a no-op with a verbose note; the pipeline never fails
// because its log did.
type recorder struct {
	st        *store.Store
	formatter *OutputFormatter
}

func openRecorder(_ context.Context, path string, disabled bool, formatter *OutputFormatter) *recorder {
	if disabled {
		return &recorder{formatter: formatter}
	}
	st, err := store.Open(path)
	if err != nil {
		formatter.VerboseLog("session log unavailable: %v", err)
		return &recorder{formatter: formatter}
	}
	return &recorder{st: st, formatter: formatter}
}

func (r *recorder) Record(ctx context.Context, a store.Attempt) {
	if r.st == nil {
		return
	}
	if err := r.st.Record(ctx, a); err != nil {
		r.formatter.VerboseLog("recording attempt: %v", err)
	}
}

func (r *recorder) Close() {
	if r.st == nil {
		return
	}
	if err := r.st.Close(); err != nil {
		r.formatter.VerboseLog("closing session log: %v", err)
	}
}
