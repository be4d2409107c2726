package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "PAGE_LOAD_TIMEOUT", Outcome(fmt.Errorf("job: %w", engine.NewEngineError(engine.ErrCodePageLoadTimeout, "timeout", nil))))
	require.Equal(t, "error", Outcome(errors.New("other")))
}

func TestJobsTotalCounts(t *testing.T) {
	before := testutil.ToFloat64(JobsTotal.WithLabelValues("ok"))
	JobsTotal.WithLabelValues(Outcome(nil)).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(JobsTotal.WithLabelValues("ok")))
}
