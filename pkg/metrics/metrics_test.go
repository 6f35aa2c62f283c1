package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordInference(t *testing.T) {
	in := InferenceTokensTotal.WithLabelValues("test-model", "in")
	out := InferenceTokensTotal.WithLabelValues("test-model", "out")
	beforeIn, beforeOut := testutil.ToFloat64(in), testutil.ToFloat64(out)

	RecordInference("test-model", "success", 0.5, 12, 30)
	RecordInference("test-model", "error", 0.1, 0, 0)

	require.Equal(t, beforeIn+12, testutil.ToFloat64(in))
	require.Equal(t, beforeOut+30, testutil.ToFloat64(out))
}

func TestRecordRequest(t *testing.T) {
	counter := RequestsTotal.WithLabelValues("GET", "/api/v1/session", "200")
	before := testutil.ToFloat64(counter)

	RecordRequest("GET", "/api/v1/session", "200", 0.01)

	require.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordPersist(t *testing.T) {
	RecordPersist("personas", nil, 0.001)
	RecordPersist("personas", errors.New("disk full"), 0.001)

	require.Equal(t, 2, testutil.CollectAndCount(PersistDuration, "persist_duration_seconds"))
}
