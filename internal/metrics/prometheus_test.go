package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPICall(t *testing.T) {
	before := testutil.ToFloat64(APICallsTotal.WithLabelValues("roster", "200"))
	RecordAPICall("roster", "200", 0.12)
	assert.Equal(t, before+1, testutil.ToFloat64(APICallsTotal.WithLabelValues("roster", "200")))
}

func TestRecordSync_SuccessStampsLastSync(t *testing.T) {
	LastSuccessfulSync.Set(0)

	RecordSync("rebuild", "failed", 1)
	assert.Equal(t, float64(0), testutil.ToFloat64(LastSuccessfulSync))

	RecordSync("rebuild", "success", 1)
	assert.Greater(t, testutil.ToFloat64(LastSuccessfulSync), float64(0))
}

func TestRecordPenalty(t *testing.T) {
	before := testutil.ToFloat64(PacerPenaltiesTotal)
	RecordPenalty(10)
	RecordPenalty(20)
	assert.Equal(t, before+2, testutil.ToFloat64(PacerPenaltiesTotal))
}

func TestGauges(t *testing.T) {
	SetBreakerState(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(BreakerState))

	UpdatePlayersInStore(1696)
	assert.Equal(t, float64(1696), testutil.ToFloat64(PlayersInStore))

	UpdateDBConnectionStats(3, 7)
	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, float64(7), testutil.ToFloat64(DBConnectionsIdle))
}

func TestLabelledCounters(t *testing.T) {
	before := testutil.ToFloat64(BackfillsTotal.WithLabelValues("failed"))
	RecordBackfill("failed")
	assert.Equal(t, before+1, testutil.ToFloat64(BackfillsTotal.WithLabelValues("failed")))

	beforeHit := testutil.ToFloat64(CacheHitsTotal.WithLabelValues("memo"))
	RecordCacheHit("memo")
	RecordCacheMiss("memo")
	assert.Equal(t, beforeHit+1, testutil.ToFloat64(CacheHitsTotal.WithLabelValues("memo")))
}
