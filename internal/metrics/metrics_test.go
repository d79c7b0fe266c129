package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFeed(t *testing.T) {
	before := testutil.ToFloat64(FeedRequestsTotal.WithLabelValues("for-you", "trending"))

	ObserveFeed("for-you", "trending", 3*time.Millisecond)

	after := testutil.ToFloat64(FeedRequestsTotal.WithLabelValues("for-you", "trending"))
	assert.Equal(t, before+1, after)
}

func TestAddXP(t *testing.T) {
	before := testutil.ToFloat64(XPAwardedTotal.WithLabelValues("post"))

	AddXP("post", 20)
	AddXP("post", 0)

	assert.Equal(t, before+20, testutil.ToFloat64(XPAwardedTotal.WithLabelValues("post")))
}

func TestSetCircuitState(t *testing.T) {
	SetCircuitState(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(LLMCircuitState))
	SetCircuitState(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(LLMCircuitState))
}
