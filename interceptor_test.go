package fins

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorSeesOperationInfo(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()

	var seen []InterceptorInfo
	c.SetInterceptor(func(ic *InterceptorCtx) (interface{}, error) {
		seen = append(seen, *ic.Info())
		return ic.Invoke(nil)
	})

	require.NoError(t, c.WriteWords(ctx, "D10", []uint16{7, 8}))
	_, err := c.ReadWords(ctx, "D10", 2)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, OpWriteWords, seen[0].Operation)
	assert.Equal(t, "D10", seen[0].Address)
	assert.Equal(t, []uint16{7, 8}, seen[0].Data)
	assert.Equal(t, OpReadWords, seen[1].Operation)
	assert.Equal(t, 2, seen[1].Count)
}

func TestInterceptorShortCircuit(t *testing.T) {
	c, s := newTestPair(t)
	ctx := context.Background()

	// The interceptor answers without touching the wire; closing the
	// simulator first proves nothing was sent.
	require.NoError(t, s.Close())
	c.SetInterceptor(func(ic *InterceptorCtx) (interface{}, error) {
		return []uint16{0xDEAD}, nil
	})

	got, err := c.ReadWords(ctx, "D0", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xDEAD}, got)
}

func TestChainInterceptorsOrder(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()

	var order []string
	tag := func(name string) Interceptor {
		return func(ic *InterceptorCtx) (interface{}, error) {
			order = append(order, name+"-in")
			result, err := ic.Invoke(nil)
			order = append(order, name+"-out")
			return result, err
		}
	}
	c.SetInterceptor(ChainInterceptors(tag("outer"), tag("inner")))

	require.NoError(t, c.WriteWords(ctx, "D0", []uint16{1}))
	assert.Equal(t, []string{"outer-in", "inner-in", "inner-out", "outer-out"}, order)
}

func TestChainInterceptorsEmpty(t *testing.T) {
	c, _ := newTestPair(t)
	c.SetInterceptor(ChainInterceptors())

	got, err := c.ReadWords(context.Background(), "D0", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0}, got)
}

func TestRetryInterceptorRecovers(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()

	failures := 2
	flaky := func(ic *InterceptorCtx) (interface{}, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("transient fault")
		}
		return ic.Invoke(nil)
	}
	c.SetInterceptor(ChainInterceptors(RetryInterceptor(3, time.Millisecond), flaky))

	require.NoError(t, c.WriteWords(ctx, "D5", []uint16{42}))
	got, err := c.ReadWords(ctx, "D5", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{42}, got)
}

func TestRetryInterceptorExhausted(t *testing.T) {
	c, _ := newTestPair(t)

	attempts := 0
	c.SetInterceptor(ChainInterceptors(
		RetryInterceptor(2, time.Millisecond),
		func(ic *InterceptorCtx) (interface{}, error) {
			attempts++
			return nil, errors.New("persistent fault")
		},
	))

	_, err := c.ReadWords(context.Background(), "D0", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	assert.Equal(t, 3, attempts)
}

func TestRetryInterceptorConditionalSkipsNonRetryable(t *testing.T) {
	c, _ := newTestPair(t)

	attempts := 0
	fault := errors.New("fatal fault")
	c.SetInterceptor(ChainInterceptors(
		RetryInterceptorConditional(5, time.Millisecond, func(err error) bool { return false }),
		func(ic *InterceptorCtx) (interface{}, error) {
			attempts++
			return nil, fault
		},
	))

	_, err := c.ReadWords(context.Background(), "D0", 1)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestValidationInterceptor(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()
	c.SetInterceptor(ValidationInterceptorWithLimits(100, 100))

	_, err := c.ReadWords(ctx, "D0", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid read count")

	_, err = c.ReadWords(ctx, "D0", 101)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read count too large")

	err = c.WriteWords(ctx, "D0", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty slice")

	// Valid operations still pass through.
	require.NoError(t, c.WriteWords(ctx, "D0", []uint16{1}))
	_, err = c.ReadWords(ctx, "D0", 100)
	assert.NoError(t, err)
}

func TestReadOnlyInterceptor(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()
	c.SetInterceptor(ReadOnlyInterceptor())

	err := c.WriteWords(ctx, "D0", []uint16{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only mode")

	err = c.SetBit(ctx, "W0.0")
	require.Error(t, err)

	_, err = c.ReadWords(ctx, "D0", 1)
	assert.NoError(t, err)
}

func TestAddressRangeValidator(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()
	c.SetInterceptor(AddressRangeValidator(map[string]AddressRange{
		"D": {Min: 0, Max: 99},
	}))

	require.NoError(t, c.WriteWords(ctx, "D50", []uint16{1, 2}))

	err := c.WriteWords(ctx, "D200", []uint16{1})
	require.Error(t, err)

	// A two word write starting at D99 ends at D100, past the window.
	err = c.WriteWords(ctx, "D99", []uint16{1, 2})
	require.Error(t, err)

	// Areas outside the map are rejected outright.
	_, err = c.ReadWords(ctx, "W0", 1)
	require.Error(t, err)
}

func TestMetricsCollector(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()

	metrics := NewMetricsCollector()
	c.SetInterceptor(metrics.Interceptor())

	require.NoError(t, c.WriteWords(ctx, "D0", []uint16{1}))
	_, err := c.ReadWords(ctx, "D0", 1)
	require.NoError(t, err)
	_, err = c.ReadWords(ctx, "Z0", 1)
	require.Error(t, err)

	count, errCount, avg := metrics.GetStats(OpReadWords)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(1), errCount)
	assert.Greater(t, avg, time.Duration(0))

	all := metrics.GetAllStats()
	assert.Equal(t, int64(1), all[OpWriteWords].Count)
	assert.Equal(t, int64(0), all[OpWriteWords].Errors)

	metrics.Reset()
	count, _, _ = metrics.GetStats(OpReadWords)
	assert.Equal(t, int64(0), count)
}

func TestPrometheusMetricsInterceptor(t *testing.T) {
	c, _ := newTestPair(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)
	c.SetInterceptor(pm.Interceptor())

	require.NoError(t, c.WriteWords(ctx, "D0", []uint16{1}))
	_, err := c.ReadWords(ctx, "D0", 1)
	require.NoError(t, err)
	_, err = c.ReadWords(ctx, "Z0", 1)
	require.Error(t, err)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(pm.operations.WithLabelValues(string(OpReadWords))))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(pm.operations.WithLabelValues(string(OpWriteWords))))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(pm.errors.WithLabelValues(string(OpReadWords))))
}

func TestOperationTypeIsWrite(t *testing.T) {
	assert.True(t, OpWriteWords.IsWrite())
	assert.True(t, OpSetBit.IsWrite())
	assert.True(t, OpFillArea.IsWrite())
	assert.True(t, OpNameSet.IsWrite())
	assert.False(t, OpReadWords.IsWrite())
	assert.False(t, OpReadClock.IsWrite())
	assert.False(t, OpCPUUnitStatus.IsWrite())
}
