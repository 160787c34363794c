package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig("test")
	cfg.FailureThreshold = 3
	cfg.Timeout = 50 * time.Millisecond
	return cfg
}

func TestExecute_Success(t *testing.T) {
	cb, err := New(testConfig(), nil)
	require.NoError(t, err)

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, StateClosed, cb.GetState())
}

func TestExecute_PropagatesFunctionError(t *testing.T) {
	cb, err := New(testConfig(), nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = cb.Execute(context.Background(), func() (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, ErrOpen(err))
	require.Equal(t, uint32(1), cb.Counts().TotalFailures)
}

func TestExecute_OpensOnConsecutiveFailures(t *testing.T) {
	cb, err := New(testConfig(), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, execErr := cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, errors.New("boom")
		})
		require.Error(t, execErr)
	}
	require.True(t, cb.IsOpen())

	_, err = cb.Execute(context.Background(), func() (interface{}, error) {
		return "should not run", nil
	})
	require.True(t, ErrOpen(err))
}

func TestExecute_RecoversAfterTimeout(t *testing.T) {
	cb, err := New(testConfig(), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, errors.New("boom")
		})
	}
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", result)
}
