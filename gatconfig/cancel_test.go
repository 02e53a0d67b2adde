package gatconfig_test

import (
	"testing"
	"time"

	"github.com/gatcore/gat/gatconfig"
	"github.com/stretchr/testify/require"
)

func TestCancelTokenNilIsSafe(t *testing.T) {
	var tok *gatconfig.CancelToken
	require.False(t, tok.Cancelled())
	tok.Cancel() // must not panic
}

func TestCancelTokenFires(t *testing.T) {
	tok := gatconfig.NewCancelToken()
	require.False(t, tok.Cancelled())
	tok.Cancel()
	require.True(t, tok.Cancelled())
	tok.Cancel() // idempotent
	require.True(t, tok.Cancelled())
}

func TestDeadlineZeroNeverExpires(t *testing.T) {
	var d gatconfig.Deadline
	require.False(t, d.Expired())
	require.Greater(t, d.Remaining(), time.Hour)
}

func TestDeadlineExpires(t *testing.T) {
	d := gatconfig.NewDeadline(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.True(t, d.Expired())
}
