package ybus_test

import (
	"testing"

	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/ybus"
	"github.com/stretchr/testify/require"
)

func twoBusNetwork(t *testing.T, shift float64) *network.Network {
	t.Helper()
	n := network.New(100)
	require.NoError(t, n.AddBus(network.Bus{ID: 1, BaseKV: 138}))
	require.NoError(t, n.AddBus(network.Bus{ID: 2, BaseKV: 138}))
	require.NoError(t, n.DesignateSlack(1))
	require.NoError(t, n.AddBranch(network.Branch{
		Name: "L1-2", From: 1, To: 2, R: 0.01, X: 0.1, BC: 0.02, Tap: 1.0, Shift: shift, Status: true,
	}))
	return n
}

func TestBuildTwoBusSymmetricNoShift(t *testing.T) {
	n := twoBusNetwork(t, 0)
	yb, err := ybus.Build(n)
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, yb.BusOrder)
	require.True(t, yb.Symmetric())

	i, ok := yb.IndexOf(1)
	require.True(t, ok)
	j, ok := yb.IndexOf(2)
	require.True(t, ok)

	z := complex(0.01, 0.1)
	y := 1 / z
	yc := complex(0, 0.01)

	vii, err := yb.Y.At(i, i)
	require.NoError(t, err)
	require.InDelta(t, real(y+yc), real(vii), 1e-9)
	require.InDelta(t, imag(y+yc), imag(vii), 1e-9)

	vjj, err := yb.Y.At(j, j)
	require.NoError(t, err)
	require.InDelta(t, real(vii), real(vjj), 1e-9)
	require.InDelta(t, imag(vii), imag(vjj), 1e-9)

	vij, err := yb.Y.At(i, j)
	require.NoError(t, err)
	vji, err := yb.Y.At(j, i)
	require.NoError(t, err)
	require.InDelta(t, real(-y), real(vij), 1e-9)
	require.InDelta(t, real(vij), real(vji), 1e-9)
	require.InDelta(t, imag(vij), imag(vji), 1e-9)
}

func TestBuildPhaseShifterBreaksSymmetry(t *testing.T) {
	n := twoBusNetwork(t, 0.1)
	yb, err := ybus.Build(n)
	require.NoError(t, err)
	require.False(t, yb.Symmetric())
}

func TestBuildSkipsOutOfServiceBranch(t *testing.T) {
	n := network.New(100)
	require.NoError(t, n.AddBus(network.Bus{ID: 1, BaseKV: 138}))
	require.NoError(t, n.AddBus(network.Bus{ID: 2, BaseKV: 138}))
	require.NoError(t, n.DesignateSlack(1))
	require.NoError(t, n.AddBranch(network.Branch{
		Name: "L1-2", From: 1, To: 2, R: 0.01, X: 0.1, Tap: 1.0, Status: false,
	}))

	yb, err := ybus.Build(n)
	require.NoError(t, err)
	v, err := yb.Y.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, complex(0, 0), v)
}

func TestBuildShuntAddsToDiagonal(t *testing.T) {
	n := network.New(100)
	require.NoError(t, n.AddBus(network.Bus{ID: 1, BaseKV: 138}))
	require.NoError(t, n.DesignateSlack(1))
	require.NoError(t, n.AddShunt(network.Shunt{BusID: 1, Gs: 0.02, Bs: -0.01}))

	yb, err := ybus.Build(n)
	require.NoError(t, err)
	v, err := yb.Y.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, complex(0.02, -0.01), v)
}

func TestBuildRejectsTinyImpedance(t *testing.T) {
	n := network.New(100)
	require.NoError(t, n.AddBus(network.Bus{ID: 1, BaseKV: 138}))
	require.NoError(t, n.AddBus(network.Bus{ID: 2, BaseKV: 138}))
	// AddBranch itself only rejects exact r==0&&x==0; a magnitude below
	// 1e-12 with nonzero r and x individually must be caught by Build.
	require.NoError(t, n.AddBranch(network.Branch{
		Name: "tiny", From: 1, To: 2, R: 1e-13, X: 1e-13, Tap: 1.0, Status: true,
	}))

	_, err := ybus.Build(n)
	require.Error(t, err)
}

func TestBuildRejectsEmptyNetwork(t *testing.T) {
	n := network.New(100)
	_, err := ybus.Build(n)
	require.Error(t, err)
}

func TestBuildDeterministicAcrossRuns(t *testing.T) {
	n := twoBusNetwork(t, 0.05)
	first, err := ybus.Build(n)
	require.NoError(t, err)
	second, err := ybus.Build(n)
	require.NoError(t, err)

	for i := 0; i < first.Y.Rows(); i++ {
		for j := 0; j < first.Y.Cols(); j++ {
			a, _ := first.Y.At(i, j)
			b, _ := second.Y.At(i, j)
			require.Equal(t, a, b)
		}
	}
}
