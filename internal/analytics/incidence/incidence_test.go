package incidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearsFrom(start, n int) []int {
	years := make([]int, n)
	for i := range years {
		years[i] = start + i
	}
	return years
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestIncidence(t *testing.T) {
	got, err := Incidence([]float64{10, 0, 5}, []float64{1e5, 2e5, 1e6}, 1e5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 0, 0.5}, got, 1e-12)

	_, err = Incidence([]float64{1}, []float64{1, 2}, 1e5)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Incidence([]float64{1, 2}, []float64{1, 0}, 1e5)
	assert.ErrorIs(t, err, ErrInvalidPopulation)
}

func TestWeightedMeanIncidence_FixedWindowLength(t *testing.T) {
	for _, n := range []int{10, 11, 25, 49} {
		years := yearsFrom(1974, n)
		out, err := WeightedMeanIncidence(constant(n, 3), constant(n, 1e6), years, DefaultOptions())
		require.NoError(t, err)

		assert.Equal(t, n-10+1, out.Len())
		assert.Equal(t, years[9:], out.Years)
	}
}

func TestWeightedMeanIncidence_Constant(t *testing.T) {
	n := 20
	out, err := WeightedMeanIncidence(constant(n, 50), constant(n, 1e6), yearsFrom(1990, n), DefaultOptions())
	require.NoError(t, err)

	for _, v := range out.Values {
		assert.InDelta(t, 5.0, v, 1e-9)
	}
}

func TestWeightedMeanIncidence_SpikeGolden(t *testing.T) {
	cases := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 10}
	pop := constant(10, 1e5)

	out, err := WeightedMeanIncidence(cases, pop, yearsFrom(2005, 10), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, []int{2014}, out.Years)

	w, err := GaussianWeights(10, 3, 2)
	require.NoError(t, err)
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	want := 1e5 * 10 / 1e5 * w[9] / sum
	assert.InDelta(t, want, out.Values[0], 1e-12)
	assert.InDelta(t, 1.3431917374258933, out.Values[0], 1e-12)
}

func TestWeightedMeanIncidence_GrowingWindow(t *testing.T) {
	n := 49
	years := yearsFrom(1974, n)
	cases := constant(n, 20)
	pop := constant(n, 2e6)

	opts := DefaultOptions()
	opts.StartYear = 1974
	out, err := WeightedMeanIncidence(cases, pop, years, opts)
	require.NoError(t, err)

	assert.Equal(t, 2022-1974+1, out.Len())
	assert.Equal(t, years, out.Years)
	for _, v := range out.Values {
		assert.InDelta(t, 1.0, v, 1e-9)
	}

	opts.StartYear = 1980
	out, err = WeightedMeanIncidence(cases, pop, years, opts)
	require.NoError(t, err)
	assert.Equal(t, 2022-1980+1, out.Len())
	assert.Equal(t, 1980, out.FirstYear())
}

func TestWeightedMeanIncidence_GrowingFirstPointIsRaw(t *testing.T) {
	years := yearsFrom(2000, 12)
	cases := []float64{7, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	pop := constant(12, 1e5)

	opts := DefaultOptions()
	opts.StartYear = 2000
	out, err := WeightedMeanIncidence(cases, pop, years, opts)
	require.NoError(t, err)

	// a one-year window degenerates to that year's incidence
	assert.InDelta(t, 7.0, out.Values[0], 1e-12)
}

func TestWeightedMeanIncidence_Errors(t *testing.T) {
	years := yearsFrom(2000, 5)

	_, err := WeightedMeanIncidence(constant(5, 1), constant(5, 1), years, DefaultOptions())
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = WeightedMeanIncidence(constant(5, 1), constant(4, 1), years, Options{Window: 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = WeightedMeanIncidence(constant(5, 1), constant(5, 1), years[:4], Options{Window: 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = WeightedMeanIncidence(constant(5, 1), constant(5, 1), years, Options{Window: -1})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = WeightedMeanIncidence(constant(5, 1), constant(5, 1), years, Options{Window: 2, StartYear: 1990})
	assert.ErrorIs(t, err, ErrStartYearNotFound)

	pop := constant(5, 1)
	pop[3] = 0
	_, err = WeightedMeanIncidence(constant(5, 1), pop, years, Options{Window: 2})
	assert.ErrorIs(t, err, ErrInvalidPopulation)
}

func TestWeightedMeanIncidence_DoesNotMutateInputs(t *testing.T) {
	cases := []float64{1, 2, 3, 4}
	pop := []float64{10, 10, 10, 10}
	years := yearsFrom(2000, 4)

	out, err := WeightedMeanIncidence(cases, pop, years, Options{Window: 2, Spread: 3, Offset: 2})
	require.NoError(t, err)

	out.Years[0] = 0
	assert.Equal(t, []float64{1, 2, 3, 4}, cases)
	assert.Equal(t, 2001, years[1])
}
