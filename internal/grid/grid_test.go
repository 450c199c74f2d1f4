package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// band is an in-memory Source.
type band struct {
	rows, cols int
	data       []float64
	nodata     *float64
}

func (b *band) Rows() int { return b.rows }
func (b *band) Cols() int { return b.cols }
func (b *band) At(col, row int) float64 { return b.data[row*b.cols+col] }

type nodataBand struct{ *band }

func (b nodataBand) IsNoData(v float64) bool {
	return math.IsNaN(v) || v == *b.nodata
}

func filled(rows, cols int, v float64) *band {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return &band{rows: rows, cols: cols, data: data}
}

func randomBand(rows, cols int, seed int64) *band {
	rng := rand.New(rand.NewSource(seed))
	b := filled(rows, cols, 0)
	for i := range b.data {
		b.data[i] = float64(rng.Intn(256))
	}
	return b
}

func TestAggregate_FullySunlit(t *testing.T) {
	g, err := Aggregate(filled(20, 20, 255), 5, 255)
	require.NoError(t, err)
	require.Equal(t, 4, g.Rows())
	require.Equal(t, 4, g.Cols())
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, 1.0, g.Cell(i, j))
			assert.Equal(t, 0.0, g.Invert().Cell(i, j))
		}
	}
}

func TestAggregate_Truncates(t *testing.T) {
	tests := []struct {
		rows, cols, block int
		wantR, wantC      int
	}{
		{20, 20, 5, 4, 4},
		{23, 17, 5, 4, 3},
		{4, 4, 5, 0, 0},
		{7, 100, 1, 7, 100},
		{9, 9, 3, 3, 3},
	}
	for _, tt := range tests {
		g, err := Aggregate(filled(tt.rows, tt.cols, 10), tt.block, 255)
		require.NoError(t, err)
		assert.Equal(t, tt.wantR, g.Rows(), "%dx%d b=%d rows", tt.rows, tt.cols, tt.block)
		assert.Equal(t, tt.wantC, g.Cols(), "%dx%d b=%d cols", tt.rows, tt.cols, tt.block)
	}
}

func TestAggregate_BlockSum(t *testing.T) {
	// 4x4 raster, b=2: top-left block {0,1,4,5}.
	b := filled(4, 4, 0)
	for i := range b.data {
		b.data[i] = float64(i)
	}
	g, err := Aggregate(b, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, (0.+1+4+5)/4, g.Cell(0, 0))
	assert.Equal(t, (2.+3+6+7)/4, g.Cell(0, 1))
	assert.Equal(t, (8.+9+12+13)/4, g.Cell(1, 0))
	assert.Equal(t, (10.+11+14+15)/4, g.Cell(1, 1))
}

func TestAggregate_Bounded(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g, err := Aggregate(randomBand(37, 41, seed), 4, 255)
		require.NoError(t, err)
		for _, v := range g.Values() {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	src := randomBand(30, 30, 42)
	a, err := Aggregate(src, 3, 255)
	require.NoError(t, err)
	b, err := Aggregate(src, 3, 255)
	require.NoError(t, err)
	assert.Equal(t, a.Values(), b.Values())
}

func TestAggregate_InvalidArguments(t *testing.T) {
	src := filled(10, 10, 1)
	for _, b := range []int{0, -1} {
		_, err := Aggregate(src, b, 255)
		assert.ErrorIs(t, err, ErrBlockSize)
	}
	_, err := Aggregate(src, 2, 0)
	assert.ErrorIs(t, err, ErrMaxValue)
	_, err = Aggregate(src, 2, math.NaN())
	assert.ErrorIs(t, err, ErrMaxValue)
}

func TestMean(t *testing.T) {
	a, err := New(1, 2, []float64{0.2, 0.4})
	require.NoError(t, err)
	b, err := New(1, 2, []float64{0.6, 1.0})
	require.NoError(t, err)

	m, err := Mean(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, m.Cell(0, 0), 1e-12)
	assert.InDelta(t, 0.7, m.Cell(0, 1), 1e-12)

	single, err := Mean(a)
	require.NoError(t, err)
	assert.Equal(t, a.Values(), single.Values())

	_, err = Mean()
	assert.ErrorIs(t, err, ErrEmptySeries)

	c, err := New(2, 1, []float64{0, 0})
	require.NoError(t, err)
	_, err = Mean(a, c)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPool(t *testing.T) {
	nd := -9999.0
	b := &band{rows: 2, cols: 4, data: []float64{
		1, 3, nd, nd,
		5, nd, nd, math.NaN(),
	}, nodata: &nd}

	g, err := Pool(nodataBand{b}, 2)
	require.NoError(t, err)
	require.Equal(t, 1, g.Rows())
	require.Equal(t, 2, g.Cols())
	assert.Equal(t, 3.0, g.Cell(0, 0))
	assert.True(t, math.IsNaN(g.Cell(0, 1)))
	assert.Equal(t, []float64{3}, g.Values())

	// Without a declared nodata value the sentinel is an ordinary sample.
	plain, err := Pool(b, 2)
	require.NoError(t, err)
	assert.Equal(t, (1.+3+5+nd)/4, plain.Cell(0, 0))

	_, err = Pool(b, 0)
	assert.ErrorIs(t, err, ErrBlockSize)
}

func TestNew_ShapeMismatch(t *testing.T) {
	_, err := New(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
