package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
}

func TestShape_Validate(t *testing.T) {
	require.NoError(t, Shape{1, 2}.Validate())
	assert.Error(t, Shape{1, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestShape_Axis(t *testing.T) {
	s := Shape{2, 5, 5, 3}
	assert.Equal(t, 3, s.Axis(-1))
	assert.Equal(t, 1, s.Axis(1))
	assert.Equal(t, -1, s.Axis(4))
	assert.Equal(t, -1, s.Axis(-5))
}

func TestShape_ComputeStrides(t *testing.T) {
	assert.Equal(t, []int{60, 20, 5, 1}, Shape{2, 3, 4, 5}.ComputeStrides())
}

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, float32(2), x.At(0, 1))

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
}

func TestReshape_SharesStorage(t *testing.T) {
	x := Zeros(Shape{2, 2, 2, 3})
	flat, err := x.Reshape(2, -1)
	require.NoError(t, err)
	assert.True(t, flat.Shape().Equal(Shape{2, 12}))

	flat.Set(7, 1, 11)
	assert.Equal(t, float32(7), x.At(1, 1, 1, 2))

	_, err = x.Reshape(5, -1)
	assert.Error(t, err)
	_, err = x.Reshape(4, 4)
	assert.Error(t, err)
}

func TestClone_IsDeep(t *testing.T) {
	x := Ones(Shape{3})
	c := x.Clone()
	c.Set(5, 0)
	assert.Equal(t, float32(1), x.At(0))
}

func TestDataType(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Int64} {
		parsed, ok := ParseDataType(dt.String())
		require.True(t, ok)
		assert.Equal(t, dt, parsed)
	}
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Int64.Size())
	_, ok := ParseDataType("bool")
	assert.False(t, ok)
}
