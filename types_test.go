package sa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsProject(t *testing.T) {
	box := NewBounds(-1, 2)

	assert.Equal(t, 2.0, box.Project(5))
	assert.Equal(t, -1.0, box.Project(-5))
	assert.Equal(t, 0.5, box.Project(0.5))
	assert.Equal(t, 2.0, box.Project(2))
	assert.Equal(t, -1.0, box.Project(-1))

	// Absent sides are unconstrained.
	assert.Equal(t, 1e9, Bounds{}.Project(1e9))
	assert.Equal(t, -1e9, Bounds{}.WithUpper(3).Project(-1e9))
	assert.Equal(t, 3.0, Bounds{}.WithUpper(3).Project(1e9))
	assert.Equal(t, 1e9, Bounds{}.WithLower(3).Project(1e9))
	assert.Equal(t, 3.0, Bounds{}.WithLower(3).Project(-1e9))
}

func TestBoundsProjectUpperFirst(t *testing.T) {
	// Inverted boxes are rejected by Validate; Project still checks the
	// upper side first.
	inverted := Bounds{Lower: 5, Upper: -5, HasLower: true, HasUpper: true}

	assert.Equal(t, -5.0, inverted.Project(0))
	assert.Error(t, inverted.Validate())
}

func TestBoundsProjectIdempotent(t *testing.T) {
	boxes := []Bounds{
		{},
		NewBounds(-50, 50),
		NewBounds(0, 0),
		Bounds{}.WithLower(-3),
		Bounds{}.WithUpper(7.5),
	}

	xs := []float64{-1e12, -51, -50, -3.1, -0.0, 0, 1e-9, 7.5, 49.99, 50, 1e300}

	for _, b := range boxes {
		for _, x := range xs {
			once := b.Project(x)

			assert.Equal(t, once, b.Project(once), "bounds %+v, x %v", b, x)
		}
	}
}

func TestBoundsValidate(t *testing.T) {
	assert.NoError(t, Bounds{}.Validate())
	assert.NoError(t, NewBounds(1, 1).Validate())
	assert.NoError(t, Bounds{}.WithLower(10).Validate())

	assert.ErrorIs(t, NewBounds(2, 1).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Bounds{}.WithLower(math.NaN()).Validate(), ErrInvalidConfig)
}

func TestDefaultIterationsByVariant(t *testing.T) {
	assert.Equal(t, 100, KW.DefaultIterations())
	assert.Equal(t, 100, RM.DefaultIterations())
	assert.Equal(t, 1000, StarSA.DefaultIterations())
	assert.Equal(t, 1000, RSA.DefaultIterations())
	assert.Equal(t, 1000, IASA.DefaultIterations())
	assert.Equal(t, 0, ACSA.DefaultIterations())
}

func TestAdapters(t *testing.T) {
	r, err := Response(func(x float64) float64 { return 2 * x })(3)
	assert.NoError(t, err)
	assert.Equal(t, 6.0, r)

	g, err := Gradient(func(x float64) float64 { return -x })(3)
	assert.NoError(t, err)
	assert.Equal(t, -3.0, g)
}
