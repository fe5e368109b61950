package utils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRowSoftmaxRowsSumToOne(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, -1, 0, 1000})
	out := RowSoftmax(m)
	for i := 0; i < 2; i++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			sum += out.At(i, j)
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Fatalf("row %d sums to %g", i, sum)
		}
	}
	// large values must not overflow thanks to the max shift
	if v := out.At(1, 2); math.IsNaN(v) || math.Abs(v-1.0) > 1e-12 {
		t.Fatalf("expected saturated weight 1, got %g", v)
	}
}

func TestColSoftmaxColumnsSumToOne(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, -5, 2, 0, 3, 5})
	out := ColSoftmax(m)
	for j := 0; j < 2; j++ {
		sum := 0.0
		for i := 0; i < 3; i++ {
			sum += out.At(i, j)
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Fatalf("column %d sums to %g", j, sum)
		}
	}
}

func TestAddBias(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 1, []float64{10, 20})
	AddBias(m, b)
	want := []float64{11, 12, 23, 24}
	for i, w := range want {
		if got := m.RawMatrix().Data[i]; got != w {
			t.Fatalf("data[%d]=%g, want %g", i, got, w)
		}
	}
}

func TestRandomArrayBounds(t *testing.T) {
	v := 4.0
	bound := 1.0 / math.Sqrt(v)
	for _, x := range RandomArray(1000, v) {
		if x < -bound || x > bound {
			t.Fatalf("value %g outside [-%g, %g]", x, bound, bound)
		}
	}
}
