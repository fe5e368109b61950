package utils

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Matrix functions used for the calculations in the program

// r = rows of matrix
// c = columns of matrix
// o = output
// m = matrix input number 1
// n = matrix input number 2

func Dot(m, n mat.Matrix) mat.Matrix {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Product(m, n)
	return o
}

func Apply(fn func(i, j int, v float64) float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

func Scale(s float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

func Multiply(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.MulElem(m, n)
	return o
}

func Add(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Add(m, n)
	return o
}

func Subtract(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Sub(m, n)
	return o
}

func ToDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

func ZerosLike(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	return mat.NewDense(r, c, nil)
}

// RandomArray fills a slice with uniform values in [-1/sqrt(v), 1/sqrt(v)].
func RandomArray(size int, v float64) []float64 {
	min := -1.0 / math.Sqrt(v+1e-12)
	max := 1.0 / math.Sqrt(v+1e-12)
	out := make([]float64, size)
	for i := 0; i < size; i++ {
		out[i] = min + (max-min)*rand.Float64()
	}
	return out
}

func Sigmoid(i, j int, v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}

func Tanh(i, j int, v float64) float64 {
	return math.Tanh(v)
}

// AddBias adds the (r x 1) column vector b to every column of m in place.
func AddBias(m, b *mat.Dense) {
	r, c := m.Dims()
	br, bc := b.Dims()
	if br != r || bc != 1 {
		panic("AddBias: bias must be a column vector matching m's rows")
	}
	for i := 0; i < r; i++ {
		bi := b.At(i, 0)
		for j := 0; j < c; j++ {
			m.Set(i, j, m.At(i, j)+bi)
		}
	}
}

// ---------- Softmax variants ----------

// RowSoftmax applies softmax independently to each row across columns.
// Used by attention (one row per batch element; row sums should be 1).
func RowSoftmax(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		// numerical stability: subtract row max
		mx := m.At(i, 0)
		for j := 1; j < c; j++ {
			if m.At(i, j) > mx {
				mx = m.At(i, j)
			}
		}
		sum := 0.0
		for j := 0; j < c; j++ {
			e := math.Exp(m.At(i, j) - mx)
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < c; j++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}

// ColSoftmax applies softmax independently to each column across rows.
// Used for logits -> probabilities, one column per batch element.
func ColSoftmax(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		mx := m.At(0, j)
		for i := 1; i < r; i++ {
			if m.At(i, j) > mx {
				mx = m.At(i, j)
			}
		}
		sum := 0.0
		for i := 0; i < r; i++ {
			e := math.Exp(m.At(i, j) - mx)
			out.Set(i, j, e)
			sum += e
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}
