package trunk

import "math"

// Vector is a flat numeric vector.
type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func (v Vector) Dot(other Vector) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

func (v Vector) Add(other Vector) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

func (v Vector) Scale(factor float64) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Zeros returns a zero vector of length n.
func Zeros(n int) Vector {
	return make(Vector, n)
}

// State is the value the engine advances: a concatenated position+velocity
// vector (first half position, second half velocity), a scalar energy, and
// named extension records the engine writes diagnostics into but never reads.
type State struct {
	Vector     Vector
	Energy     float64
	Extensions map[string]any
}

func NewState(vec Vector) *State {
	return &State{
		Vector:     vec,
		Extensions: make(map[string]any),
	}
}

// Clone is a shallow duplicate: the vector and the extension map are copied,
// the extension records themselves are shared.
func (s *State) Clone() *State {
	ext := make(map[string]any, len(s.Extensions))
	for k, v := range s.Extensions {
		ext[k] = v
	}
	return &State{
		Vector:     s.Vector.Clone(),
		Energy:     s.Energy,
		Extensions: ext,
	}
}

// Dim returns the spatial dimension, or an error for an odd-length vector.
func (s *State) Dim() (int, error) {
	n := len(s.Vector)
	if n%2 != 0 {
		return 0, oddLengthError(n)
	}
	return n / 2, nil
}

// Split returns the position and velocity halves as views into the vector.
func (s *State) Split() (x, v Vector) {
	half := len(s.Vector) / 2
	return s.Vector[:half], s.Vector[half:]
}

func (s *State) SetExtension(name string, record any) {
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	s.Extensions[name] = record
}

func (s *State) Extension(name string) (any, bool) {
	rec, ok := s.Extensions[name]
	return rec, ok
}
