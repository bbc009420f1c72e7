package resources

import "time"

type Field string

// MaxValue acota cualquier valor del ledger y cualquier delta de entrada;
// entra holgado en una columna INTEGER.
const MaxValue = 1_000_000

const (
	FieldHealth      Field = "health"
	FieldVitality    Field = "vitality"
	FieldMaxVitality Field = "max_vitality"
	FieldTravel      Field = "travel"
	FieldMaxTravel   Field = "max_travel"
	FieldReserve     Field = "reserve"
	FieldMaxReserve  Field = "max_reserve"
	FieldProgress    Field = "progress"
)

// Fields en orden canónico (el mismo del vector de efectos).
var Fields = []Field{
	FieldHealth,
	FieldVitality,
	FieldMaxVitality,
	FieldTravel,
	FieldMaxTravel,
	FieldReserve,
	FieldMaxReserve,
	FieldProgress,
}

// Cap devuelve el máximo que acota a un current (vitality, travel, reserve).
func (f Field) Cap() (Field, bool) {
	switch f {
	case FieldVitality:
		return FieldMaxVitality, true
	case FieldTravel:
		return FieldMaxTravel, true
	case FieldReserve:
		return FieldMaxReserve, true
	}
	return "", false
}

func (f Field) IsMax() bool {
	return f == FieldMaxVitality || f == FieldMaxTravel || f == FieldMaxReserve
}

// State es la fila del ledger de un holder. Health y progress no tienen máximo.
type State struct {
	HolderID string

	Health      int
	Vitality    int
	MaxVitality int
	Travel      int
	MaxTravel   int
	Reserve     int
	MaxReserve  int
	Progress    int

	Version   int64
	UpdatedAt time.Time
}

func (s State) Value(f Field) int {
	switch f {
	case FieldHealth:
		return s.Health
	case FieldVitality:
		return s.Vitality
	case FieldMaxVitality:
		return s.MaxVitality
	case FieldTravel:
		return s.Travel
	case FieldMaxTravel:
		return s.MaxTravel
	case FieldReserve:
		return s.Reserve
	case FieldMaxReserve:
		return s.MaxReserve
	case FieldProgress:
		return s.Progress
	}
	return 0
}

func (s *State) set(f Field, v int) {
	switch f {
	case FieldHealth:
		s.Health = v
	case FieldVitality:
		s.Vitality = v
	case FieldMaxVitality:
		s.MaxVitality = v
	case FieldTravel:
		s.Travel = v
	case FieldMaxTravel:
		s.MaxTravel = v
	case FieldReserve:
		s.Reserve = v
	case FieldMaxReserve:
		s.MaxReserve = v
	case FieldProgress:
		s.Progress = v
	}
}

// ApplyDelta suma delta a f. Todo valor queda >= 0; con clampMax un current
// con máximo queda <= su máximo, y bajar un máximo arrastra a su current.
func (s State) ApplyDelta(f Field, delta int, clampMax bool) State {
	next := addBounded(s.Value(f), delta)
	if capField, ok := f.Cap(); ok && clampMax {
		next = min(next, s.Value(capField))
	}
	s.set(f, next)

	if f.IsMax() && clampMax {
		for _, cur := range Fields {
			if capField, ok := cur.Cap(); ok && capField == f {
				s.set(cur, min(s.Value(cur), next))
			}
		}
	}
	return s
}

// addBounded suma saturando en [0, MaxValue]; nunca desborda int.
func addBounded(v, delta int) int {
	if delta > 0 && v > MaxValue-delta {
		return MaxValue
	}
	return min(max(v+delta, 0), MaxValue)
}

// Clamp lleva cada valor a [0, MaxValue] y cada current acotado a [0, max].
func (s State) Clamp() State {
	for _, f := range Fields {
		v := min(max(s.Value(f), 0), MaxValue)
		if capField, ok := f.Cap(); ok {
			v = min(v, max(s.Value(capField), 0))
		}
		s.set(f, v)
	}
	return s
}

// Patch son los campos que efectivamente cambian en una escritura parcial.
type Patch map[Field]int

// Diff devuelve solo los campos de next que difieren de prev.
func Diff(prev, next State) Patch {
	p := Patch{}
	for _, f := range Fields {
		if prev.Value(f) != next.Value(f) {
			p[f] = next.Value(f)
		}
	}
	return p
}

func (s State) WithPatch(p Patch) State {
	for f, v := range p {
		s.set(f, v)
	}
	return s
}
