package timeline

// TimeType distinguishes the two kinds of logical time axis a Timeline can
// carry.
type TimeType int

const (
	// Sequence is an integer counter axis (e.g. frame number).
	Sequence TimeType = iota
	// Duration is a nanosecond-resolution wall/relative-time axis.
	Duration
)

func (t TimeType) String() string {
	switch t {
	case Sequence:
		return "sequence"
	case Duration:
		return "duration"
	default:
		return "unknown"
	}
}

// Timeline is a named logical time axis. Two timelines with the same name
// but a different TimeType are distinct (spec §3).
type Timeline struct {
	name string
	typ  TimeType
}

// New returns the timeline identified by (name, typ).
func New(name string, typ TimeType) Timeline {
	return Timeline{name: name, typ: typ}
}

func (t Timeline) Name() string  { return t.name }
func (t Timeline) Type() TimeType { return t.typ }

func (t Timeline) String() string { return t.name + "(" + t.typ.String() + ")" }
