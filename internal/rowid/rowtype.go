package rowid

// RowID uniquely identifies a single row across the entire store (spec
// §3: "A single RowId value is unique across the whole store"). Total
// order over RowID defines "later" for tie-breaking at equal timestamps.
type RowID struct{ id ID }

var rowGen generator

// NextRowID returns a RowID strictly greater than every RowID previously
// returned by NextRowID in this process.
func NextRowID() RowID { return RowID{rowGen.next()} }

// RandomRowID returns a fresh RowID whose wall-clock prefix is >= every
// prefix previously issued by NextRowID/RandomRowID in this process.
func RandomRowID() RowID { return RowID{rowGen.random()} }

// ParseRowID parses the 26-character base32hex representation of a RowID.
func ParseRowID(s string) (RowID, error) {
	id, err := parse(s)
	return RowID{id}, err
}

func (r RowID) Compare(other RowID) int { return r.id.Compare(other.id) }
func (r RowID) String() string          { return r.id.String() }
func (r RowID) Nanos() uint64           { return r.id.Nanos() }
func (r RowID) Counter() uint64         { return r.id.Counter() }
func (r RowID) Less(other RowID) bool   { return r.Compare(other) < 0 }

// Zero reports whether r is the zero-value RowID, never issued by
// NextRowID/RandomRowID.
func (r RowID) Zero() bool { return r.id == ID{} }
