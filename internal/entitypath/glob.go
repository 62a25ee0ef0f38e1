package entitypath

import "github.com/bmatcuk/doublestar/v4"

// Glob is a compiled entity-path pattern using doublestar syntax ('*' within
// a part, '**' across parts) for subscription filters.
type Glob struct {
	pattern string
}

// NewGlob validates pattern and returns a reusable Glob matcher.
func NewGlob(pattern string) (Glob, error) {
	if !doublestar.ValidatePattern(pattern) {
		return Glob{}, &invalidPatternError{pattern: pattern}
	}
	return Glob{pattern: pattern}, nil
}

type invalidPatternError struct{ pattern string }

func (e *invalidPatternError) Error() string {
	return "entitypath: invalid glob pattern " + e.pattern
}

// Match reports whether p's canonical string form matches the glob. The
// leading '/' is stripped before matching so patterns are written relative
// to the root, e.g. "world/**/points".
func (g Glob) Match(p Path) bool {
	target := p.String()
	if len(target) > 0 && target[0] == '/' {
		target = target[1:]
	}
	ok, _ := doublestar.Match(g.pattern, target)
	return ok
}

func (g Glob) String() string { return g.pattern }

// MatchGlob is a convenience for matching p against a raw pattern string
// without pre-compiling a Glob.
func (p Path) MatchGlob(pattern string) (bool, error) {
	g, err := NewGlob(pattern)
	if err != nil {
		return false, err
	}
	return g.Match(p), nil
}
