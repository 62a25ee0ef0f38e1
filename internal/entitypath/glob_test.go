package entitypath

import "testing"

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"world/**", "world/points/0", true},
		{"world/**", "other/points/0", false},
		{"world/*/0", "world/points/0", true},
		{"world/*/0", "world/points/1", false},
		{"**/corner", "world/boxes/1/corner", true},
	}
	for _, tt := range tests {
		g, err := NewGlob(tt.pattern)
		if err != nil {
			t.Fatalf("NewGlob(%q): %v", tt.pattern, err)
		}
		if got := g.Match(Parse(tt.path)); got != tt.want {
			t.Errorf("Match(%q against %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestNewGlobInvalidPattern(t *testing.T) {
	if _, err := NewGlob("["); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
