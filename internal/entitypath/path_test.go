package entitypath

import "testing"

func TestParseNormalizesSlashes(t *testing.T) {
	cases := []string{"/a/b", "a/b", "a//b/", "//a/b//"}
	want := Parse("a/b")
	for _, c := range cases {
		if got := Parse(c); !got.Equal(want) {
			t.Errorf("Parse(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	if got := Root().String(); got != "/" {
		t.Fatalf("Root().String() = %q, want \"/\"", got)
	}
	p := Parse("world/points/0")
	if got := p.String(); got != "/world/points/0" {
		t.Fatalf("String() = %q", got)
	}
}

func TestStartsWith(t *testing.T) {
	p := Parse("world/points/0")
	if !p.StartsWith(Parse("world/points")) {
		t.Fatal("expected world/points to be an ancestor")
	}
	if !p.StartsWith(Root()) {
		t.Fatal("expected root to be an ancestor of everything")
	}
	if p.StartsWith(Parse("world/boxes")) {
		t.Fatal("expected world/boxes to not be an ancestor")
	}
}

func TestCommonAncestorOf(t *testing.T) {
	a := Parse("world/points/0")
	b := Parse("world/points/1")
	if got := CommonAncestorOf(a, b); got.String() != "/world/points" {
		t.Fatalf("CommonAncestorOf = %v", got)
	}
	c := Parse("other/thing")
	if got := CommonAncestorOf(a, c); !got.Equal(Root()) {
		t.Fatalf("CommonAncestorOf unrelated = %v, want root", got)
	}
}

func TestIncrementalWalk(t *testing.T) {
	from := Parse("world/points/0")
	to := Parse("world/boxes/1/corner")

	var got []string
	for p := range IncrementalWalk(from, to) {
		got = append(got, p.String())
	}
	want := []string{"/world", "/world/boxes", "/world/boxes/1", "/world/boxes/1/corner"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestIncrementalWalkStopsEarly(t *testing.T) {
	from := Root()
	to := Parse("a/b/c")

	var got []string
	for p := range IncrementalWalk(from, to) {
		got = append(got, p.String())
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected early stop to yield exactly 2 paths, got %v", got)
	}
}
