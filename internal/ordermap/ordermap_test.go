package ordermap

import "testing"

func intLess(a, b int) bool { return a < b }

func TestSetGetDelete(t *testing.T) {
	m := New[int, string](intLess)
	m.Set(3, "c")
	m.Set(1, "a")
	m.Set(2, "b")

	if v, ok := m.Get(2); !ok || v != "b" {
		t.Fatalf("Get(2) = %q, %v", v, ok)
	}
	if !m.Delete(2) {
		t.Fatal("expected Delete(2) to report present")
	}
	if _, ok := m.Get(2); ok {
		t.Fatal("expected 2 to be gone")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestAscendDescendOrder(t *testing.T) {
	m := New[int, string](intLess)
	for _, k := range []int{5, 1, 3, 2, 4} {
		m.Set(k, "")
	}

	var asc []int
	m.Ascend(func(k int, _ string) bool { asc = append(asc, k); return true })
	want := []int{1, 2, 3, 4, 5}
	for i, w := range want {
		if asc[i] != w {
			t.Fatalf("Ascend = %v, want %v", asc, want)
		}
	}

	var desc []int
	m.Descend(func(k int, _ string) bool { desc = append(desc, k); return true })
	for i := range want {
		if desc[i] != want[len(want)-1-i] {
			t.Fatalf("Descend = %v", desc)
		}
	}
}

func TestDescendLessOrEqualStopsEarly(t *testing.T) {
	m := New[int, string](intLess)
	for _, k := range []int{1, 2, 3, 4, 5} {
		m.Set(k, "")
	}
	var got []int
	m.DescendLessOrEqual(3, func(k int, _ string) bool {
		got = append(got, k)
		return true
	})
	want := []int{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMinMax(t *testing.T) {
	m := New[int, string](intLess)
	if _, _, ok := m.Min(); ok {
		t.Fatal("expected empty map to have no Min")
	}
	m.Set(5, "five")
	m.Set(1, "one")
	if k, v, ok := m.Min(); !ok || k != 1 || v != "one" {
		t.Fatalf("Min() = %d, %q, %v", k, v, ok)
	}
	if k, v, ok := m.Max(); !ok || k != 5 || v != "five" {
		t.Fatalf("Max() = %d, %q, %v", k, v, ok)
	}
}
