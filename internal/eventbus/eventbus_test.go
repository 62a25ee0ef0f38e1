package eventbus

import (
	"testing"

	"chunkstore/internal/chunk"
	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/rowid"
)

func buildChunk(t *testing.T, path string) *chunk.Chunk {
	t.Helper()
	c, err := chunk.NewBuilder(entitypath.Parse(path)).
		AppendRow(rowid.NextRowID(), nil, map[component.Descriptor]chunk.Cell{component.NewField("P"): {1.0}}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New(nil)
	var got []Event
	unsub := b.Subscribe(nil, func(ev Event) { got = append(got, ev) })
	defer unsub()

	b.Publish(Event{EventID: 1, Diff: Diff{Kind: Addition, Chunk: buildChunk(t, "a")}})
	if len(got) != 1 || got[0].EventID != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)
	n := 0
	unsub := b.Subscribe(nil, func(Event) { n++ })
	unsub()
	b.Publish(Event{EventID: 1, Diff: Diff{Kind: Addition, Chunk: buildChunk(t, "a")}})
	if n != 0 {
		t.Fatalf("n = %d, want 0 after unsubscribe", n)
	}
}

func TestSubscribeGlobFilter(t *testing.T) {
	b := New(nil)
	g, err := entitypath.NewGlob("world/**")
	if err != nil {
		t.Fatalf("NewGlob: %v", err)
	}
	var got []string
	b.Subscribe(&g, func(ev Event) { got = append(got, ev.Diff.Chunk.EntityPath().String()) })

	b.Publish(Event{EventID: 1, Diff: Diff{Kind: Addition, Chunk: buildChunk(t, "world/points")}})
	b.Publish(Event{EventID: 2, Diff: Diff{Kind: Addition, Chunk: buildChunk(t, "other")}})

	if len(got) != 1 || got[0] != "/world/points" {
		t.Fatalf("got %v, want one match for world/points", got)
	}
}

func TestPublishRecoversSubscriberPanic(t *testing.T) {
	b := New(nil)
	b.Subscribe(nil, func(Event) { panic("boom") })
	delivered := false
	b.Subscribe(nil, func(Event) { delivered = true })

	b.Publish(Event{EventID: 1, Diff: Diff{Kind: Addition, Chunk: buildChunk(t, "a")}})
	if !delivered {
		t.Fatal("expected second subscriber to still be called after first panics")
	}
}
