package gcsched

import (
	"testing"

	"github.com/google/uuid"

	"chunkstore/internal/chunkstore"
)

func newTestStore() *chunkstore.Store {
	return chunkstore.New(uuid.New(), chunkstore.Recording, chunkstore.Config{}, nil)
}

func TestAddAndRemoveJob(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	store := newTestStore()

	if err := s.AddJob("store-a", "*/5 * * * *", store, chunkstore.GarbageCollectionOptions{Target: chunkstore.Everything()}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.AddJob("store-a", "0 * * * *", store, chunkstore.GarbageCollectionOptions{}); err == nil {
		t.Fatal("expected error adding a duplicate job")
	}

	s.RemoveJob("store-a")
	s.RemoveJob("does-not-exist")
}

func TestUpdateJob(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	store := newTestStore()

	if err := s.AddJob("store-a", "*/5 * * * *", store, chunkstore.GarbageCollectionOptions{}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.UpdateJob("store-a", "0 * * * *", store, chunkstore.GarbageCollectionOptions{}); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
}

func TestAddJobRejectsInvalidCron(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	store := newTestStore()

	if err := s.AddJob("store-a", "not a cron", store, chunkstore.GarbageCollectionOptions{}); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}
