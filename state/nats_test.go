//go:build integration

package state

import (
	"os"
	"testing"

	"github.com/nats-io/nats.go"
)

// getNATSURL returns the NATS URL from environment or default.
func getNATSURL() string {
	if url := os.Getenv("NATS_URL"); url != "" {
		return url
	}
	return nats.DefaultURL
}

// newTestNATSStore creates a NATSStore for testing.
func newTestNATSStore(t *testing.T, bucket string) *NATSStore {
	conn, err := nats.Connect(getNATSURL())
	if err != nil {
		t.Skipf("NATS not available: %v", err)
	}

	store, err := NewNATSStore(NATSStoreConfig{
		Conn:   conn,
		Bucket: bucket,
	})
	if err != nil {
		conn.Close()
		t.Fatalf("NewNATSStore failed: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		conn.Close()
	})

	return store
}

func TestNATSStore_Get_NotFound(t *testing.T) {
	s := newTestNATSStore(t, "test-planner-notfound")

	if _, err := s.Get("nonexistent"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNATSStore_PutGetDelete(t *testing.T) {
	s := newTestNATSStore(t, "test-planner-putget")

	if err := s.Put("tasks.task.a", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := s.Get("tasks.task.a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"id":"a"}` {
		t.Errorf("unexpected value %s", got)
	}

	if err := s.Delete("tasks.task.a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("tasks.task.a"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNATSStore_Keys(t *testing.T) {
	s := newTestNATSStore(t, "test-planner-keys")

	for _, k := range []string{"tasks.task.a", "tasks.task.b", "settings.tour"} {
		if err := s.Put(k, []byte("x")); err != nil {
			t.Fatalf("Put(%s) failed: %v", k, err)
		}
	}
	t.Cleanup(func() {
		for _, k := range []string{"tasks.task.a", "tasks.task.b", "settings.tour"} {
			s.Delete(k)
		}
	})

	keys, err := s.Keys("tasks.task.*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %v", keys)
	}
}
