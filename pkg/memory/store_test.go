package memory_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"sorcerer/pkg/memory"
)

func stores(t *testing.T) map[string]memory.Store {
	t.Helper()
	sq, err := memory.Open(context.Background(), filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]memory.Store{
		"map":    memory.NewMapStore(),
		"sqlite": sq,
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
			}
			if err := s.Put(ctx, "color", "blue"); err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, "color", "red"); err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, "animal", "owl"); err != nil {
				t.Fatal(err)
			}

			v, ok, err := s.Get(ctx, "color")
			if err != nil || !ok || v != "red" {
				t.Errorf("Get(color) = %q, %v, %v", v, ok, err)
			}
			keys, err := s.Keys(ctx)
			if err != nil || !reflect.DeepEqual(keys, []string{"animal", "color"}) {
				t.Errorf("Keys = %v, %v", keys, err)
			}
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.db")

	s, err := memory.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s2, err := memory.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if v, ok, _ := s2.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("after reopen Get = %q, %v", v, ok)
	}
}

func TestOpen_BadPath(t *testing.T) {
	_, err := memory.Open(context.Background(), filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
