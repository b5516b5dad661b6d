package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"sorcerer/pkg/orchestrator"
)

func TestCreateMany_PartialFailure(t *testing.T) {
	o := newTestOrchestrator(t, newFakeRuntime(), newFakeDialer())
	ctx := context.Background()
	if err := o.Create(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	outcomes := o.CreateMany(ctx, []string{"a", "b", "c"})
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if outcomes[i].Name != want {
			t.Errorf("outcome %d name = %q, want %q", i, outcomes[i].Name, want)
		}
	}
	if !outcomes[0].OK() || !outcomes[2].OK() {
		t.Errorf("a and c should succeed: %+v", outcomes)
	}
	if !errors.Is(outcomes[1].Err, orchestrator.ErrAlreadyExists) {
		t.Errorf("b: expected ErrAlreadyExists, got %v", outcomes[1].Err)
	}
	if ok, total := orchestrator.Summarize(outcomes); ok != 2 || total != 3 {
		t.Errorf("summary = %d/%d, want 2/3", ok, total)
	}
}

func TestCreateMany_DistinctPorts(t *testing.T) {
	d := newFakeDialer()
	o := newTestOrchestrator(t, newFakeRuntime(), d)
	names := []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8"}

	for _, oc := range o.CreateMany(context.Background(), names) {
		if oc.Err != nil {
			t.Fatalf("create %s: %v", oc.Name, oc.Err)
		}
	}
	seen := make(map[string]string)
	for _, n := range names {
		addr := d.addrs[n]
		if prev, dup := seen[addr]; dup {
			t.Fatalf("%s and %s share %s", prev, n, addr)
		}
		seen[addr] = n
	}
}

func TestRemoveMany(t *testing.T) {
	rt := newFakeRuntime()
	o := newTestOrchestrator(t, rt, newFakeDialer())
	ctx := context.Background()
	for _, n := range []string{"a", "b"} {
		if err := o.Create(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	outcomes := o.RemoveMany(ctx, []string{"a", "ghost", "b"})
	if ok, total := orchestrator.Summarize(outcomes); ok != 2 || total != 3 {
		t.Errorf("summary = %d/%d, want 2/3", ok, total)
	}
	if !errors.Is(outcomes[1].Err, orchestrator.ErrNotFound) {
		t.Errorf("ghost: expected ErrNotFound, got %v", outcomes[1].Err)
	}
	if len(o.Names()) != 0 || rt.count() != 0 {
		t.Errorf("leftovers: names=%v containers=%d", o.Names(), rt.count())
	}
}
