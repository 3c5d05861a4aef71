package vm

import (
	"fmt"
	"runtime"
	"testing"
	"time"
)

func TestWeakRefAlive(t *testing.T) {
	rt := NewRuntime()
	target := rt.NewArray(rt.Int(1))
	w, err := rt.WeakRef(target)
	if err != nil {
		t.Fatal(err)
	}
	if w.TargetID != target.ID() {
		t.Errorf("TargetID = %d, want %d", w.TargetID, target.ID())
	}
	got, ok := w.Target()
	if !ok || got != Value(target) {
		t.Error("target should be reachable while held")
	}
	runtime.KeepAlive(target)
}

func TestWeakRefCollected(t *testing.T) {
	rt := NewRuntime()
	collected := make(chan uint64, 1)

	w := func() *WeakRef {
		target := rt.NewString("ephemeral")
		w, err := rt.WeakRef(target)
		if err != nil {
			t.Fatal(err)
		}
		if !w.OnCollect(func(id uint64) { collected <- id }) {
			t.Fatal("OnCollect should register on a live target")
		}
		return w
	}()

	deadline := time.Now().Add(5 * time.Second)
	for w.Alive() && time.Now().Before(deadline) {
		runtime.GC()
	}
	if w.Alive() {
		t.Fatal("target was not collected")
	}
	select {
	case id := <-collected:
		if id != w.TargetID {
			t.Errorf("collected id = %d, want %d", id, w.TargetID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnCollect callback did not run")
	}
	if w.OnCollect(func(uint64) {}) {
		t.Error("OnCollect on a dead target should report false")
	}
	if got := w.Inspect(); got != fmt.Sprintf("#<WeakRef:%d (dead)>", w.TargetID) {
		t.Errorf("Inspect = %s", got)
	}
}

func TestWeakRefRejectsPseudo(t *testing.T) {
	rt := NewRuntime()
	if _, err := rt.WeakRef(&VariableRef{Name: "x"}); err == nil {
		t.Error("pseudo-variants cannot be weakly referenced")
	}
}
