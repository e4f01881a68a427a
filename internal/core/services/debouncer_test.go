package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerRunsLastCallOnce(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls, last atomic.Int64
	done := make(chan struct{}, 4)

	for i := int64(1); i <= 3; i++ {
		v := i
		d.Schedule("item:quantity", func() {
			calls.Add(1)
			last.Store(v)
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(60 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Fatalf("ran %d times, want 1", n)
	}
	if v := last.Load(); v != 3 {
		t.Fatalf("ran call %d, want the last one", v)
	}
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls atomic.Int64
	d.Schedule("a:quantity", func() { calls.Add(1) })
	d.Schedule("a:purchase_price", func() { calls.Add(1) })
	d.Schedule("b:quantity", func() { calls.Add(1) })

	if n := d.Pending(); n != 3 {
		t.Fatalf("pending = %d, want 3", n)
	}
	if n := d.Flush(); n != 3 {
		t.Fatalf("flushed %d, want 3", n)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("ran %d calls, want 3", n)
	}
	if n := d.Pending(); n != 0 {
		t.Fatalf("pending after flush = %d", n)
	}
}
