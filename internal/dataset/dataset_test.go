package dataset_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samiBendou/sca-automation/internal/dataset"
)

func TestChannelBroadcastKey(t *testing.T) {
	var ch dataset.Channel
	ch.Plains = []string{"a", "b", "c"}
	ch.Ciphers = []string{"d", "e", "f"}
	ch.Keys = []string{"k"}

	ch.BroadcastKey(ch.Len())
	if diff := cmp.Diff([]string{"k", "k", "k"}, ch.Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if err := ch.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestChannelBroadcastKeyIgnoresPerRecordKeys(t *testing.T) {
	ch := dataset.Channel{Keys: []string{"k1", "k2"}}
	ch.BroadcastKey(4)
	if len(ch.Keys) != 2 {
		t.Fatalf("expected keys untouched, got %v", ch.Keys)
	}
}

func TestChannelPopAndValidate(t *testing.T) {
	var ch dataset.Channel
	ch.Append("p0", "c0", "k0")
	ch.Append("p1", "c1", "k1")
	ch.Pop()

	if ch.Len() != 1 {
		t.Fatalf("Len = %d, want 1", ch.Len())
	}
	plain, cipher, key := ch.At(0)
	if plain != "p0" || cipher != "c0" || key != "k0" {
		t.Fatalf("At(0) = %q %q %q", plain, cipher, key)
	}

	ch.Keys = nil
	if err := ch.Validate(); !errors.Is(err, dataset.ErrInconsistent) {
		t.Fatalf("Validate = %v, want ErrInconsistent", err)
	}

	var empty dataset.Channel
	empty.Pop()
	if empty.Len() != 0 {
		t.Fatal("Pop on empty channel must be a no-op")
	}
}

func TestLeakAppendTracksSamples(t *testing.T) {
	var leak dataset.Leak
	leak.Append([]int{1, 2, 3})
	leak.Append([]int{4})

	if diff := cmp.Diff([]int{3, 1}, leak.Samples); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
	if err := leak.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	leak.Samples[1] = 2
	if err := leak.Validate(); !errors.Is(err, dataset.ErrInconsistent) {
		t.Fatalf("Validate = %v, want ErrInconsistent", err)
	}
}

func TestLeakConcat(t *testing.T) {
	var a, b dataset.Leak
	a.Append([]int{1})
	b.Append([]int{2, 3})
	a.Concat(&b)
	if a.Len() != 2 || a.Samples[1] != 2 {
		t.Fatalf("unexpected concat result: %+v", a)
	}
}

func TestMetaComputeOffset(t *testing.T) {
	meta := dataset.Meta{Sensors: 4, Target: 9}
	meta.ComputeOffset(0)
	if meta.Offset != 36 {
		t.Fatalf("Offset = %d, want 36", meta.Offset)
	}
	meta.ComputeOffset('P')
	if meta.Offset != 36-80 {
		t.Fatalf("Offset with bias = %d, want %d", meta.Offset, 36-80)
	}
	meta.Clear()
	if meta != (dataset.Meta{}) {
		t.Fatalf("Clear left %+v", meta)
	}
}

func TestChannelBroadcastKeyDropsRunKeyWithoutRecords(t *testing.T) {
	ch := dataset.Channel{Keys: []string{"k"}}
	ch.BroadcastKey(0)
	if len(ch.Keys) != 0 {
		t.Fatalf("expected run key dropped, got %v", ch.Keys)
	}
}
