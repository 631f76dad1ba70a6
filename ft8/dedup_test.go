package ft8

import "testing"

func TestDedupSetFirstSeenThenDuplicate(t *testing.T) {
	d := NewDedupSet(8)

	seen, ok := d.SeenOrAdd("CQ W1ABC FN42", 1500)
	if !ok || seen {
		t.Fatalf("first SeenOrAdd: got seen=%v ok=%v, want seen=false ok=true", seen, ok)
	}

	seen, ok = d.SeenOrAdd("CQ W1ABC FN42", 1500)
	if !ok || !seen {
		t.Fatalf("repeat SeenOrAdd: got seen=%v ok=%v, want seen=true ok=true", seen, ok)
	}
}

func TestDedupSetDistinguishesFrequencyBin(t *testing.T) {
	d := NewDedupSet(8)
	d.SeenOrAdd("CQ W1ABC FN42", 1500)

	seen, ok := d.SeenOrAdd("CQ W1ABC FN42", 1600)
	if !ok || seen {
		t.Fatalf("same text at a different frequency bin should not count as a duplicate")
	}
}

func TestDedupSetSaturationTreatsAsUnseen(t *testing.T) {
	d := NewDedupSet(2)
	d.SeenOrAdd("msg-a", 1)
	d.SeenOrAdd("msg-b", 2)

	// Table full: a third distinct message must not be refused, just
	// reported as unseen rather than tracked.
	seen, ok := d.SeenOrAdd("msg-c", 3)
	if seen {
		t.Fatalf("saturated table falsely reported a new message as seen")
	}
	if ok {
		t.Fatalf("expected ok=false once the table is saturated")
	}
}

func TestDedupSetResetClearsState(t *testing.T) {
	d := NewDedupSet(4)
	d.SeenOrAdd("msg-a", 1)
	if d.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", d.Size())
	}
	d.Reset()
	if d.Size() != 0 {
		t.Fatalf("Size() after Reset() = %d, want 0", d.Size())
	}
	seen, ok := d.SeenOrAdd("msg-a", 1)
	if !ok || seen {
		t.Fatalf("after Reset(), previously-seen message should be unseen again")
	}
}
