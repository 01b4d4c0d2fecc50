package flightlog

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"flightekf/nav"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.flog")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	var states, pdiag [nav.StateDim]float64
	for i := range states {
		states[i] = float64(i) * 0.5
		pdiag[i] = float64(i) * 0.1
	}

	ticks := []struct {
		ts    int64
		flags uint16
	}{
		{1000, 0},
		{1010, FlagVelUnhealthy},
		{1020, FlagPosTimeout | FlagMagUnhealthy},
	}
	for _, tk := range ticks {
		if err := w.WriteTick(tk.ts, states, pdiag, tk.flags); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	for i, want := range ticks {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() at %d: %v", i, err)
		}
		if got.TimestampMs != want.ts || got.Flags != want.flags {
			t.Fatalf("tick %d mismatch: got %+v want ts=%d flags=%d", i, got, want.ts, want.flags)
		}
		for j := range states {
			if float32(got.States[j]) != float32(states[j]) {
				t.Fatalf("tick %d state[%d] mismatch: %v vs %v", i, j, got.States[j], states[j])
			}
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after last tick, got %v", err)
	}
}

func TestReaderRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.flog")
	if err := os.WriteFile(path, make([]byte, globalHdrLen), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}
	if _, err := NewReader(path); err == nil {
		t.Fatal("expected error opening a file with a zeroed header")
	}
}
