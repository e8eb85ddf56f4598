package domain

import (
	"bytes"
	"testing"
)

func TestFrameSuffix(t *testing.T) {
	f := NewFrame([]byte("0123456789"))

	if f.DeclaredLength() != 10 {
		t.Fatalf("DeclaredLength = %d", f.DeclaredLength())
	}
	if got := f.Suffix(7); !bytes.Equal(got, []byte("789")) {
		t.Fatalf("Suffix(7) = %q", got)
	}
	if got := f.Suffix(0); !bytes.Equal(got, f.Payload) {
		t.Fatalf("Suffix(0) = %q", got)
	}
	if got := f.Suffix(10); got != nil {
		t.Fatalf("Suffix(len) = %q, want nil", got)
	}
	if got := f.Suffix(-1); got != nil {
		t.Fatalf("Suffix(-1) = %q, want nil", got)
	}
}
