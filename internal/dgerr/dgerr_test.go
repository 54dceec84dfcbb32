package dgerr

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

// TestWrapKeepsCause verifies the cause chain stays reachable through
// errors.Is and errors.As.
func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := fs.ErrNotExist
	err := Wrap(Source, cause, "open %s", "dump.xml.gz")

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("cause not reachable via errors.Is")
	}
	if !IsKind(err, Source) {
		t.Errorf("kind = %v, want Source", KindOf(err))
	}
	if IsKind(err, Writer) {
		t.Error("IsKind matched the wrong kind")
	}
}

// TestWrapNil: wrapping a nil cause returns nil, so call sites can wrap
// returns unconditionally.
func TestWrapNil(t *testing.T) {
	t.Parallel()

	if err := Wrap(Writer, nil, "flush"); err != nil {
		t.Fatalf("Wrap(nil) = %v", err)
	}
}

// TestKindSurvivesWrapping: a taxonomy kind assigned deep in a call stack
// is still visible after further fmt.Errorf %w wrapping.
func TestKindSurvivesWrapping(t *testing.T) {
	t.Parallel()

	inner := New(TargetConflict, "output %s exists", "out.jsonl")
	outer := fmt.Errorf("convert: %w", inner)

	if !IsKind(outer, TargetConflict) {
		t.Errorf("kind lost through wrapping: %v", KindOf(outer))
	}
}

// TestEntityContext checks entity tag and id render into the message.
func TestEntityContext(t *testing.T) {
	t.Parallel()

	err := New(Validation, "unmapped aliases/extra").ForEntity("artist", 42)
	msg := err.Error()
	for _, want := range []string{"validation error", "artist id=42", "aliases/extra"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
