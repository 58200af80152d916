package testutil

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

// recordingTB captures fatal calls instead of stopping the test.
type recordingTB struct {
	testing.TB
	failed bool
	msg    string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatal(args ...any) {
	r.failed = true
	r.msg = fmt.Sprint(args...)
}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.failed = true
	r.msg = fmt.Sprintf(format, args...)
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)

	rec := &recordingTB{TB: t}
	AssertNoError(rec, errors.New("boom"))
	if !rec.failed || rec.msg != "unexpected error: boom" {
		t.Errorf("AssertNoError did not fail: %+v", rec)
	}
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, errors.New("boom"))

	rec := &recordingTB{TB: t}
	AssertError(rec, nil)
	if !rec.failed {
		t.Error("AssertError accepted a nil error")
	}
}

func TestWriteJSONAndReadOutput(t *testing.T) {
	dir := t.TempDir()
	path := WriteJSON(t, dir, "nested/obs.json", []map[string]int{{"x": 1, "y": 2}})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := ReadOutput(t, path); got != `[{"x":1,"y":2}]` {
		t.Errorf("ReadOutput() = %q", got)
	}
}

func TestReadOutput_Empty(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "empty.svg", nil)

	rec := &recordingTB{TB: t}
	ReadOutput(rec, path)
	if !rec.failed {
		t.Error("ReadOutput accepted an empty file")
	}
}

func TestCountElements(t *testing.T) {
	doc := `<svg><g><title>a</title><rect x="1"/></g><g ><rect x="2"/></g></svg>`
	if n := CountElements(doc, "rect"); n != 2 {
		t.Errorf("rect count = %d, want 2", n)
	}
	if n := CountElements(doc, "title"); n != 1 {
		t.Errorf("title count = %d, want 1", n)
	}
	if n := CountElements(doc, "g"); n != 2 {
		t.Errorf("g count = %d, want 2", n)
	}
}
