package pathutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wgergely/repository-manager/internal/pathutil"
)

func TestNormalisedPathRoundTrip(t *testing.T) {
	cases := []string{
		`a/b/c`,
		`a\b\c`,
		`./a/./b`,
	}
	for _, c := range cases {
		p := pathutil.New(c)
		roundTripped := pathutil.New(p.Native())
		if !p.Equal(roundTripped) {
			t.Errorf("round trip not idempotent for %q: %q vs %q", c, p.String(), roundTripped.String())
		}
	}
}

func TestPathEqualityOnNormalisedForm(t *testing.T) {
	a := pathutil.New("a/b/c")
	b := pathutil.New("a/b/c")
	if !a.Equal(b) {
		t.Fatalf("expected equal paths")
	}
}

func TestWriteFileAtomicCreatesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "file.txt")
	if err := pathutil.WriteFileAtomic(target, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestWriteFileAtomicRefusesSymlink(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "outside")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatal(err)
	}
	linked := filepath.Join(dir, "linked")
	if err := os.Symlink(outside, linked); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	target := filepath.Join(linked, "file.txt")
	err := pathutil.WriteFileAtomic(target, []byte("x"), 0o644)
	if err == nil {
		t.Fatalf("expected symlink refusal error")
	}
	var symErr *pathutil.ErrSymlinkRefused
	if !asSymlinkErr(err, &symErr) {
		t.Fatalf("expected ErrSymlinkRefused, got %v (%T)", err, err)
	}
}

func asSymlinkErr(err error, target **pathutil.ErrSymlinkRefused) bool {
	for err != nil {
		if se, ok := err.(*pathutil.ErrSymlinkRefused); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
