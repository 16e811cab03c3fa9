package content_test

import (
	"strings"
	"testing"

	"github.com/wgergely/repository-manager/internal/content"
)

const marker = "11111111-2222-3333-4444-555555555555"

func TestMarkdownInsertThenRemoveYieldsOriginal(t *testing.T) {
	source := "USER-PRE\n"
	adapter := content.For(content.FormatMarkdown)
	inserted, _ := adapter.InsertBlock(source, marker, "[REQUIRED] r1: Use snake_case", content.AtEnd())

	want := "USER-PRE\n<!-- repo:block:" + marker + " -->\n[REQUIRED] r1: Use snake_case\n<!-- /repo:block:" + marker + " -->\n"
	if inserted != want {
		t.Fatalf("insert mismatch:\ngot:  %q\nwant: %q", inserted, want)
	}

	removed, _, ok := adapter.RemoveBlock(inserted, marker)
	if !ok {
		t.Fatalf("expected RemoveBlock to find marker")
	}
	if removed != source {
		t.Errorf("remove did not restore original: got %q want %q", removed, source)
	}
}

func TestMarkdownUpdateBlockPreservesSurroundingContent(t *testing.T) {
	adapter := content.For(content.FormatMarkdown)
	source := "USER-PRE\n"
	inserted, _ := adapter.InsertBlock(source, marker, "[REQUIRED] r1: Use snake_case", content.AtEnd())
	withPost := inserted + "\nUSER-POST\n"

	updated, _, ok := adapter.UpdateBlock(withPost, marker, "[REQUIRED] r1: Use kebab-case")
	if !ok {
		t.Fatalf("expected UpdateBlock to find marker")
	}
	if !strings.HasPrefix(updated, "USER-PRE\n") {
		t.Errorf("expected USER-PRE preserved, got %q", updated)
	}
	if !strings.HasSuffix(updated, "USER-POST\n") {
		t.Errorf("expected USER-POST preserved, got %q", updated)
	}
	if !strings.Contains(updated, "kebab-case") {
		t.Errorf("expected updated content present, got %q", updated)
	}
	if strings.Contains(updated, "snake_case") {
		t.Errorf("expected old content removed, got %q", updated)
	}
}

func TestFindBlocksIgnoresUnmatchedOpenMarker(t *testing.T) {
	adapter := content.For(content.FormatMarkdown)
	source := "<!-- repo:block:" + marker + " -->\nno closing marker here\n"
	blocks := adapter.FindBlocks(source)
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks for unmatched opening marker, got %d", len(blocks))
	}
}

func TestNormaliseIdempotent(t *testing.T) {
	adapter := content.For(content.FormatMarkdown)
	source := "line one   \n\n\n\nline two\n\n"
	once, err := adapter.Normalise(source)
	if err != nil {
		t.Fatalf("Normalise: %v", err)
	}
	onceStr := once.(string)
	twice, err := adapter.Normalise(onceStr)
	if err != nil {
		t.Fatalf("Normalise twice: %v", err)
	}
	if twice.(string) != onceStr {
		t.Errorf("normalise not idempotent: %q vs %q", onceStr, twice.(string))
	}
}

func TestJSONKeySetPreservesOtherKeys(t *testing.T) {
	source := `{"editor.fontSize": 14, "user.custom": true}`
	out, err := content.JSONKeySet(source, "repo.managed.instructions", "<rendered>")
	if err != nil {
		t.Fatalf("JSONKeySet: %v", err)
	}
	got, ok := content.JSONKeyGet(out, "repo.managed.instructions")
	if !ok || got.String() != "<rendered>" {
		t.Fatalf("expected instructions set, got %v", got)
	}
	if fs, ok := content.JSONKeyGet(out, `editor\.fontSize`); !ok || fs.Num != 14 {
		t.Errorf("expected editor.fontSize preserved, got %v (ok=%v)", fs, ok)
	}
}

func TestJSONKeyDeleteRemovesOnlyOwnedKeyAndEmptyParents(t *testing.T) {
	source := `{"repo":{"managed":{"instructions":"x"}},"user.custom":true}`
	out, err := content.JSONKeyDelete(source, "repo.managed.instructions")
	if err != nil {
		t.Fatalf("JSONKeyDelete: %v", err)
	}
	if got, ok := content.JSONKeyGet(out, "repo"); ok && got.Exists() {
		t.Errorf("expected empty intermediate object 'repo' removed, got %v", got)
	}
	if got, ok := content.JSONKeyGet(out, `user\.custom`); !ok || !got.Bool() {
		t.Errorf("expected user.custom preserved, got %v", got)
	}
}

func TestJSONFindBlocksViaMarkerKey(t *testing.T) {
	adapter := content.JSONAdapter()
	source, _ := adapter.InsertBlock("{}", marker, "hello", content.AtEnd())
	blocks := adapter.FindBlocks(source)
	if len(blocks) != 1 || blocks[0].Marker != marker || blocks[0].Content != "hello" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
	removed, _, ok := adapter.RemoveBlock(source, marker)
	if !ok {
		t.Fatalf("expected RemoveBlock to find marker")
	}
	if !content.IsEmptyObject(removed) {
		t.Errorf("expected empty object after removing sole managed key, got %q", removed)
	}
}
