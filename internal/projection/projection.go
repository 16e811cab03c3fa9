// Package projection applies and reverts the three projection kinds
// (FileManaged, TextBlock, JsonKey) against the filesystem, and classifies
// their live status against the ledger's stored expectation.
package projection

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/wgergely/repository-manager/internal/content"
	"github.com/wgergely/repository-manager/internal/ledger"
	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func readOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", rmerr.Filesystem(path, "read", "check file permissions", err)
	}
	return string(data), nil
}

// ApplyFileManaged writes body as the entire file content, owned wholly by
// the projection.
func ApplyFileManaged(tool, path, body string) (ledger.Projection, error) {
	if err := pathutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return ledger.Projection{}, rmerr.Filesystem(path, "write managed file", "check directory permissions", err)
	}
	return ledger.Projection{
		Tool: tool, File: path, Kind: ledger.KindFileManaged,
		Checksum: checksum([]byte(body)),
	}, nil
}

// RemoveFileManaged deletes path if it exists.
func RemoveFileManaged(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return rmerr.Filesystem(path, "remove managed file", "check file permissions", err)
	}
	return nil
}

// ApplyTextBlock inserts (at End) or updates, in place, a managed block
// with marker inside path, formatted per format. If the file is absent it
// is created containing only the block.
func ApplyTextBlock(tool, path, marker string, format content.Format, blockContent string) (ledger.Projection, error) {
	adapter := content.For(format)
	if adapter == nil {
		return ledger.Projection{}, fmt.Errorf("no content adapter for format %q", format)
	}
	source, err := readOrEmpty(path)
	if err != nil {
		return ledger.Projection{}, err
	}

	var newSource string
	if updated, _, ok := adapter.UpdateBlock(source, marker, blockContent); ok {
		newSource = updated
	} else {
		newSource, _ = adapter.InsertBlock(source, marker, blockContent, content.AtEnd())
	}

	if err := pathutil.WriteFileAtomic(path, []byte(newSource), 0o644); err != nil {
		return ledger.Projection{}, rmerr.Filesystem(path, "write managed block", "check directory permissions", err)
	}

	normalised, err := adapter.Normalise(blockContent)
	var sum string
	if err != nil {
		// Block content need not itself be a parseable document (e.g.
		// Markdown/PlainText adapters normalise as plain text); fall back
		// to checksumming the raw block content in that case.
		sum = checksum([]byte(blockContent))
	} else {
		sum = checksum([]byte(fmt.Sprintf("%v", normalised)))
	}

	return ledger.Projection{
		Tool: tool, File: path, Kind: ledger.KindTextBlock,
		Marker: marker, Checksum: sum,
	}, nil
}

// RemoveTextBlock removes the block with marker from path; if the file is
// left empty, it is deleted.
func RemoveTextBlock(path, marker string, format content.Format) error {
	adapter := content.For(format)
	if adapter == nil {
		return fmt.Errorf("no content adapter for format %q", format)
	}
	source, err := readOrEmpty(path)
	if err != nil {
		return err
	}
	newSource, _, ok := adapter.RemoveBlock(source, marker)
	if !ok {
		return nil // already absent; removal is idempotent
	}
	if len(newSource) == 0 {
		return RemoveFileManaged(path)
	}
	if err := pathutil.WriteFileAtomic(path, []byte(newSource), 0o644); err != nil {
		return rmerr.Filesystem(path, "write managed block", "check directory permissions", err)
	}
	return nil
}

// ApplyJSONKey sets value at dottedPath inside path's JSON content,
// creating the file (as {}) and intermediate objects as necessary.
func ApplyJSONKey(tool, path, dottedPath string, value any) (ledger.Projection, error) {
	source, err := readOrEmpty(path)
	if err != nil {
		return ledger.Projection{}, err
	}
	if source == "" {
		source = "{}"
	}
	newSource, err := content.JSONKeySet(source, dottedPath, value)
	if err != nil {
		return ledger.Projection{}, rmerr.PathNotFoundErr(path, dottedPath)
	}
	if err := pathutil.WriteFileAtomic(path, []byte(newSource), 0o644); err != nil {
		return ledger.Projection{}, rmerr.Filesystem(path, "write managed key", "check directory permissions", err)
	}
	return ledger.Projection{
		Tool: tool, File: path, Kind: ledger.KindJSONKey,
		Path: dottedPath, Value: value,
	}, nil
}

// RemoveJSONKey deletes dottedPath (and any intermediate object created
// solely to hold it) from path; if the remaining document is {}, the file
// is deleted.
func RemoveJSONKey(path, dottedPath string) error {
	source, err := readOrEmpty(path)
	if err != nil {
		return err
	}
	if source == "" {
		return nil
	}
	newSource, err := content.JSONKeyDelete(source, dottedPath)
	if err != nil {
		return rmerr.PathNotFoundErr(path, dottedPath)
	}
	if content.IsEmptyObject(newSource) {
		return RemoveFileManaged(path)
	}
	if err := pathutil.WriteFileAtomic(path, []byte(newSource), 0o644); err != nil {
		return rmerr.Filesystem(path, "write managed key", "check directory permissions", err)
	}
	return nil
}
