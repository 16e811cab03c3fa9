package projection

import (
	"fmt"
	"os"

	"github.com/wgergely/repository-manager/internal/content"
	"github.com/wgergely/repository-manager/internal/ledger"
)

// Status is the closed set of per-projection health states.
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusMissing Status = "missing"
	StatusDrifted Status = "drifted"
	StatusBroken  Status = "broken"
)

// Check inspects the filesystem and classifies p's current status
// relative to its stored expectation, under the format's normalisation.
func Check(p ledger.Projection, format content.Format) (Status, error) {
	switch p.Kind {
	case ledger.KindFileManaged:
		return checkFileManaged(p)
	case ledger.KindTextBlock:
		return checkTextBlock(p, format)
	case ledger.KindJSONKey:
		return checkJSONKey(p)
	default:
		return StatusBroken, fmt.Errorf("unknown projection kind %q", p.Kind)
	}
}

func checkFileManaged(p ledger.Projection) (Status, error) {
	data, err := os.ReadFile(p.File)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusMissing, nil
		}
		return StatusBroken, err
	}
	if checksum(data) == p.Checksum {
		return StatusHealthy, nil
	}
	return StatusDrifted, nil
}

func checkTextBlock(p ledger.Projection, format content.Format) (Status, error) {
	adapter := content.For(format)
	if adapter == nil {
		return StatusBroken, fmt.Errorf("no content adapter for format %q", format)
	}
	source, err := os.ReadFile(p.File)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusMissing, nil
		}
		return StatusBroken, err
	}
	var found *content.ManagedBlock
	for _, b := range adapter.FindBlocks(string(source)) {
		if b.Marker == p.Marker {
			blk := b
			found = &blk
			break
		}
	}
	if found == nil {
		return StatusMissing, nil
	}
	normalised, err := adapter.Normalise(found.Content)
	var sum string
	if err != nil {
		sum = checksum([]byte(found.Content))
	} else {
		sum = checksum([]byte(fmt.Sprintf("%v", normalised)))
	}
	if sum == p.Checksum {
		return StatusHealthy, nil
	}
	return StatusDrifted, nil
}

func checkJSONKey(p ledger.Projection) (Status, error) {
	source, err := os.ReadFile(p.File)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusMissing, nil
		}
		return StatusBroken, err
	}
	result, ok := content.JSONKeyGet(string(source), p.Path)
	if !ok {
		return StatusMissing, nil
	}
	if fmt.Sprintf("%v", result.Value()) == fmt.Sprintf("%v", p.Value) {
		return StatusHealthy, nil
	}
	return StatusDrifted, nil
}
