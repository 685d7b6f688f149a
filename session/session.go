// Package session persists filter pipelines as YAML files with a
// checksum footer, so a pipeline tuned on one dataset can be reapplied
// to another or shared between setups.
package session

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/snksoft/crc"
	yaml "gopkg.in/yaml.v2"

	"github.com/inspectra/gadget/filters"
)

// Version is the current file format version.
const Version = 1

var crcTable = crc.NewTable(crc.XMODEM)

// checksum runs a CCITT/XMODEM CRC16 over the document body.
func checksum(body []byte) uint16 {
	return crcTable.CRC16(crcTable.UpdateCrc(crcTable.InitCrc(), body))
}

// ErrChecksum is returned for a file whose footer does not match its
// body, which usually means a truncated copy or a hand edit.
var ErrChecksum = errors.New("session: checksum mismatch")

// file is the on-disk document.
type file struct {
	Version int                  `yaml:"version"`
	Filters []filters.Descriptor `yaml:"filters"`
}

// Marshal encodes a pipeline as a YAML document followed by a checksum
// footer line.
func Marshal(p filters.Pipeline) ([]byte, error) {
	body, err := yaml.Marshal(file{Version: Version, Filters: p.Descriptors()})
	if err != nil {
		return nil, errors.Wrap(err, "session: encode")
	}
	sum := checksum(body)
	return append(body, []byte(fmt.Sprintf("# crc16 %04x\n", sum))...), nil
}

// Unmarshal verifies the checksum footer, decodes the document and
// validates every filter against the transform registry.
func Unmarshal(b []byte) (filters.Pipeline, error) {
	body, sum, err := splitFooter(b)
	if err != nil {
		return nil, err
	}
	if checksum(body) != sum {
		return nil, ErrChecksum
	}
	var f file
	if err := yaml.Unmarshal(body, &f); err != nil {
		return nil, errors.Wrap(err, "session: decode")
	}
	if f.Version > Version {
		return nil, errors.Errorf("session: file version %d is newer than this build", f.Version)
	}
	return filters.FromDescriptors(f.Filters)
}

// splitFooter separates the checksum line from the document body.
func splitFooter(b []byte) (body []byte, sum uint16, err error) {
	trimmed := bytes.TrimRight(b, "\n")
	i := bytes.LastIndexByte(trimmed, '\n')
	if i < 0 {
		return nil, 0, errors.New("session: missing checksum footer")
	}
	footer := trimmed[i+1:]
	if _, err := fmt.Sscanf(string(footer), "# crc16 %04x", &sum); err != nil {
		return nil, 0, errors.New("session: missing checksum footer")
	}
	return b[:i+1], sum, nil
}

// Save writes the pipeline to path.
func Save(path string, p filters.Pipeline) error {
	b, err := Marshal(p)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "session: write %s", path)
}

// Load reads and validates a pipeline from path.
func Load(path string) (filters.Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "session: read %s", path)
	}
	return Unmarshal(b)
}
