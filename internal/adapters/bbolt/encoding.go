// Binary encoding for asset scan records.
//
// Each record is a fixed little-endian header followed by a gob blob for the
// variable-length parts:
//
//	version: uint8 (recordVersion)
//	modTime: int64
//	size:    int64
//	hash:    uint64
//	body:    gob(scanBody)
//
// The header lets the index compare stat data and content hashes without
// decoding the body.
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/corey/unitylens/internal/ports"
)

const (
	recordVersion    = 1
	recordHeaderSize = 1 + 8 + 8 + 8
)

type scanBody struct {
	ScriptGUIDs []string
	Calls       []ports.EventCall
}

func encodeScan(s *ports.AssetScan) ([]byte, error) {
	body, err := encodeGob(scanBody{ScriptGUIDs: s.ScriptGUIDs, Calls: s.Calls})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Path, err)
	}
	buf := make([]byte, recordHeaderSize, recordHeaderSize+len(body))
	buf[0] = recordVersion
	binary.LittleEndian.PutUint64(buf[1:], uint64(s.ModTime))
	binary.LittleEndian.PutUint64(buf[9:], uint64(s.Size))
	binary.LittleEndian.PutUint64(buf[17:], s.Hash)
	return append(buf, body...), nil
}

// decodeScan decodes a record stored under key path. Reads are bounds-checked
// so a corrupt value yields an error rather than a panic.
func decodeScan(path string, data []byte) (*ports.AssetScan, error) {
	if len(data) < recordHeaderSize {
		return nil, fmt.Errorf("record %s too short: %d bytes", path, len(data))
	}
	if data[0] != recordVersion {
		return nil, fmt.Errorf("record %s: unknown version %d", path, data[0])
	}
	s := &ports.AssetScan{
		Path:    path,
		ModTime: int64(binary.LittleEndian.Uint64(data[1:])),
		Size:    int64(binary.LittleEndian.Uint64(data[9:])),
		Hash:    binary.LittleEndian.Uint64(data[17:]),
	}
	var body scanBody
	if err := decodeGob(data[recordHeaderSize:], &body); err != nil {
		return nil, fmt.Errorf("record %s: %w", path, err)
	}
	s.ScriptGUIDs = body.ScriptGUIDs
	s.Calls = body.Calls
	return s, nil
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob decodes gob-encoded data into target. Target must be a pointer.
func decodeGob(data []byte, target interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(target)
}
