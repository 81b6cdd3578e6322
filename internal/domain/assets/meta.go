package assets

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrNoGUID is returned when a .meta file carries no guid line.
var ErrNoGUID = errors.New("assets: meta file has no guid")

var guidLine = regexp.MustCompile(`^guid:\s*([0-9a-fA-F]{32})\s*$`)

// ReadGUID returns the asset GUID recorded in a .meta sidecar.
func ReadGUID(metaPath string) (string, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", metaPath, err)
	}
	guid, ok := ParseGUID(data)
	if !ok {
		return "", fmt.Errorf("%s: %w", metaPath, ErrNoGUID)
	}
	return guid, nil
}

// ParseGUID extracts the top-level guid from .meta content.
func ParseGUID(data []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if m := guidLine.FindSubmatch(sc.Bytes()); m != nil {
			return string(bytes.ToLower(m[1])), true
		}
	}
	return "", false
}
