package config

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Headers maps the `Key: value` names of config.txt to koanf keys.
var Headers = map[string]string{
	"Root-Path":     "root",
	"Source-Path":   "source",
	"Class-Path":    "target",
	"Libraries":     "libraries",
	"Compile-Flags": "flags",
	"Main-Class":    "main",
	"Author":        "author",
	"Expansion":     "expansion",
	"Platform":      "platform",
	"Release":       "release",
}

// headerOrder is the order headers are written in
var headerOrder = []string{
	"Root-Path", "Source-Path", "Class-Path", "Libraries", "Compile-Flags",
	"Main-Class", "Author", "Expansion", "Platform", "Release",
}

// KeyValue is a koanf parser for config.txt: one `Header: value` pair per
// line. Blank lines, lines starting with '#' and unknown headers are ignored.
// Blank values are dropped so they do not shadow defaults.
type KeyValue struct{}

// KeyValueParser returns the config.txt parser.
func KeyValueParser() *KeyValue {
	return &KeyValue{}
}

// Unmarshal parses config.txt content into a flat koanf map.
func (p *KeyValue) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	scanner := bufio.NewScanner(bytes.NewReader(b))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		header, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected `Key: value`, got %q", lineNo, line)
		}
		key, known := Headers[strings.TrimSpace(header)]
		value = strings.TrimSpace(value)
		if !known || value == "" {
			continue
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal renders a flat koanf map as config.txt content in the usual
// header order. Keys without a header are skipped.
func (p *KeyValue) Marshal(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for _, h := range headerOrder {
		if v, ok := m[Headers[h]]; ok {
			fmt.Fprintf(&buf, "%s: %v\n", h, v)
		}
	}
	return buf.Bytes(), nil
}
