// Package protocol loads and caches the JSON (or YAML) protocol
// descriptors the parser walks: a header bit-layout plus an optional
// selector-driven pointer to the next descriptor in the chain.
package protocol

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// OffsetLength identifies a bit field by its relative offset and length
// within a descriptor's header.
type OffsetLength struct {
	Offset uint32
	Length uint32
}

// Field is the description carried by one header entry. Only the
// description is consumed by the parser; it exists for documentation and
// debugging.
type Field struct {
	Description string `json:"description" yaml:"description"`
}

// NextProtocol describes how to pick and advance into a child descriptor.
type NextProtocol struct {
	Selector   string
	StartAfter string
	Mappings   map[uint16]string
}

// Descriptor is the parsed, immutable-once-loaded in-memory form of one
// protocol JSON/YAML file.
type Descriptor struct {
	Name         string
	Header       map[OffsetLength]Field
	NextProtocol *NextProtocol
}

// wire shapes, mirroring the JSON document in spec.md §6.
type wireField struct {
	Description string `json:"description" yaml:"description"`
}

type wireMapping struct {
	File string `json:"file" yaml:"file"`
}

type wireNextProtocol struct {
	Selector   string                 `json:"selector" yaml:"selector"`
	StartAfter string                 `json:"start_after" yaml:"start_after"`
	Mappings   map[string]wireMapping `json:"mappings" yaml:"mappings"`
}

type wireDescriptor struct {
	Name         string               `json:"name" yaml:"name"`
	Header       map[string]wireField `json:"header" yaml:"header"`
	NextProtocol *wireNextProtocol    `json:"next_protocol,omitempty" yaml:"next_protocol,omitempty"`
}

// Loader reads protocol descriptors from disk (or from an in-memory
// string) and caches them by path. A Loader is safe for concurrent use,
// though spec.md §3 notes the parser in practice confines it to one
// worker goroutine.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]Descriptor
}

// NewLoader returns an empty, ready-to-use Loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]Descriptor)}
}

// LoadProtocol returns the cached descriptor for path, loading and parsing
// it from disk on first reference. The file format (JSON or YAML) is
// inferred from the path extension; JSON is assumed when ambiguous.
func (l *Loader) LoadProtocol(path string) (Descriptor, error) {
	l.mu.RLock()
	if d, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return d, nil
	}
	l.mu.RUnlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("protocol: open %s: %w", path, err)
	}

	d, err := parseDescriptor(raw, path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("protocol: parse %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = d
	l.mu.Unlock()
	return d, nil
}

// LoadProtocolFromString parses raw (JSON or YAML) and inserts it into the
// cache under cacheKey, as if it had been loaded from a file at that path.
// This lets callers (and tests) inject synthetic descriptors without
// touching the filesystem.
func (l *Loader) LoadProtocolFromString(raw string, cacheKey string) (Descriptor, error) {
	d, err := parseDescriptor([]byte(raw), cacheKey)
	if err != nil {
		return Descriptor{}, fmt.Errorf("protocol: parse string for %s: %w", cacheKey, err)
	}
	l.mu.Lock()
	l.cache[cacheKey] = d
	l.mu.Unlock()
	return d, nil
}

func parseDescriptor(raw []byte, path string) (Descriptor, error) {
	var wd wireDescriptor
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(raw, &wd)
	} else {
		err = jsonAPI.Unmarshal(raw, &wd)
	}
	if err != nil {
		return Descriptor{}, err
	}
	return fromWire(wd)
}

func fromWire(wd wireDescriptor) (Descriptor, error) {
	d := Descriptor{
		Name:   wd.Name,
		Header: make(map[OffsetLength]Field, len(wd.Header)),
	}

	for key, field := range wd.Header {
		ol, err := parseOffsetLengthKey(key)
		if err != nil {
			return Descriptor{}, fmt.Errorf("invalid header key %q: %w", key, err)
		}
		d.Header[ol] = Field{Description: field.Description}
	}

	if wd.NextProtocol != nil {
		np := &NextProtocol{
			Selector:   wd.NextProtocol.Selector,
			StartAfter: wd.NextProtocol.StartAfter,
			Mappings:   make(map[uint16]string, len(wd.NextProtocol.Mappings)),
		}
		for key, mapping := range wd.NextProtocol.Mappings {
			v, err := parseMappingKey(key)
			if err != nil {
				return Descriptor{}, fmt.Errorf("invalid mapping key %q: %w", key, err)
			}
			np.Mappings[v] = mapping.File
		}
		d.NextProtocol = np
	}

	return d, nil
}

// parseOffsetLengthKey parses "{offset}_{length}" header keys, splitting at
// the first underscore per the original loader's semantics.
func parseOffsetLengthKey(key string) (OffsetLength, error) {
	idx := strings.IndexByte(key, '_')
	if idx < 0 {
		return OffsetLength{}, fmt.Errorf("missing underscore")
	}
	offset, err := strconv.ParseUint(key[:idx], 10, 32)
	if err != nil {
		return OffsetLength{}, fmt.Errorf("offset: %w", err)
	}
	length, err := strconv.ParseUint(key[idx+1:], 10, 32)
	if err != nil {
		return OffsetLength{}, fmt.Errorf("length: %w", err)
	}
	return OffsetLength{Offset: uint32(offset), Length: uint32(length)}, nil
}

// parseMappingKey accepts decimal or 0x/0X-prefixed hexadecimal 16-bit keys.
func parseMappingKey(key string) (uint16, error) {
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		v, err := strconv.ParseUint(key[2:], 16, 16)
		return uint16(v), err
	}
	v, err := strconv.ParseUint(key, 10, 16)
	return uint16(v), err
}
