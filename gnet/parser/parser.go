// Package parser implements the bit-level, data-driven protocol decoder:
// it walks a raw frame one descriptor at a time, extracting bit fields and
// following a selector-driven pointer to the next descriptor.
package parser

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gnet/frame"
	"github.com/sofiworker/pktcore/gnet/protocol"
)

// MaxDescentDepth bounds how many descriptor layers a single frame may
// descend through. Protocol descriptor graphs may contain cycles
// (tunneling, VLAN-in-VLAN); this resolves spec.md §9's open question by
// adopting its recommended safeguard value.
const MaxDescentDepth = 32

// Parser is the default, descriptor-driven implementation of the parsing
// capability the sniffer depends on: parsePacket(RawFrame) -> ParsedPacket,
// setProtocolEntryFile(path). A Parser exclusively owns its descriptor
// cache and is confined to a single goroutine (the sniffer's processing
// worker) by the sniffer's own lifecycle rules.
type Parser struct {
	loader    *protocol.Loader
	entryFile string
	logger    *zap.Logger
}

// New returns a Parser with its own descriptor cache.
func New(entryFile string, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		loader:    protocol.NewLoader(),
		entryFile: entryFile,
		logger:    logger,
	}
}

// SetProtocolEntryFile changes the descriptor path used to begin descent
// for subsequent calls to ParsePacket. The sniffer forbids calling this
// while running; the parser itself does not enforce that, per spec.md §4.E
// which places the restriction on the sniffer's lifecycle, not the parser.
func (p *Parser) SetProtocolEntryFile(path string) {
	p.entryFile = path
}

// Loader exposes the parser's descriptor cache, e.g. for pre-seeding with
// LoadProtocolFromString in tests.
func (p *Parser) Loader() *protocol.Loader {
	return p.loader
}

// ParsePacket walks raw starting at the parser's entry descriptor,
// returning every layer successfully decoded before descent stopped.
// Descent stops (without error) on: an empty/invalid frame, a descriptor
// load failure, the absence of a next_protocol, a malformed selector
// string, an unmapped selector value, or MaxDescentDepth layers.
func (p *Parser) ParsePacket(raw frame.RawFrame) frame.ParsedPacket {
	var result frame.ParsedPacket

	if !raw.Valid || raw.Length == 0 {
		return result
	}

	currentPath := p.entryFile
	var cursor uint32

	for depth := 0; currentPath != "" && depth < MaxDescentDepth; depth++ {
		descriptor, err := p.loader.LoadProtocol(currentPath)
		if err != nil {
			p.logger.Debug("stopping descent: failed to load protocol", zap.String("path", currentPath), zap.Error(err))
			break
		}

		layer := frame.ParsedLayer{
			SourceFile: currentPath,
			Fields:     make(map[string]uint64, len(descriptor.Header)),
		}
		fieldValues := make(map[string]uint64, len(descriptor.Header))

		for ol := range descriptor.Header {
			fieldOffset := ol.Offset + cursor
			value := ExtractBits(raw.Data(), fieldOffset, ol.Length)

			relativeKey := fmt.Sprintf("%d_%d", ol.Offset, ol.Length)
			absoluteKey := fmt.Sprintf("%s_%d", relativeKey, fieldOffset)
			layer.Fields[absoluteKey] = value
			fieldValues[relativeKey] = value
		}

		result = append(result, layer)

		if descriptor.NextProtocol == nil {
			break
		}
		next := descriptor.NextProtocol

		selOffset, selLength, ok := parseSelector(next.Selector)
		if !ok {
			p.logger.Debug("stopping descent: malformed selector", zap.String("selector", next.Selector))
			break
		}

		selectorValue := ExtractBits(raw.Data(), cursor+selOffset, selLength)

		relPath, ok := next.Mappings[uint16(selectorValue)]
		if !ok {
			break
		}

		advance := EvaluateStartAfter(next.StartAfter, fieldValues)
		cursor += advance
		currentPath = ResolveRelative(currentPath, relPath)
	}

	return result
}

// parseSelector splits a "sel_off_sel_len" selector string at its first
// underscore. The underscore must be present and not at either end.
func parseSelector(selector string) (offset, length uint32, ok bool) {
	idx := strings.IndexByte(selector, '_')
	if idx <= 0 || idx >= len(selector)-1 {
		return 0, 0, false
	}
	off, err := strconv.ParseUint(selector[:idx], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	ln, err := strconv.ParseUint(selector[idx+1:], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint32(off), uint32(ln), true
}

// ExtractBits reads bitLen bits MSB-first starting at bitOffset within
// data, concatenating across byte boundaries. Returns 0 if bitLen is 0 or
// exceeds 64. If the requested run extends past the end of data, whatever
// has been accumulated so far is returned (no zero-padding, no error).
func ExtractBits(data []byte, bitOffset, bitLen uint32) uint64 {
	if bitLen == 0 || bitLen > 64 {
		return 0
	}

	var result uint64
	bitsRemaining := bitLen
	currentBit := bitOffset

	for bitsRemaining > 0 {
		byteIndex := currentBit / 8
		bitInByte := currentBit % 8

		if int(byteIndex) >= len(data) {
			break
		}

		bitsAvailable := 8 - bitInByte
		bitsToRead := bitsAvailable
		if bitsRemaining < bitsToRead {
			bitsToRead = bitsRemaining
		}

		mask := byte(((1 << bitsToRead) - 1) << (bitsAvailable - bitsToRead))
		extracted := (data[byteIndex] & mask) >> (bitsAvailable - bitsToRead)

		result = (result << bitsToRead) | uint64(extracted)

		currentBit += bitsToRead
		bitsRemaining -= bitsToRead
	}

	return result
}

var fieldRefPattern = buildFieldRefMatcher()

// EvaluateStartAfter resolves a next_protocol.start_after string to a
// concrete bit advance. An empty string yields 0. A "calculate:"-prefixed
// string is treated as an arithmetic expression over [off_len] field
// references, substituted from fieldValues (0 when absent) and evaluated
// with github.com/expr-lang/expr, truncated to uint32; any compile or
// evaluation failure yields 0. Anything else is parsed as a plain unsigned
// decimal, again yielding 0 on failure.
func EvaluateStartAfter(expression string, fieldValues map[string]uint64) uint32 {
	if expression == "" {
		return 0
	}

	const calcPrefix = "calculate:"
	if strings.HasPrefix(expression, calcPrefix) {
		exprStr := strings.TrimLeft(expression[len(calcPrefix):], " ")
		substituted := substituteFieldRefs(exprStr, fieldValues)

		program, err := expr.Compile(substituted, expr.AsFloat64())
		if err != nil {
			return 0
		}
		out, err := expr.Run(program, nil)
		if err != nil {
			return 0
		}
		v, ok := out.(float64)
		if !ok {
			return 0
		}
		return uint32(v)
	}

	v, err := strconv.ParseUint(expression, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// ResolveRelative joins rel against the directory of basePath and
// lexically normalizes the result (no filesystem access).
func ResolveRelative(basePath, rel string) string {
	return path.Join(path.Dir(basePath), rel)
}
