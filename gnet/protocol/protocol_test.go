package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ethernetJSON = `{
  "name": "ethernet",
  "header": {
    "0_48":  {"description": "dst mac"},
    "48_48": {"description": "src mac"},
    "96_16": {"description": "ethertype"}
  },
  "next_protocol": {
    "selector": "96_16",
    "start_after": "112",
    "mappings": {
      "0x0800": {"file": "./ipv4.json"},
      "0x86dd": {"file": "./ipv6.json"}
    }
  }
}`

func TestLoadProtocolFromStringParsesHeaderAndMappings(t *testing.T) {
	l := NewLoader()
	d, err := l.LoadProtocolFromString(ethernetJSON, "/protocols/ethernet.json")
	require.NoError(t, err)

	assert.Equal(t, "ethernet", d.Name)
	assert.Equal(t, Field{Description: "ethertype"}, d.Header[OffsetLength{Offset: 96, Length: 16}])
	require.NotNil(t, d.NextProtocol)
	assert.Equal(t, "96_16", d.NextProtocol.Selector)
	assert.Equal(t, "112", d.NextProtocol.StartAfter)
	assert.Equal(t, "./ipv4.json", d.NextProtocol.Mappings[0x0800])
	assert.Equal(t, "./ipv6.json", d.NextProtocol.Mappings[0x86dd])
}

func TestLoadProtocolFromStringCachesByKey(t *testing.T) {
	l := NewLoader()
	_, err := l.LoadProtocolFromString(ethernetJSON, "key-a")
	require.NoError(t, err)

	d, err := l.LoadProtocol("key-a")
	require.NoError(t, err)
	assert.Equal(t, "ethernet", d.Name)
}

func TestParseMappingKeyDecimalAndHex(t *testing.T) {
	v, err := parseMappingKey("2048")
	require.NoError(t, err)
	assert.Equal(t, uint16(2048), v)

	v, err = parseMappingKey("0x0800")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0800), v)

	v, err = parseMappingKey("0X86DD")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x86dd), v)
}

func TestParseOffsetLengthKeyRejectsMissingUnderscore(t *testing.T) {
	_, err := parseOffsetLengthKey("9616")
	assert.Error(t, err)
}

func TestLoadProtocolMissingFileFails(t *testing.T) {
	l := NewLoader()
	_, err := l.LoadProtocol("/no/such/protocol.json")
	assert.Error(t, err)
}
