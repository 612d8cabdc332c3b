package object

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/wit/pkg/scan"
)

// ---------------------------------------------------------------------------
// KVLM
// ---------------------------------------------------------------------------

// KVLM is the key-value list with message used by commits and tags: an
// ordered multi-map of header fields followed by a free-text message.
type KVLM struct {
	keys    []string
	values  map[string][]string
	Message string
}

// NewKVLM returns an empty KVLM.
func NewKVLM() *KVLM {
	return &KVLM{values: make(map[string][]string)}
}

// Keys returns the header keys in first-insertion order.
func (m *KVLM) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns every value stored under key, in order.
func (m *KVLM) Get(key string) []string {
	return m.values[key]
}

// First returns the first value stored under key.
func (m *KVLM) First(key string) (string, bool) {
	vals := m.values[key]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Has reports whether key has at least one value.
func (m *KVLM) Has(key string) bool {
	return len(m.values[key]) > 0
}

// Add appends a value under key.
func (m *KVLM) Add(key, value string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(m.values[key], value)
}

// Set replaces every value under key.
func (m *KVLM) Set(key string, values ...string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append([]string(nil), values...)
}

// Bytes serializes the KVLM:
//
//	key value
//	key continued
//	 value line
//
//	message
//
// Newlines inside a value are followed by a single space.
func (m *KVLM) Bytes() []byte {
	var buf bytes.Buffer
	for _, key := range m.keys {
		for _, v := range m.values[key] {
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(scan.Replace([]byte(v), "\n", "\n "))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(m.Message)
	return buf.Bytes()
}

// ParseKVLM parses a serialized KVLM. An empty payload yields an empty KVLM.
func ParseKVLM(data []byte) (*KVLM, error) {
	m := NewKVLM()
	if len(data) == 0 {
		return m, nil
	}

	pos := 0
	for {
		nl, err := scan.FindFrom(data, '\n', pos)
		if err != nil {
			return nil, WrapError(KindMalformedObject, err, "kvlm: missing header/message separator")
		}
		sp := scan.FindSigned(data, ' ', pos)

		// A blank line ends the header block.
		if nl == pos {
			m.Message = string(data[nl+1:])
			return m, nil
		}
		if sp < 0 || nl < sp {
			return nil, Errorf(KindMalformedObject, "kvlm: malformed header line %q", data[pos:nl])
		}

		// Values continue across lines that start with a space.
		end := nl
		for end+1 < len(data) && data[end+1] == ' ' {
			next, err := scan.FindFrom(data, '\n', end+1)
			if err != nil {
				return nil, WrapError(KindMalformedObject, err, "kvlm: unterminated value for %q", data[pos:sp])
			}
			end = next
		}

		key := data[pos:sp]
		value := scan.Replace(data[sp+1:end], "\n ", "\n")
		if !utf8.Valid(key) || !utf8.Valid(value) {
			return nil, Errorf(KindEncoding, "kvlm: header %q is not valid UTF-8", key)
		}
		m.Add(string(key), string(value))
		pos = end + 1
	}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// marshalTree serializes leaves in git's binary tree format. Each leaf is
//
//	<mode> <path>\0<20 raw digest bytes>
//
// Leaves are written in git order: names compare byte-wise, with directory
// names compared as if they ended in "/".
func marshalTree(leaves []TreeLeaf) ([]byte, error) {
	sorted := make([]TreeLeaf, len(leaves))
	copy(sorted, leaves)
	sort.SliceStable(sorted, func(i, j int) bool {
		return treeSortKey(sorted[i]) < treeSortKey(sorted[j])
	})

	var buf bytes.Buffer
	names := make(map[string]struct{}, len(sorted))
	for _, l := range sorted {
		if l.Path == "" || strings.ContainsAny(l.Path, "/\x00") {
			return nil, Errorf(KindMalformedObject, "tree: invalid leaf path %q", l.Path)
		}
		if _, dup := names[l.Path]; dup {
			return nil, Errorf(KindMalformedObject, "tree: duplicate leaf %q", l.Path)
		}
		names[l.Path] = struct{}{}
		raw, err := hex.DecodeString(string(l.Hash))
		if err != nil || len(raw) != HashSize/2 {
			return nil, Errorf(KindEncoding, "tree: leaf %q has invalid digest %q", l.Path, l.Hash)
		}
		buf.WriteString(canonicalMode(l.Mode))
		buf.WriteByte(' ')
		buf.WriteString(l.Path)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func treeSortKey(l TreeLeaf) string {
	if l.IsDir() {
		return l.Path + "/"
	}
	return l.Path
}

// unmarshalTree parses git's binary tree format, keeping stored order.
func unmarshalTree(data []byte) ([]TreeLeaf, error) {
	var leaves []TreeLeaf
	names := make(map[string]struct{})
	pos := 0
	for pos < len(data) {
		sp, err := scan.FindFrom(data, ' ', pos)
		if err != nil {
			return nil, WrapError(KindMalformedObject, err, "tree: leaf at offset %d has no mode", pos)
		}
		nul, err := scan.FindFrom(data, 0, sp)
		if err != nil {
			return nil, WrapError(KindMalformedObject, err, "tree: leaf at offset %d has no path terminator", pos)
		}
		end := nul + 1 + HashSize/2
		if end > len(data) {
			return nil, Errorf(KindMalformedObject, "tree: leaf at offset %d is truncated", pos)
		}

		mode := string(data[pos:sp])
		if !isMode(mode) {
			return nil, Errorf(KindMalformedObject, "tree: unknown mode %q", mode)
		}
		path := data[sp+1 : nul]
		if !utf8.Valid(path) {
			return nil, Errorf(KindEncoding, "tree: leaf path is not valid UTF-8")
		}
		if _, dup := names[string(path)]; dup {
			return nil, Errorf(KindMalformedObject, "tree: duplicate leaf %q", path)
		}
		names[string(path)] = struct{}{}
		leaves = append(leaves, TreeLeaf{
			Mode: normalizeMode(mode),
			Path: string(path),
			Hash: hashFromRaw(data[nul+1 : end]),
		})
		pos = end
	}
	return leaves, nil
}

// normalizeMode pads a five-digit mode to six digits.
func normalizeMode(mode string) string {
	if len(mode) == 5 {
		return "0" + mode
	}
	return mode
}

// canonicalMode strips the leading zero git omits when writing trees.
func canonicalMode(mode string) string {
	if strings.TrimSpace(mode) == "" {
		return TreeModeFile
	}
	return strings.TrimPrefix(mode, "0")
}

func isMode(mode string) bool {
	if len(mode) != 5 && len(mode) != 6 {
		return false
	}
	for i := 0; i < len(mode); i++ {
		if mode[i] < '0' || mode[i] > '7' {
			return false
		}
	}
	return true
}
