package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces the canonical byte encoding of a Value.
//
// The encoding is JSON-shaped with three hard guarantees:
//  1. Map keys appear in ascending byte-lexical order
//  2. Strings are NFC normalized before encoding
//  3. No HTML escaping (< > & stay literal)
//
// Marshal is total over the sealed Value union; an unknown variant is an
// internal-consistency violation and panics.
func Marshal(v Value) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value) {
	switch val := v.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		buf.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
	case String:
		buf.Write(encodeString(string(val)))
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, elem)
		}
		buf.WriteByte(']')
	case Map:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(encodeString(k))
			buf.WriteByte(':')
			writeValue(buf, val[k])
		}
		buf.WriteByte('}')
	default:
		panic(fmt.Sprintf("canon: unknown Value type %T", v))
	}
}

// encodeString encodes a string as a JSON string literal with NFC
// normalization and without HTML escaping.
func encodeString(s string) []byte {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		// json encoding of a string cannot fail
		panic(fmt.Sprintf("canon: encode string: %v", err))
	}

	// json.Encoder appends a trailing newline, strip it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result
}
