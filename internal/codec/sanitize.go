package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// sanitize rewrites extended-JSON source (// and /* */ comments, trailing
// commas before } or ], and """triple-quoted""" multi-line strings) into
// byte-identical-structure canonical JSON that encoding/json can tokenize.
// Regular "..." strings pass through untouched.
func sanitize(src []byte) ([]byte, error) {
	var out bytes.Buffer
	n := len(src)
	i := 0
	for i < n {
		c := src[i]
		switch {
		case isTripleQuote(src, i):
			content, consumed, err := readTripleQuoted(src, i)
			if err != nil {
				return nil, err
			}
			lit, err := jsonStringLiteral(content)
			if err != nil {
				return nil, err
			}
			out.Write(lit)
			i += consumed
		case c == '"':
			consumed, err := copyNormalString(src, i, &out)
			if err != nil {
				return nil, err
			}
			i += consumed
		case c == '/' && i+1 < n && src[i+1] == '/':
			i += 2
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			if i+1 >= n {
				return nil, fmt.Errorf("codec: unterminated block comment")
			}
			i += 2
		case c == ',':
			j := i + 1
			for j < n && isJSONSpace(src[j]) {
				j++
			}
			if j < n && (src[j] == '}' || src[j] == ']') {
				// drop the trailing comma
			} else {
				out.WriteByte(',')
			}
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.Bytes(), nil
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTripleQuote(src []byte, i int) bool {
	return i+2 < len(src) && src[i] == '"' && src[i+1] == '"' && src[i+2] == '"'
}

// readTripleQuoted parses a """...""" block starting at src[i] (pointing at
// the first of the three opening quotes). Within the block, \" decodes to a
// literal quote and \\ decodes to a literal backslash so that content may
// contain an embedded """ sequence (escaped by the writer, see encode.go);
// any other backslash sequence is kept verbatim. Returns the decoded
// content and the number of source bytes consumed, including both
// delimiters.
func readTripleQuoted(src []byte, i int) (string, int, error) {
	n := len(src)
	j := i + 3
	var content bytes.Buffer
	for {
		if j >= n {
			return "", 0, fmt.Errorf("codec: unterminated triple-quoted string")
		}
		if src[j] == '\\' && j+1 < n {
			switch src[j+1] {
			case '"':
				content.WriteByte('"')
			case '\\':
				content.WriteByte('\\')
			default:
				content.WriteByte('\\')
				content.WriteByte(src[j+1])
			}
			j += 2
			continue
		}
		if src[j] == '"' && j+2 < n && src[j+1] == '"' && src[j+2] == '"' {
			j += 3
			return content.String(), j - i, nil
		}
		if src[j] == '"' && j+2 == n && src[j+1] == '"' {
			return "", 0, fmt.Errorf("codec: unterminated triple-quoted string")
		}
		content.WriteByte(src[j])
		j++
	}
}

// copyNormalString copies a standard JSON "..." string verbatim, including
// both quotes, respecting backslash escapes so an escaped quote doesn't
// end the scan early. Returns the number of bytes consumed.
func copyNormalString(src []byte, i int, out *bytes.Buffer) (int, error) {
	n := len(src)
	out.WriteByte('"')
	j := i + 1
	for {
		if j >= n {
			return 0, fmt.Errorf("codec: unterminated string")
		}
		if src[j] == '\\' && j+1 < n {
			out.WriteByte(src[j])
			out.WriteByte(src[j+1])
			j += 2
			continue
		}
		if src[j] == '"' {
			out.WriteByte('"')
			j++
			return j - i, nil
		}
		out.WriteByte(src[j])
		j++
	}
}

// jsonStringLiteral renders s as a canonical JSON string literal without
// Go's default HTML-escaping, so ESQL/query text containing < > & round-
// trips unchanged.
func jsonStringLiteral(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("codec: encode string literal: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses extended-JSON bytes into an order-preserving Node tree.
func Decode(data []byte) (*Node, error) {
	canon, err := sanitize(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(canon))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("codec: decode: %w", err)
	}
	node, err := decodeValue(dec, tok)
	if err != nil {
		return nil, fmt.Errorf("codec: decode: %w", err)
	}
	return node, nil
}

func decodeValue(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("codec: non-string object key %v", keyTok)
				}
				valTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				obj.Keys = append(obj.Keys, key)
				obj.Fields[key] = val
			}
			if _, err := dec.Token(); err != nil { // consume closing '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := &Node{Kind: KindArray}
			for dec.More() {
				valTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, val)
			}
			if _, err := dec.Token(); err != nil { // consume closing ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("codec: unexpected delimiter %v", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return &Node{Kind: KindNumber, Num: t}, nil
	case float64:
		return &Node{Kind: KindNumber, Num: json.Number(fmt.Sprintf("%v", t))}, nil
	case bool:
		return Bool(t), nil
	case nil:
		return &Node{Kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("codec: unexpected token %v (%T)", tok, tok)
	}
}
