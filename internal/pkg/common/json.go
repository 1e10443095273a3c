package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON decodes a JSON string into v.
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v, false)
}

// ParseJSONStrict decodes a JSON string into v, rejecting unknown fields.
func ParseJSONStrict(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v, true)
}

// ParseJSONBytes decodes a JSON byte slice into v.
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v, false)
}

func decodeJSON(r io.Reader, v interface{}, disallowUnknown bool) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	// reject trailing data after the first document
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var (
	unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	fencedJSONPattern  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	objectPattern      = regexp.MustCompile(`(?s)\{.*\}`)
)

// QuoteJSONKeys adds double quotes around bare object keys. Model output
// occasionally omits them.
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

// ExtractJSONObject pulls the first JSON object out of free-form model output.
// It strips markdown code fences first, then falls back to the outermost
// brace-delimited span.
func ExtractJSONObject(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if m := fencedJSONPattern.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw, nil
	}

	if m := objectPattern.FindString(raw); m != "" {
		return m, nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// ToJSON marshals v into a JSON string.
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
