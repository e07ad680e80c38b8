package executor

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// QueryParam is one query string pair. Order is preserved on the wire.
type QueryParam struct {
	Key   string
	Value string
}

// RequestSpec describes one logical call. Body is JSON-encoded unless it is
// already a []byte or json.RawMessage.
type RequestSpec struct {
	Method string
	Path   string
	Query  []QueryParam
	Body   any
}

// Query builds an ordered query parameter list from alternating key/value
// strings. A trailing key without value is ignored.
func Query(pairs ...string) []QueryParam {
	params := make([]QueryParam, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		params = append(params, QueryParam{Key: pairs[i], Value: pairs[i+1]})
	}
	return params
}

func buildURL(baseURL string, spec RequestSpec) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	if spec.Path != "" && !strings.HasPrefix(spec.Path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(spec.Path)

	for i, p := range spec.Query {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
