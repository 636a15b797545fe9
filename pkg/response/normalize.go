package response

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize converts a raw generator result into a canonical Response.
//
// Rules, in priority order:
//   - explicit tuple ([]any of [status, body] or [status, body, headers]
//     with an HTTP status integer first): status and headers are used
//     as-is, no content type is injected.
//   - nil: 204 with no body. The content type is still set to JSON for
//     consistency with object responses.
//   - string: 200 text/plain.
//   - bool or numeric: 200 text/plain, body stringified.
//   - []byte: 200 application/octet-stream.
//   - anything else (maps, slices, structs): 200 application/json.
//
// A nil body inside a tuple forces status 204 even when the tuple gave
// another status; [200, nil] normalizes to a bodyless 204. Tuples with
// a non-nil body keep their status untouched.
//
// contentType, when non-empty, overrides the inferred content type for
// non-tuple results. If it is a non-JSON type and the body is an object,
// the body is serialized to a JSON string first so adapters can write it
// verbatim.
func Normalize(raw any, contentType string) *Response {
	if tuple, ok := asTuple(raw); ok {
		return normalizeTuple(tuple)
	}

	resp := New(200, nil)

	switch v := raw.(type) {
	case nil:
		resp.Status = 204
		resp.Headers[HeaderContentType] = ContentTypeJSON
	case string:
		resp.Body = v
		resp.Headers[HeaderContentType] = ContentTypeText
	case bool:
		resp.Body = strconv.FormatBool(v)
		resp.Headers[HeaderContentType] = ContentTypeText
	case []byte:
		resp.Body = v
		resp.Headers[HeaderContentType] = ContentTypeBinary
	default:
		if s, ok := stringifyNumber(raw); ok {
			resp.Body = s
			resp.Headers[HeaderContentType] = ContentTypeText
		} else {
			resp.Body = v
			resp.Headers[HeaderContentType] = ContentTypeJSON
		}
	}

	if contentType != "" {
		applyContentTypeOverride(resp, contentType)
	}
	return resp
}

// normalizeTuple builds a Response from an explicit [status, body, headers?]
// tuple. No smart defaults apply; the headers map stays empty for the
// two-element form.
func normalizeTuple(t []any) *Response {
	status, _ := asStatus(t[0])
	resp := New(status, t[1])

	if len(t) >= 3 {
		for k, v := range asHeaderMap(t[2]) {
			resp.Headers[k] = v
		}
	}

	// Tuple post-processing: a nil body always means 204, even when the
	// tuple named another status.
	if resp.Body == nil {
		resp.Status = 204
	}
	return resp
}

// IsTuple reports whether raw would normalize as an explicit response
// tuple, for callers that need to distinguish tuples from plain array
// results before normalization runs.
func IsTuple(raw any) bool {
	_, ok := asTuple(raw)
	return ok
}

// asTuple reports whether raw is an explicit response tuple: a []any of
// length >= 2 whose first element is an integer in [100,599].
func asTuple(raw any) ([]any, bool) {
	t, ok := raw.([]any)
	if !ok || len(t) < 2 {
		return nil, false
	}
	if _, ok := asStatus(t[0]); !ok {
		return nil, false
	}
	return t, true
}

// asStatus converts a value to an HTTP status integer. JSON and YAML
// decoders produce float64 and int respectively, so both are accepted;
// a float only counts when it holds an integral value.
func asStatus(v any) (int, bool) {
	var s int
	switch n := v.(type) {
	case int:
		s = n
	case int8:
		s = int(n)
	case int16:
		s = int(n)
	case int32:
		s = int(n)
	case int64:
		s = int(n)
	case uint:
		s = int(n)
	case uint8:
		s = int(n)
	case uint16:
		s = int(n)
	case uint32:
		s = int(n)
	case uint64:
		s = int(n)
	case float32:
		if float32(math.Trunc(float64(n))) != n {
			return 0, false
		}
		s = int(n)
	case float64:
		if math.Trunc(n) != n {
			return 0, false
		}
		s = int(n)
	default:
		return 0, false
	}
	if !validStatus(s) {
		return 0, false
	}
	return s, true
}

// asHeaderMap converts a tuple's third element to a header map.
// Both map[string]string and the map[string]any produced by decoders
// are accepted; non-string values are formatted.
func asHeaderMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			if s, ok := val.(string); ok {
				out[k] = s
				continue
			}
			out[k] = fmt.Sprint(val)
		}
		return out
	default:
		return nil
	}
}

// stringifyNumber formats numeric raw results for text/plain bodies.
func stringifyNumber(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(n), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	default:
		return "", false
	}
}

// applyContentTypeOverride replaces the inferred content type. Object
// bodies headed for a non-JSON content type are pre-serialized so the
// caller receives a string it can write directly.
func applyContentTypeOverride(resp *Response, contentType string) {
	resp.Headers[HeaderContentType] = contentType
	if isJSONContentType(contentType) || resp.Body == nil {
		return
	}
	switch resp.Body.(type) {
	case string, []byte:
		return
	}
	data, err := json.Marshal(resp.Body)
	if err != nil {
		// Unserializable bodies fall back to fmt; normalization never fails.
		resp.Body = fmt.Sprint(resp.Body)
		return
	}
	resp.Body = string(data)
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "json")
}
