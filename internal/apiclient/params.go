package apiclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Params are query parameters. A nil value, including a typed nil pointer,
// means "not set" and the key is left out of the URL.
type Params map[string]any

// Values flattens p into url.Values.
func (p Params) Values() url.Values {
	values := url.Values{}
	for key, raw := range p {
		v, ok := deref(raw)
		if !ok {
			continue
		}
		switch tv := v.(type) {
		case []string:
			for _, s := range tv {
				values.Add(key, s)
			}
		case []int:
			for _, n := range tv {
				values.Add(key, strconv.Itoa(n))
			}
		default:
			values.Set(key, stringify(v))
		}
	}
	return values
}

// Encode returns the URL-encoded query string, sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// stringify renders a single value the way the API expects it in a query
// string or a multipart field.
func stringify(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case int:
		return strconv.Itoa(tv)
	case int64:
		return strconv.FormatInt(tv, 10)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case time.Time:
		return tv.Format(time.RFC3339)
	case fmt.Stringer:
		return tv.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}
