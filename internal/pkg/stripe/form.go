package stripe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FormField is one key/value pair of an outbound request body.
type FormField struct {
	Key   string
	Value interface{}
}

// FormValues is an ordered parameter list serialized into the bracket-indexed
// application/x-www-form-urlencoded encoding the Stripe API expects. Order is
// preserved end to end because array parameters are positional on the
// receiving side.
type FormValues []FormField

// Add appends a parameter and returns the extended list.
func (v FormValues) Add(key string, value interface{}) FormValues {
	return append(v, FormField{Key: key, Value: value})
}

// Encode renders the parameter list as a single form-encoded string. Nested
// FormValues become key[sub]=..., slices of FormValues become key[i][sub]=...
// with 0-based indices. Nesting is one level deep, matching what the API
// accepts for session parameters.
func (v FormValues) Encode() string {
	pairs := make([]string, 0, len(v))
	for _, f := range v {
		switch val := f.Value.(type) {
		case FormValues:
			for _, sub := range val {
				pairs = append(pairs, encodePair(f.Key+"["+sub.Key+"]", sub.Value))
			}
		case []FormValues:
			for i, item := range val {
				for _, sub := range item {
					pairs = append(pairs, encodePair(fmt.Sprintf("%s[%d][%s]", f.Key, i, sub.Key), sub.Value))
				}
			}
		default:
			pairs = append(pairs, encodePair(f.Key, f.Value))
		}
	}
	return strings.Join(pairs, "&")
}

func encodePair(key string, value interface{}) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(scalarString(value))
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
