package banksdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, the same as the bank's other clients.
	decimal.MarshalJSONWithoutQuotes = true
}

// TimeLayout is the only timestamp format on the wire: UTC, seven fractional
// digits.
const TimeLayout = "2006-01-02T15:04:05.0000000Z07:00"

// Time is a timestamp in the wire format. Decoding accepts nothing else.
type Time struct {
	time.Time
}

// NewTime wraps t, normalised to UTC.
func NewTime(t time.Time) Time {
	return Time{Time: t.UTC()}
}

// ParseTime parses s strictly in TimeLayout.
func ParseTime(s string) (Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return Time{}, fmt.Errorf("banksdk: invalid timestamp %q: %w", s, err)
	}
	return NewTime(t), nil
}

func (t Time) String() string {
	return t.UTC().Format(TimeLayout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("banksdk: timestamp must be a string: %w", err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Empty is the result of calls that return no content. Any body the server
// sends with it is ignored.
type Empty struct{}

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// checkRequired walks the JSON document against t and reports the first
// field without omitempty that is missing or null. encoding/json would
// silently leave such fields at their zero value.
func checkRequired(data []byte, t reflect.Type) error {
	return requiredIn(json.RawMessage(data), t, "")
}

func requiredIn(raw json.RawMessage, t reflect.Type, path string) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if isNull(raw) || reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			// Leave the type mismatch to the real decoder.
			return nil
		}
		return requiredFields(obj, t, path)

	case reflect.Slice, reflect.Array:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		for i, item := range items {
			if err := requiredIn(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func requiredFields(obj map[string]json.RawMessage, t reflect.Type, path string) error {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, optional := jsonField(f)
		if name == "-" {
			continue
		}

		key := joinPath(path, name)
		v, ok := field(obj, name)
		if !optional && (!ok || isNull(v)) {
			return fmt.Errorf("missing required field %q", key)
		}
		if ok {
			if err := requiredIn(v, f.Type, key); err != nil {
				return err
			}
		}
	}
	return nil
}

// field looks name up the way encoding/json matches keys: exact first, then
// case-insensitively.
func field(obj map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func jsonField(f reflect.StructField) (name string, optional bool) {
	tag := f.Tag.Get("json")
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			optional = true
		}
	}
	return name, optional
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

var errEmptyBody = errors.New("empty body")
