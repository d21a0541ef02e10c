package coc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// JSON value type names used in DecodeError.Type.
const (
	typeMissing = "missing"
	typeNull    = "null"
	typeString  = "string"
	typeNumber  = "number"
	typeBoolean = "boolean"
	typeObject  = "object"
	typeArray   = "array"
	typeInvalid = "invalid"
)

// bindFunc binds one parsed JSON value found at path.
type bindFunc[T any] func(v any, path string) (T, error)

// parseDocument parses data into a generic tree. Numbers are kept as
// json.Number so integers and floats can be told apart during binding.
func parseDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// decodeDocument parses data and binds it with bind, reporting malformed
// JSON as a DecodeError against model.
func decodeDocument[T any](model string, data []byte, bind bindFunc[T]) (T, error) {
	var zero T
	tree, err := parseDocument(data)
	if err != nil {
		return zero, &DecodeError{
			Model:  model,
			Type:   typeInvalid,
			Reason: "malformed JSON document",
			Err:    err,
		}
	}
	return bind(tree, "")
}

// jsonType names the JSON type of a parsed value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return typeNull
	case string:
		return typeString
	case json.Number:
		return typeNumber
	case bool:
		return typeBoolean
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	default:
		return fmt.Sprintf("%T", v)
	}
}

// scalar returns v when it is a JSON scalar, nil otherwise.
func scalar(v any) any {
	switch t := v.(type) {
	case string, bool:
		return t
	case json.Number:
		return t.String()
	default:
		return nil
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// object binds the properties of one JSON object for a single model. It
// keeps only the first failure; later accessors become no-ops once one
// has been recorded.
type object struct {
	model  string
	path   string
	fields map[string]any
	seen   map[string]struct{}
	err    error
}

// newObject asserts that v is a JSON object.
func newObject(model, path string, v any) (*object, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{
			Model:    model,
			Property: path,
			Value:    scalar(v),
			Type:     jsonType(v),
			Reason:   "expected object",
		}
	}
	return &object{
		model:  model,
		path:   path,
		fields: fields,
		seen:   make(map[string]struct{}, len(fields)),
	}, nil
}

func (o *object) fail(key string, v any, typ, reason string, err error) {
	if o.err != nil {
		return
	}
	o.err = &DecodeError{
		Model:    o.model,
		Property: joinPath(o.path, key),
		Value:    scalar(v),
		Type:     typ,
		Reason:   reason,
		Err:      err,
	}
}

// lookup marks key as consumed and returns its value. A missing key is
// reported as a failure unless optional is set.
func (o *object) lookup(key string, optional bool) (any, bool) {
	if o.err != nil {
		return nil, false
	}
	o.seen[key] = struct{}{}
	v, ok := o.fields[key]
	if !ok {
		if !optional {
			o.fail(key, nil, typeMissing, "missing required property", nil)
		}
		return nil, false
	}
	return v, true
}

func (o *object) str(key string, v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		o.fail(key, v, jsonType(v), "expected string", nil)
	}
	return s, ok
}

func (o *object) integer(key string, v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		o.fail(key, v, jsonType(v), "expected integer", nil)
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		o.fail(key, v, typeNumber, "expected integer", err)
		return 0, false
	}
	return int(i), true
}

func (o *object) float(key string, v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		o.fail(key, v, jsonType(v), "expected number", nil)
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		o.fail(key, v, typeNumber, "expected number", err)
		return 0, false
	}
	return f, true
}

// String binds a required string property.
func (o *object) String(key string) string {
	v, ok := o.lookup(key, false)
	if !ok {
		return ""
	}
	s, _ := o.str(key, v)
	return s
}

// OptString binds an optional string property. Absent and null both yield nil.
func (o *object) OptString(key string) *string {
	v, ok := o.lookup(key, true)
	if !ok || v == nil {
		return nil
	}
	s, ok := o.str(key, v)
	if !ok {
		return nil
	}
	return &s
}

// Int binds a required integer property.
func (o *object) Int(key string) int {
	v, ok := o.lookup(key, false)
	if !ok {
		return 0
	}
	i, _ := o.integer(key, v)
	return i
}

// OptInt binds an optional integer property. Absent and null both yield nil.
func (o *object) OptInt(key string) *int {
	v, ok := o.lookup(key, true)
	if !ok || v == nil {
		return nil
	}
	i, ok := o.integer(key, v)
	if !ok {
		return nil
	}
	return &i
}

// Float binds a required number property. Integral values are accepted.
func (o *object) Float(key string) float64 {
	v, ok := o.lookup(key, false)
	if !ok {
		return 0
	}
	f, _ := o.float(key, v)
	return f
}

// Bool binds a required boolean property.
func (o *object) Bool(key string) bool {
	v, ok := o.lookup(key, false)
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	if !isBool {
		o.fail(key, v, jsonType(v), "expected boolean", nil)
	}
	return b
}

// StringMap binds a required object whose values are all strings.
func (o *object) StringMap(key string) map[string]string {
	v, ok := o.lookup(key, false)
	if !ok {
		return nil
	}
	m, isObject := v.(map[string]any)
	if !isObject {
		o.fail(key, v, jsonType(v), "expected object", nil)
		return nil
	}
	out := make(map[string]string, len(m))
	for _, k := range sortedKeys(m) {
		s, isString := m[k].(string)
		if !isString {
			o.fail(key+"."+k, m[k], jsonType(m[k]), "expected string", nil)
			return nil
		}
		out[k] = s
	}
	return out
}

// Done finishes binding. With strict set, properties that no accessor
// consumed are reported as unexpected.
func (o *object) Done(strict bool) error {
	if o.err != nil {
		return o.err
	}
	if !strict {
		return nil
	}
	for _, k := range sortedKeys(o.fields) {
		if _, ok := o.seen[k]; !ok {
			o.fail(k, o.fields[k], jsonType(o.fields[k]), "unexpected property", nil)
			return o.err
		}
	}
	return nil
}

// field binds a required nested model.
func field[T any](o *object, key string, bind bindFunc[T]) T {
	var zero T
	v, ok := o.lookup(key, false)
	if !ok {
		return zero
	}
	out, err := bind(v, joinPath(o.path, key))
	if err != nil {
		o.err = err
		return zero
	}
	return out
}

// optField binds an optional nested model. Absent and null both yield nil.
func optField[T any](o *object, key string, bind bindFunc[T]) *T {
	v, ok := o.lookup(key, true)
	if !ok || v == nil {
		return nil
	}
	out, err := bind(v, joinPath(o.path, key))
	if err != nil {
		o.err = err
		return nil
	}
	return &out
}

// list binds a required array of nested models. One bad element fails the
// whole array.
func list[T any](o *object, key string, bind bindFunc[T]) []T {
	v, ok := o.lookup(key, false)
	if !ok {
		return nil
	}
	return bindList(o, key, v, bind)
}

// optList binds an optional array of nested models.
func optList[T any](o *object, key string, bind bindFunc[T]) []T {
	v, ok := o.lookup(key, true)
	if !ok || v == nil {
		return nil
	}
	return bindList(o, key, v, bind)
}

func bindList[T any](o *object, key string, v any, bind bindFunc[T]) []T {
	arr, ok := v.([]any)
	if !ok {
		o.fail(key, v, jsonType(v), "expected array", nil)
		return nil
	}
	out := make([]T, 0, len(arr))
	base := joinPath(o.path, key)
	for i, elem := range arr {
		item, err := bind(elem, indexPath(base, i))
		if err != nil {
			o.err = err
			return nil
		}
		out = append(out, item)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
