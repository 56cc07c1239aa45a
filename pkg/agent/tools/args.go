package tools

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Arguments is a decoded tool argument object.
type Arguments struct {
	tool   string
	values map[string]interface{}
}

// ParseArguments decodes the raw argument payload of an invocation. Empty or
// null payloads decode to an empty object. Payloads that are not valid JSON
// are passed through jsonrepair once before being rejected.
func ParseArguments(tool string, raw json.RawMessage) (Arguments, error) {
	args := Arguments{tool: tool, values: map[string]interface{}{}}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return args, nil
	}

	if err := decodeObject(trimmed, &args.values); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(trimmed))
		if repairErr != nil {
			return args, &ArgumentError{Tool: tool, Reason: "arguments are not valid JSON: " + err.Error()}
		}
		args.values = map[string]interface{}{}
		if err := decodeObject([]byte(repaired), &args.values); err != nil {
			return args, &ArgumentError{Tool: tool, Reason: "arguments are not a JSON object: " + err.Error()}
		}
	}
	if args.values == nil {
		args.values = map[string]interface{}{}
	}
	return args, nil
}

func decodeObject(data []byte, out *map[string]interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

// String returns a required string argument. Unless allowEmpty is set, a
// blank value counts as missing.
func (a Arguments) String(name string, allowEmpty bool) (string, error) {
	v, ok := a.values[name]
	if !ok || v == nil {
		return "", a.missing(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgumentError{Tool: a.tool, Param: name, Reason: "must be a string"}
	}
	if !allowEmpty && strings.TrimSpace(s) == "" {
		return "", a.missing(name)
	}
	return s, nil
}

// Int returns a required integer argument. JSON integers, integral floats
// and numeric strings are accepted.
func (a Arguments) Int(name string) (int, error) {
	v, ok := a.values[name]
	if !ok || v == nil {
		return 0, a.missing(name)
	}

	notInt := &ArgumentError{Tool: a.tool, Param: name, Reason: "must be an integer"}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, notInt
		}
		return int(f), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, notInt
		}
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, notInt
		}
		return i, nil
	default:
		return 0, notInt
	}
}

func (a Arguments) missing(name string) error {
	return &ArgumentError{Tool: a.tool, Param: name, Reason: "required argument is missing"}
}
