package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type Var struct {
	Name  string
	Value string
}

// Vars is a CMake variable mapping that keeps the order the manifest
// declares its members in.
type Vars []Var

func (v Vars) Lookup(name string) (string, bool) {
	for _, x := range v {
		if x.Name == name {
			return x.Value, true
		}
	}

	return "", false
}

// Merge returns v followed by the members of extra that v does not already
// define.
func (v Vars) Merge(extra Vars) Vars {
	out := make(Vars, 0, len(v)+len(extra))
	out = append(out, v...)

	for _, x := range extra {
		if _, ok := out.Lookup(x.Name); ok {
			continue
		}

		out = append(out, x)
	}

	return out
}

func (v *Vars) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*v = nil
		return nil
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("vars must be an object, got %v", tok)
	}

	var out Vars

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		name, ok := tok.(string)
		if !ok {
			return errors.Errorf("unexpected vars key: %v", tok)
		}

		var raw json.RawMessage

		err = dec.Decode(&raw)
		if err != nil {
			return errors.Wrapf(err, "decoding var %s", name)
		}

		value, err := varValue(raw)
		if err != nil {
			return errors.Wrapf(err, "decoding var %s", name)
		}

		out = append(out, Var{Name: name, Value: value})
	}

	*v = out

	return nil
}

// varValue renders scalar JSON values the way they are written, so
// numbers and booleans can be used without quoting.
func varValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[':
		return "", errors.New("value must be a scalar")
	case 'n':
		return "", nil
	default:
		return string(raw), nil
	}
}

func (v Vars) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, x := range v {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(x.Name)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(x.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
