// Package subst rewrites manifest text with variables given on the command
// line (${NAME}) and variables taken from the process environment (@{NAME}).
//
// Two modes are offered. Values rewrites only JSON string values, leaving
// keys and structure alone. Text rewrites the raw text before it is parsed,
// doubling backslashes in substituted values so the result still parses; a
// value can therefore inject arbitrary JSON.
package subst

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedVar = errors.New("malformed variable")

// Var is a single NAME=VALUE pair from the command line.
type Var struct {
	Name  string
	Value string
}

// ParseVars splits a semicolon separated list of NAME=VALUE pairs. Empty
// entries are ignored and a value may itself contain '='.
func ParseVars(s string) ([]Var, error) {
	var vars []Var

	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}

		idx := strings.IndexByte(part, '=')
		if idx <= 0 {
			return nil, errors.Wrapf(ErrMalformedVar, "expected NAME=VALUE, got %q", part)
		}

		vars = append(vars, Var{Name: part[:idx], Value: part[idx+1:]})
	}

	return vars, nil
}

// LookupFunc resolves an environment variable, as os.LookupEnv does.
type LookupFunc func(name string) (string, bool)

var envRe = regexp.MustCompile(`(?i)@\{(.+?)\}`)

func escape(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

type Engine struct {
	Vars []Var

	// Lookup defaults to os.LookupEnv.
	Lookup LookupFunc

	escape bool
}

func (e *Engine) lookup() LookupFunc {
	if e.Lookup != nil {
		return e.Lookup
	}

	return os.LookupEnv
}

// ReplaceVars performs the command line pass on s.
func (e *Engine) ReplaceVars(s string) string {
	for _, v := range e.Vars {
		value := v.Value
		if e.escape {
			value = escape(value)
		}

		s = strings.ReplaceAll(s, "${"+v.Name+"}", value)
	}

	return s
}

// ReplaceEnv performs the environment pass on s. Tokens naming unset
// variables are left as they are.
func (e *Engine) ReplaceEnv(s string) string {
	lookup := e.lookup()

	return envRe.ReplaceAllStringFunc(s, func(tok string) string {
		name := envRe.FindStringSubmatch(tok)[1]

		value, ok := lookup(name)
		if !ok {
			return tok
		}

		if e.escape {
			value = escape(value)
		}

		return value
	})
}

// Replace runs the command line pass followed by the environment pass.
func (e *Engine) Replace(s string) string {
	return e.ReplaceEnv(e.ReplaceVars(s))
}

// Text substitutes directly on the raw manifest text.
func Text(data []byte, vars []Var, lookup LookupFunc) []byte {
	e := &Engine{Vars: vars, Lookup: lookup, escape: true}
	return []byte(e.Replace(string(data)))
}

// Values substitutes on the string values of a JSON document and returns the
// re-encoded document. Member order is preserved.
func Values(data []byte, vars []Var, lookup LookupFunc) ([]byte, error) {
	e := &Engine{Vars: vars, Lookup: lookup}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		out bytes.Buffer
		w   = writer{buf: &out}
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}

			return nil, errors.Wrapf(err, "tokenizing manifest")
		}

		switch v := tok.(type) {
		case json.Delim:
			w.delim(v)
		case string:
			if w.expectKey() {
				w.str(v)
			} else {
				w.str(e.Replace(v))
			}
		case json.Number:
			w.raw(v.String())
		case bool:
			if v {
				w.raw("true")
			} else {
				w.raw("false")
			}
		case nil:
			w.raw("null")
		}
	}

	return out.Bytes(), nil
}

type frame struct {
	object bool
	count  int
}

// writer re-encodes a token stream produced by json.Decoder.Token, which
// omits commas and colons.
type writer struct {
	buf   *bytes.Buffer
	stack []frame
}

func (w *writer) top() *frame {
	if len(w.stack) == 0 {
		return nil
	}

	return &w.stack[len(w.stack)-1]
}

func (w *writer) expectKey() bool {
	f := w.top()
	return f != nil && f.object && f.count%2 == 0
}

func (w *writer) separate() {
	f := w.top()
	if f == nil {
		return
	}

	switch {
	case f.object && f.count%2 == 1:
		w.buf.WriteByte(':')
	case f.count > 0:
		w.buf.WriteByte(',')
	}

	f.count++
}

func (w *writer) delim(d json.Delim) {
	switch d {
	case '{', '[':
		w.separate()
		w.buf.WriteByte(byte(d))
		w.stack = append(w.stack, frame{object: d == '{'})
	default:
		w.buf.WriteByte(byte(d))
		w.stack = w.stack[:len(w.stack)-1]
	}
}

func (w *writer) raw(s string) {
	w.separate()
	w.buf.WriteString(s)
}

func (w *writer) str(s string) {
	w.separate()

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encoding a string cannot fail.
	enc.Encode(s)

	w.buf.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}
