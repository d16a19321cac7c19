// Package cmd adapts functions taking a go-flags option struct into
// mitchellh/cli commands.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"

	"github.com/anass-b/samurai/pkg/progress"
	"github.com/hashicorp/go-hclog"
	"github.com/jessevdk/go-flags"
)

// Leveled is implemented by option structs that choose the log level of
// the command.
type Leveled interface {
	LogLevel() hclog.Level
}

type Cmd struct {
	syn, name string
	f         reflect.Value

	opts   reflect.Value
	parser *flags.Parser
}

// New wraps f, which must look like func(context.Context, T) error where T
// is a struct of go-flags options.
func New(name, syn string, f interface{}) *Cmd {
	rv := reflect.ValueOf(f)

	if rv.Kind() != reflect.Func {
		panic("must pass a function")
	}

	rt := rv.Type()

	if rt.NumIn() != 2 {
		panic("must provide two arguments only")
	}

	if rt.NumOut() != 1 {
		panic("must return one argument only")
	}

	in := rt.In(1)

	if in.Kind() != reflect.Struct {
		panic("argument must be a struct")
	}

	sv := reflect.New(in)

	parser := flags.NewNamedParser(name, flags.Default)
	parser.ShortDescription = syn
	parser.LongDescription = syn

	_, err := parser.AddGroup("Application Options", "", sv.Interface())
	if err != nil {
		panic(err)
	}

	return &Cmd{
		syn:    syn,
		name:   name,
		f:      rv,
		opts:   sv,
		parser: parser,
	}
}

func (w *Cmd) Help() string {
	var buf bytes.Buffer
	w.parser.WriteHelp(&buf)
	return buf.String()
}

func (w *Cmd) Synopsis() string {
	return w.syn
}

func (w *Cmd) Run(args []string) int {
	_, err := w.parser.ParseArgs(args)
	if err != nil {
		return 1
	}

	level := hclog.Info

	if l, ok := w.opts.Interface().(Leveled); ok {
		level = l.LogLevel()
	}

	hclog.SetDefault(hclog.New(&hclog.LoggerOptions{
		Name:   "samurai",
		Level:  level,
		Output: os.Stderr,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelOnSignal(cancel, signals...)

	ctx = progress.Open(ctx, os.Stderr)

	rets := w.f.Call([]reflect.Value{reflect.ValueOf(ctx), w.opts.Elem()})

	if err, ok := rets[0].Interface().(error); ok {
		if err != nil {
			if level <= hclog.Debug {
				fmt.Fprintf(os.Stderr, "! Error: %+v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "! Error: %s\n", err)
			}
			return 1
		}
	}

	return 0
}

func cancelOnSignal(cancel func(), signals ...os.Signal) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, signals...)

	go func() {
		for range c {
			cancel()
		}
	}()
}
