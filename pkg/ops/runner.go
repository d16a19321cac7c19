package ops

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/pkg/errors"
)

// Runner runs an external program to completion.
type Runner interface {
	Run(ctx context.Context, name string, inv *manifest.Invocation) error
}

// ExecRunner spawns programs and streams their output to the UI on the
// context, each line prefixed with name.
type ExecRunner struct {
	common
}

func (r *ExecRunner) Run(ctx context.Context, name string, inv *manifest.Invocation) error {
	r.L().Debug("running program", "package", name, "program", inv.Program, "args", inv.Args, "dir", inv.Dir)

	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir

	err := runCmd(cmd, GetUI(ctx).Prefixed(name))
	if err != nil {
		return errors.Wrapf(err, "running %s", inv)
	}

	return nil
}

func runCmd(cmd *exec.Cmd, out io.Writer) error {
	or, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	er, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	copyLines := func(r io.Reader) {
		defer wg.Done()

		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 {
				mu.Lock()
				io.WriteString(out, line)
				mu.Unlock()
			}

			if err != nil {
				return
			}
		}
	}

	err = cmd.Start()
	if err != nil {
		return err
	}

	wg.Add(2)
	go copyLines(or)
	go copyLines(er)

	wg.Wait()

	if c, ok := out.(io.Closer); ok {
		c.Close()
	}

	return cmd.Wait()
}
