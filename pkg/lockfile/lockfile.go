// Package lockfile guards a directory against concurrent runs with an
// exclusively created file.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Take creates path exclusively, polling once a second while another
// process holds it. waiting is called on every failed attempt. The returned
// func removes the lock.
func Take(ctx context.Context, path string, waiting func()) (func(), error) {
	tk := time.NewTicker(time.Second)
	defer tk.Stop()

	var (
		f   *os.File
		err error
	)

	for {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			break
		}

		if !os.IsExist(err) {
			return nil, err
		}

		if waiting != nil {
			waiting()
		}

		select {
		case <-tk.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	closer := func() {
		os.Remove(path)
	}

	return closer, nil
}
