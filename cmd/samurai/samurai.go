package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/anass-b/samurai/pkg/cmd"
	"github.com/anass-b/samurai/pkg/config"
	"github.com/anass-b/samurai/pkg/lockfile"
	"github.com/anass-b/samurai/pkg/ops"
	"github.com/anass-b/samurai/pkg/platform"
	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
)

type commonOpts struct {
	Config  string `short:"c" long:"config" description:"path to the manifest (default samurai.json)"`
	Vars    string `short:"v" long:"vars" description:"variables to substitute, as NAME=VALUE;NAME2=VALUE2"`
	RawVars bool   `long:"raw-vars" description:"substitute variables on the raw manifest text"`
	Verbose bool   `short:"V" long:"verbose" description:"output debug logs"`
	Trace   bool   `long:"trace" description:"output trace logs"`
}

func (c commonOpts) LogLevel() hclog.Level {
	switch {
	case c.Trace:
		return hclog.Trace
	case c.Verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

func main() {
	c := cli.NewCLI("samurai", "0.1.0")
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"fetch": func() (cli.Command, error) {
			return cmd.New(
				"fetch",
				"Fetch every dependency that is not present yet",
				fetchF,
			), nil
		},
		"patch": func() (cli.Command, error) {
			return cmd.New(
				"patch",
				"Apply the patch of every dependency",
				patchF,
			), nil
		},
		"cmake": func() (cli.Command, error) {
			return cmd.New(
				"cmake",
				"Run the configure step of the dependencies or the project",
				configureF,
			), nil
		},
		"configure": func() (cli.Command, error) {
			return cmd.New(
				"configure",
				"Run the configure step of the dependencies or the project",
				configureF,
			), nil
		},
		"build": func() (cli.Command, error) {
			return cmd.New(
				"build",
				"Run the build step of the dependencies or the project",
				buildF,
			), nil
		},
		"all": func() (cli.Command, error) {
			return cmd.New(
				"all",
				"Fetch, patch, configure and build the dependencies, then the project",
				allF,
			), nil
		},
		"zombies": func() (cli.Command, error) {
			return cmd.New(
				"zombies",
				"List or delete directories of undeclared dependencies",
				zombiesF,
			), nil
		},
		"env": func() (cli.Command, error) {
			return cmd.New(
				"env",
				"Output various environment information",
				envF,
			), nil
		},
		"debug": func() (cli.Command, error) {
			return cmd.New(
				"debug",
				"Debug various things",
				debugF,
			), nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}

func load(ctx context.Context, opts commonOpts) (context.Context, *ops.Project, error) {
	ctx = ops.WithUI(ctx, ops.NewUI(os.Stdout))

	var pl ops.ProjectLoad
	pl.SetLogger(hclog.L())

	proj, err := pl.Load(ctx, ops.ProjectOptions{
		Config:  opts.Config,
		Vars:    opts.Vars,
		RawVars: opts.RawVars,
	})
	if err != nil {
		return nil, nil, err
	}

	return ctx, proj, nil
}

// locked runs f on the project of opts while holding the run lock.
func locked(ctx context.Context, opts commonOpts, f func(ctx context.Context, proj *ops.Project) error) error {
	ctx, proj, err := load(ctx, opts)
	if err != nil {
		return err
	}

	var showLock bool

	cleanup, err := lockfile.Take(ctx, proj.Locations.Lock, func() {
		if !showLock {
			fmt.Printf("Lock detected, waiting...\n")
			showLock = true
		}
	})
	if err != nil {
		return errors.Wrapf(err, "unable to take lock %s", proj.Locations.Lock)
	}

	defer cleanup()

	return f(ctx, proj)
}

func fetchF(ctx context.Context, opts struct {
	commonOpts
}) error {
	return locked(ctx, opts.commonOpts, func(ctx context.Context, proj *ops.Project) error {
		return proj.Controller.Fetch(ctx)
	})
}

func patchF(ctx context.Context, opts struct {
	commonOpts
}) error {
	return locked(ctx, opts.commonOpts, func(ctx context.Context, proj *ops.Project) error {
		return proj.Controller.Patch(ctx)
	})
}

func configureF(ctx context.Context, opts struct {
	commonOpts
	Self bool `short:"s" long:"self" description:"only configure the project itself"`
}) error {
	return locked(ctx, opts.commonOpts, func(ctx context.Context, proj *ops.Project) error {
		return proj.Controller.Configure(ctx, opts.Self)
	})
}

func buildF(ctx context.Context, opts struct {
	commonOpts
	Self bool `short:"s" long:"self" description:"only build the project itself"`
}) error {
	return locked(ctx, opts.commonOpts, func(ctx context.Context, proj *ops.Project) error {
		return proj.Controller.Build(ctx, opts.Self)
	})
}

func allF(ctx context.Context, opts struct {
	commonOpts
}) error {
	return locked(ctx, opts.commonOpts, func(ctx context.Context, proj *ops.Project) error {
		return proj.Controller.All(ctx)
	})
}

func zombiesF(ctx context.Context, opts struct {
	commonOpts
	Delete bool `short:"d" long:"delete" description:"delete the zombie directories"`
}) error {
	if !opts.Delete {
		ctx, proj, err := load(ctx, opts.commonOpts)
		if err != nil {
			return err
		}

		_, err = proj.Controller.ReportZombies(ctx, false)
		return err
	}

	return locked(ctx, opts.commonOpts, func(ctx context.Context, proj *ops.Project) error {
		_, err := proj.Controller.ReportZombies(ctx, true)
		return err
	})
}

func envF(ctx context.Context, opts struct {
	Config string `short:"c" long:"config" description:"path to the manifest (default samurai.json)"`
}) error {
	pl, err := platform.Current(ctx)
	if err != nil {
		return err
	}

	loc, err := config.Locate("", opts.Config)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 4, 2, 1, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Platform:\t%s\n", pl)

	host, err := platform.Host()
	if err != nil {
		hclog.L().Debug("unable to read host information", "error", err)
	} else {
		fmt.Fprintf(tw, "Host:\t%s %s (%s)\n", host.Name, host.Version, host.Arch)
	}

	fmt.Fprintf(tw, "Directory:\t%s\n", loc.Dir)
	fmt.Fprintf(tw, "Manifest:\t%s\n", loc.Manifest)

	if _, err := os.Stat(loc.Manifest); err != nil {
		fmt.Fprintf(tw, "Install Root:\t(no manifest)\n")
		return nil
	}

	_, proj, err := load(ctx, commonOpts{Config: opts.Config})
	if err != nil {
		return err
	}

	fmt.Fprintf(tw, "Install Root:\t%s\n", proj.Manifest.Root())

	return nil
}

func debugF(ctx context.Context, opts struct {
	commonOpts
	Dump bool   `long:"dump" description:"dump the loaded manifest"`
	Args string `long:"args" description:"output the cmake command line of a package"`
}) error {
	ctx, proj, err := load(ctx, opts.commonOpts)
	if err != nil {
		return err
	}

	if opts.Dump {
		spew.Dump(proj.Manifest)
	}

	if opts.Args != "" {
		pkg, ok := proj.Manifest.Lookup(opts.Args)
		if !ok {
			return errors.Errorf("unknown package: %s", opts.Args)
		}

		if pkg.CMake == nil {
			fmt.Printf("%s has no cmake step\n", pkg.Label())
			return nil
		}

		args, err := pkg.CMake.Arguments(proj.Platform)
		if err != nil {
			return err
		}

		fmt.Printf("cd %s && cmake %s\n", pkg.CMake.WorkingPath(pkg.Path()), args)
	}

	return nil
}
