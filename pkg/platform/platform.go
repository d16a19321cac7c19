// Package platform resolves the closed set of operating system identifiers
// used by manifests to select generators, build entries and excluded
// platforms.
package platform

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/host"
)

// Platform is one of the identifiers a manifest may name in an "os" field.
type Platform string

const (
	Windows Platform = "win"
	Linux   Platform = "linux"
	MacOS   Platform = "macos"
	FreeBSD Platform = "freebsd"
	Unix    Platform = "unix"
)

// All lists every known platform.
var All = []Platform{Windows, Linux, MacOS, FreeBSD, Unix}

var ErrUnsupportedPlatform = errors.New("unsupported platform")

func (p Platform) String() string {
	return string(p)
}

// Known reports whether p is one of the identifiers in All.
func (p Platform) Known() bool {
	for _, k := range All {
		if p == k {
			return true
		}
	}

	return false
}

// In reports whether p appears in set.
func (p Platform) In(set []Platform) bool {
	for _, s := range set {
		if s == p {
			return true
		}
	}

	return false
}

// Separator is the directory separator used on p.
func (p Platform) Separator() byte {
	if p == Windows {
		return '\\'
	}

	return '/'
}

// WrongSeparator is the separator that must not appear in paths on p.
func (p Platform) WrongSeparator() byte {
	if p == Windows {
		return '/'
	}

	return '\\'
}

// Normalize replaces every occurrence of the separator that is wrong for p
// with the one that is right. Normalize is idempotent.
func Normalize(path string, p Platform) string {
	if path == "" {
		return path
	}

	return strings.ReplaceAll(path, string(p.WrongSeparator()), string(p.Separator()))
}

// A Prober returns the kernel name reported by the system, as `uname` does.
type Prober func(ctx context.Context) (string, error)

// Uname runs the uname program and returns its output.
func Uname(ctx context.Context) (string, error) {
	var buf bytes.Buffer

	cmd := exec.CommandContext(ctx, "uname")
	cmd.Stdout = &buf

	err := cmd.Run()
	if err != nil {
		return "", errors.Wrapf(err, "running uname")
	}

	return buf.String(), nil
}

// posix are the GOOS values that get disambiguated with a kernel probe.
var posix = map[string]bool{
	"linux":     true,
	"darwin":    true,
	"freebsd":   true,
	"netbsd":    true,
	"openbsd":   true,
	"dragonfly": true,
	"solaris":   true,
	"illumos":   true,
	"aix":       true,
}

type Resolver struct {
	L hclog.Logger

	// GOOS defaults to runtime.GOOS.
	GOOS string

	// Probe defaults to Uname.
	Probe Prober
}

// Resolve identifies the platform the process runs on.
func (r *Resolver) Resolve(ctx context.Context) (Platform, error) {
	goos := r.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if goos == "windows" {
		return Windows, nil
	}

	if !posix[goos] {
		return "", errors.Wrapf(ErrUnsupportedPlatform, "os: %s", goos)
	}

	probe := r.Probe
	if probe == nil {
		probe = Uname
	}

	kernel, err := probe(ctx)
	if err != nil {
		// Fall back to the runtime os.
		if r.L != nil {
			r.L.Debug("kernel probe failed, using runtime os", "error", err, "os", goos)
		}

		kernel = goos
	}

	return fromKernel(kernel), nil
}

func fromKernel(name string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "freebsd":
		return FreeBSD
	default:
		return Unix
	}
}

var current struct {
	once sync.Once
	p    Platform
	err  error
}

// Current resolves the platform once per process with the default Resolver.
func Current(ctx context.Context) (Platform, error) {
	current.once.Do(func() {
		var r Resolver
		current.p, current.err = r.Resolve(ctx)
	})

	return current.p, current.err
}

type HostInfo struct {
	Name    string
	Family  string
	Version string
	Arch    string
}

// Host returns descriptive information about the host operating system.
func Host() (*HostInfo, error) {
	name, family, version, err := host.PlatformInformation()
	if err != nil {
		return nil, errors.Wrapf(err, "reading platform information")
	}

	arch, err := host.KernelArch()
	if err != nil {
		return nil, errors.Wrapf(err, "reading kernel arch")
	}

	return &HostInfo{
		Name:    name,
		Family:  family,
		Version: version,
		Arch:    arch,
	}, nil
}
