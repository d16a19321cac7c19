package ops

import "github.com/pkg/errors"

var (
	ErrNotFetched     = errors.New("package has not been fetched")
	ErrPackagesFailed = errors.New("packages failed")
)

func track(err error) error {
	return errors.WithStack(err)
}
