package fetch

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/anass-b/samurai/pkg/cleanhttp"
	"github.com/anass-b/samurai/pkg/progress"
	"github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
)

// Downloader fetches a single URL to a file. http, https and file URLs are
// supported. Archives are never unpacked here.
type Downloader struct {
	common

	// Client is used for http and https. Defaults to cleanhttp.DefaultClient.
	Client *http.Client
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}

	return cleanhttp.DefaultClient
}

// Download writes the content at url to the file dst, creating its parent
// directory.
func (d *Downloader) Download(ctx context.Context, url, dst string) error {
	err := os.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return err
	}

	httpGetter := &getter.HttpGetter{
		Client: d.client(),
	}

	c := &getter.Client{
		Ctx:  ctx,
		Src:  url,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"http":  httpGetter,
			"https": httpGetter,
			"file":  &getter.FileGetter{Copy: true},
		},
		Decompressors:    map[string]getter.Decompressor{},
		ProgressListener: progress.NewTracker(ctx),
	}

	d.L().Debug("downloading", "url", url, "dst", dst)

	err = c.Get()
	if err != nil {
		return errors.Wrapf(err, "unable to download %s", url)
	}

	return nil
}
