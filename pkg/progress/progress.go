package progress

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	pb "github.com/schollz/progressbar/v3"
)

type pbVal struct {
	w io.Writer
}

type pbKey struct{}

// Open enables progress bars on ctx, drawn to w. Without it every bar is a
// no-op.
func Open(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, pbKey{}, pbVal{w})
}

type Progress struct {
	bar    *pb.ProgressBar
	prefix string
}

func (t *Progress) Add(cnt int64) {
	if t.bar == nil {
		return
	}

	t.bar.Add64(cnt)
}

func (t *Progress) Write(b []byte) (int, error) {
	t.Add(int64(len(b)))
	return len(b), nil
}

func (t *Progress) Close() {
	if t.bar == nil {
		return
	}

	t.bar.Finish()
}

func (t *Progress) On(step string) {
	if t.bar == nil {
		return
	}

	t.bar.Describe(t.prefix + ": " + step)
}

func options(w io.Writer, desc string) []pb.Option {
	return []pb.Option{
		pb.OptionSetDescription(desc),
		pb.OptionSetWriter(w),
		pb.OptionSetWidth(20),
		pb.OptionThrottle(65 * time.Millisecond),
		pb.OptionSetTheme(
			pb.Theme{Saucer: "=", SaucerPadding: " ", BarStart: "[", BarEnd: "]"},
		),
		pb.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		pb.OptionSpinnerType(14),
		pb.OptionFullWidth(),
	}
}

// Bytes starts a bar measuring a transfer of total bytes. A total below zero
// renders a spinner.
func Bytes(ctx context.Context, total int64, desc string) *Progress {
	h := ctx.Value(pbKey{})
	if h == nil {
		return &Progress{}
	}

	val := h.(pbVal)

	opts := append(options(val.w, desc), pb.OptionShowBytes(true))

	bar := pb.NewOptions64(total, opts...)
	bar.RenderBlank()

	return &Progress{prefix: desc, bar: bar}
}

// Tracker reports downloads made through go-getter as byte progress bars.
type Tracker struct {
	ctx context.Context
}

func NewTracker(ctx context.Context) *Tracker {
	return &Tracker{ctx: ctx}
}

type trackedStream struct {
	io.Reader
	stream io.ReadCloser
	bar    *Progress
	once   sync.Once
}

func (t *trackedStream) Close() error {
	t.once.Do(t.bar.Close)
	return t.stream.Close()
}

func (t *Tracker) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	if totalSize <= 0 {
		totalSize = -1
	}

	bar := Bytes(t.ctx, totalSize, path.Base(src))
	bar.Add(currentSize)

	return &trackedStream{
		Reader: io.TeeReader(stream, bar),
		stream: stream,
		bar:    bar,
	}
}
