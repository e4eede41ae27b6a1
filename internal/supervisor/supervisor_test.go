package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/domain"
)

type fakeReader struct {
	frames  []domain.Frame
	i       int
	openErr error
	closed  bool
}

func (r *fakeReader) Open(ctx context.Context) error { return r.openErr }

func (r *fakeReader) Next(ctx context.Context) (domain.Frame, error) {
	if r.i >= len(r.frames) {
		<-ctx.Done()
		return domain.Frame{}, ctx.Err()
	}
	f := r.frames[r.i]
	r.i++
	return f, nil
}

func (r *fakeReader) Stats() domain.ReaderStats {
	return domain.ReaderStats{Frames: uint64(r.i)}
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeBatcher struct {
	adds      int32
	flushPath string
}

func (b *fakeBatcher) AddFrame(frame domain.Frame) (string, error) {
	atomic.AddInt32(&b.adds, 1)
	if atomic.LoadInt32(&b.adds)%2 == 0 {
		return b.flushPath, nil
	}
	return "", nil
}

func (b *fakeBatcher) Flush() (string, error) {
	return "", nil
}

type fakeUploader struct {
	uploadErr error
	calls     int32
}

func (u *fakeUploader) Upload(ctx context.Context, localPath string) error {
	atomic.AddInt32(&u.calls, 1)
	return u.uploadErr
}

func (u *fakeUploader) RetryPending(ctx context.Context) (int, int, error) { return 0, 0, nil }

func TestRunDryRunExitsCleanlyOnCancel(t *testing.T) {
	reader := &fakeReader{frames: []domain.Frame{{ArbID: 1, DLC: 1}}}
	sup := New(Deps{
		Mode:   ModeDryRun,
		Reader: reader,
		Log:    log.NewNoopLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sup.Run(ctx)
	require.NoError(t, err)
	require.True(t, reader.closed)
}

func TestRunPipelineDispatchesClosedBatches(t *testing.T) {
	frames := make([]domain.Frame, 4)
	reader := &fakeReader{frames: frames}
	batcher := &fakeBatcher{flushPath: "/tmp/doesnotexist.parquet"}
	uploader := &fakeUploader{}

	sup := New(Deps{
		Mode:          ModeNormal,
		Reader:        reader,
		Batcher:       batcher,
		Uploader:      uploader,
		UploadEnabled: true,
		ArchiveDir:    t.TempDir(),
		Log:           log.NewNoopLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := sup.Run(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, atomic.LoadInt32(&uploader.calls), int32(2))
}

func TestRunReturnsErrorOnReaderOpenFailure(t *testing.T) {
	reader := &fakeReader{openErr: errors.New("bind failed")}
	sup := New(Deps{
		Mode:   ModeDryRun,
		Reader: reader,
		Log:    log.NewNoopLogger(),
	})

	err := sup.Run(context.Background())
	require.Error(t, err)
}
