package s3uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/openvehicle/canagent/internal/config"
	"github.com/openvehicle/canagent/internal/ports"
)

const (
	multipartThreshold = 100 * 1024 * 1024 // 100 MiB
	partSize           = 5 * 1024 * 1024   // 5 MiB
)

// api is the subset of *s3.Client the uploader calls, so tests can
// substitute a fake without standing up a real bucket.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, in *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Uploader implements ports.Uploader against S3 or an S3-compatible
// store.
type Uploader struct {
	client api
	cfg    config.S3Config
	upload config.UploadConfig
	log    ports.Logger

	dataDir    string
	archiveDir string
	pendingDir string

	sleep func(time.Duration)
}

var _ ports.Uploader = (*Uploader)(nil)

// New constructs an Uploader. dataDir is the batcher's staging root (used
// to compute each file's relative Hive path before it is moved away).
func New(client *s3.Client, s3cfg config.S3Config, uploadCfg config.UploadConfig, dataDir, archiveDir, pendingDir string, log ports.Logger) *Uploader {
	return &Uploader{
		client:     client,
		cfg:        s3cfg,
		upload:     uploadCfg,
		log:        log,
		dataDir:    dataDir,
		archiveDir: archiveDir,
		pendingDir: pendingDir,
		sleep:      time.Sleep,
	}
}

// Upload sends localPath to S3, retrying with backoff, then moves it to
// the archive directory on success or the pending directory (with a
// partition sidecar) on failure.
func (u *Uploader) Upload(ctx context.Context, localPath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("s3uploader: stat %s: %w", localPath, err)
	}

	relPath, err := filepath.Rel(u.dataDir, localPath)
	if err != nil {
		relPath = filepath.Base(localPath)
	}
	key := remoteKey(u.cfg.Prefix, localPath)

	err = u.uploadWithRetry(ctx, localPath, key)
	if err == nil {
		return u.moveToArchive(localPath)
	}

	u.log.Error("upload failed, moving to pending", ports.String("path", localPath), ports.Err(err))
	return u.moveToPending(localPath, relPath)
}

func (u *Uploader) uploadWithRetry(ctx context.Context, localPath, key string) error {
	bo := newBackoff(u.upload.InitialBackoff(), u.upload.MaxBackoff())
	maxRetries := u.upload.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error
		size, statErr := fileSize(localPath)
		if statErr != nil {
			return statErr
		}
		if size > multipartThreshold {
			err = u.multipartUpload(ctx, localPath, key)
		} else {
			err = u.putObject(ctx, localPath, key)
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt == maxRetries-1 {
			break
		}
		u.log.Warn("upload attempt failed, retrying",
			ports.Int("attempt", attempt+1),
			ports.Int("max_retries", maxRetries),
			ports.Duration("backoff", bo.Current()),
			ports.Err(err),
		)
		u.sleep(bo.Current())
		bo.Advance()
	}
	return lastErr
}

func (u *Uploader) putObject(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(u.cfg.Bucket),
		Key:                  aws.String(key),
		Body:                 f,
		StorageClass:         types.StorageClassStandard,
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	return err
}

func (u *Uploader) multipartUpload(ctx context.Context, localPath, key string) error {
	created, err := u.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:               aws.String(u.cfg.Bucket),
		Key:                  aws.String(key),
		StorageClass:         types.StorageClassStandard,
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("create multipart upload: %w", err)
	}
	uploadID := created.UploadId

	parts, err := u.uploadParts(ctx, localPath, key, *uploadID)
	if err != nil {
		_, abortErr := u.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(u.cfg.Bucket),
			Key:      aws.String(key),
			UploadId: uploadID,
		})
		if abortErr != nil {
			u.log.Error("abort multipart upload failed", ports.Err(abortErr))
		}
		return fmt.Errorf("multipart upload failed, aborted: %w", err)
	}

	_, err = u.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(u.cfg.Bucket),
		Key:             aws.String(key),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return fmt.Errorf("complete multipart upload: %w", err)
	}
	return nil
}

func (u *Uploader) uploadParts(ctx context.Context, localPath, key, uploadID string) ([]types.CompletedPart, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var parts []types.CompletedPart
	buf := make([]byte, partSize)
	partNumber := int32(1)

	for {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			out, err := u.client.UploadPart(ctx, &s3.UploadPartInput{
				Bucket:     aws.String(u.cfg.Bucket),
				Key:        aws.String(key),
				PartNumber: aws.Int32(partNumber),
				UploadId:   aws.String(uploadID),
				Body:       bytes.NewReader(buf[:n]),
			})
			if err != nil {
				return nil, fmt.Errorf("upload part %d: %w", partNumber, err)
			}
			parts = append(parts, types.CompletedPart{PartNumber: aws.Int32(partNumber), ETag: out.ETag})
			partNumber++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	return parts, nil
}

func (u *Uploader) moveToArchive(localPath string) error {
	dest := filepath.Join(u.archiveDir, filepath.Base(localPath))
	if err := os.Rename(localPath, dest); err != nil {
		return fmt.Errorf("s3uploader: move to archive: %w", err)
	}
	u.log.Info("uploaded", ports.String("path", dest))
	return nil
}

func (u *Uploader) moveToPending(localPath, relPath string) error {
	dest := filepath.Join(u.pendingDir, filepath.Base(localPath))
	if _, err := os.Stat(dest); err == nil {
		return nil // already pending; nothing to move
	}
	if err := os.Rename(localPath, dest); err != nil {
		return fmt.Errorf("s3uploader: move to pending: %w", err)
	}
	if err := writeSidecar(dest, relPath); err != nil {
		u.log.Warn("failed to write partition sidecar", ports.String("path", dest), ports.Err(err))
	}
	return nil
}

// RetryPending scans the pending directory oldest-first and retries each
// file. Files that succeed leave the pending directory, so after a pass in
// which every file succeeded a second call returns (0, 0); files that
// failed stay pending and are retried again on the next call.
func (u *Uploader) RetryPending(ctx context.Context) (int, int, error) {
	entries, err := pendingFilesOldestFirst(u.pendingDir)
	if err != nil {
		return 0, 0, fmt.Errorf("s3uploader: list pending: %w", err)
	}
	if len(entries) == 0 {
		return 0, 0, nil
	}

	u.log.Info("retrying pending uploads", ports.Int("count", len(entries)))

	ok, failed := 0, 0
	var firstErr error
	for _, path := range entries {
		key := u.keyForPending(path)
		err := u.uploadWithRetry(ctx, path, key)
		if err == nil {
			if renameErr := os.Rename(path, filepath.Join(u.archiveDir, filepath.Base(path))); renameErr != nil {
				failed++
				if firstErr == nil {
					firstErr = renameErr
				}
				continue
			}
			removeSidecar(path)
			ok++
			continue
		}
		failed++
		if firstErr == nil {
			firstErr = err
		}
		u.log.Error("pending retry failed", ports.String("path", path), ports.Err(err))
	}

	u.log.Info("pending retry complete", ports.Int("ok", ok), ports.Int("failed", failed))
	return ok, failed, firstErr
}

// keyForPending reconstructs the remote key for a file sitting in the
// pending directory: the sidecar's recorded relative path if present,
// else prefix/filename (partition segments lost).
func (u *Uploader) keyForPending(pendingPath string) string {
	if rel := readSidecar(pendingPath); rel != "" {
		return remoteKey(u.cfg.Prefix, rel)
	}
	return u.cfg.Prefix + "/" + filepath.Base(pendingPath)
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// pendingFilesOldestFirst lists *.parquet files in dir sorted by mtime
// ascending, matching the offline buffer's own eviction order so both
// components agree on "oldest".
func pendingFilesOldestFirst(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type entry struct {
		path    string
		modTime time.Time
	}
	var files []entry
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".parquet" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, entry{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
