package download

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/mrf-harvester/internal/fetch"
	"github.com/jonathan/mrf-harvester/internal/types"
)

// DefaultChunkSize is the streaming copy block size. Downloads are
// written chunk by chunk so peak memory stays bounded regardless of
// remote file size.
const DefaultChunkSize = 8 * 1024

// Progress reports bytes written so far for one target. Total is -1
// when the server sent no Content-Length; that is not an error, the
// total is simply unknown.
type Progress struct {
	URL   string
	Bytes int64
	Total int64
}

// ProgressFunc receives per-chunk progress updates.
type ProgressFunc func(Progress)

// Pipeline downloads targets one at a time. Fetch never returns an
// error: every failure is folded into the report's outcome so a bad
// target cannot abort its siblings.
type Pipeline struct {
	// FetchOpts configures the HTTP client; nil means fetch defaults
	// with the download timeout.
	FetchOpts *fetch.Options
	// ChunkSize is the copy block size; zero means DefaultChunkSize.
	ChunkSize int
	// Force skips the existence check and re-downloads unconditionally.
	Force bool
	// OnProgress, when set, is called after each written chunk.
	OnProgress ProgressFunc
}

// Fetch runs one target through the pipeline: existence gate, streaming
// download, gzip expansion.
//
// The existence gate treats a target as already satisfied when either
// the final (decompressed) path or the still-compressed original is on
// disk. It does not verify completeness of the existing file; a
// partially written file from an interrupted prior run counts as done.
// Use Force to re-pull such a file.
func (p *Pipeline) Fetch(ctx context.Context, target Target) types.DownloadReport {
	report := types.DownloadReport{
		URL:    target.URL,
		Format: target.Format,
		Path:   target.FinalPath(),
	}

	if !p.Force && target.Satisfied() {
		report.Outcome = types.OutcomeSkippedExists
		return report
	}

	written, err := p.download(ctx, target)
	report.Bytes = written
	if err != nil {
		// Remove the partial file so the next run retries this target.
		_ = os.Remove(target.Path)
		report.Outcome = classifyDownloadError(err)
		report.Err = err.Error()
		return report
	}

	if target.Compressed() {
		if err := expandGzip(target.Path, target.FinalPath()); err != nil {
			// The archive stays on disk; never delete data on a failed
			// decompression.
			report.Path = target.Path
			report.Outcome = types.OutcomeFailedDecompress
			report.Err = err.Error()
			return report
		}
		if err := os.Remove(target.Path); err != nil {
			// The final file is complete, so this is a downloaded
			// outcome; the leftover archive only costs disk space and
			// the next run still skips on the final path.
			report.Err = fmt.Sprintf("failed to remove archive %s: %v", target.Path, err)
		}
	}

	report.Outcome = types.OutcomeDownloaded
	return report
}

func (p *Pipeline) download(ctx context.Context, target Target) (int64, error) {
	opts := p.FetchOpts
	if opts == nil {
		opts = fetch.DefaultOptions()
		opts.Timeout = fetch.DefaultDownloadTimeout
	}

	body, total, err := fetch.Stream(ctx, target.URL, opts)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	out, err := os.Create(target.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", target.Path, err)
	}
	defer func() { _ = out.Close() }()

	chunkSize := p.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var written int64
	buf := make([]byte, chunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return written, fmt.Errorf("failed to write %s: %w", target.Path, writeErr)
			}
			written += int64(n)
			if p.OnProgress != nil {
				p.OnProgress(Progress{URL: target.URL, Bytes: written, Total: total})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, fmt.Errorf("failed to read body of %s: %w", target.URL, readErr)
		}
	}

	if err := out.Close(); err != nil {
		return written, fmt.Errorf("failed to close %s: %w", target.Path, err)
	}
	return written, nil
}

// expandGzip decompresses src into dst. Removing the archive afterwards
// is the caller's job, so a failed remove cannot be mistaken for a
// failed decompression. On failure the partially written dst is removed
// and src left in place.
func expandGzip(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	reader, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("not a valid gzip archive %s: %w", src, err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to decompress %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

func classifyDownloadError(err error) types.Outcome {
	if fetch.IsTimeout(err) {
		return types.OutcomeFailedTimeout
	}
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		if fetchErr.Timeout() {
			return types.OutcomeFailedTimeout
		}
		if fetchErr.StatusCode != 0 {
			return types.OutcomeFailedHTTP
		}
	}
	return types.OutcomeFailedUnexpected
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
