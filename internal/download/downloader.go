// Package download streams a resolved direct link to local storage.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"teragrab/internal/client"
	"teragrab/internal/core"
	"teragrab/internal/ui"
	"teragrab/internal/utils"
)

// chunkSize is the read granularity; each chunk hits the file before the
// next read so no full-body buffering ever happens.
const chunkSize = 8 * 1024

type Downloader struct {
	client *client.Client
}

func New(cl *client.Client) *Downloader {
	return &Downloader{client: cl}
}

// Download streams link into outDir under a sanitized name derived from the
// metadata and reports progress per chunk. A failed transfer removes the
// partial file. All failures come back inside the result, never as a panic.
func (d *Downloader) Download(ctx context.Context, link string, meta *core.VideoMetadata, outDir string) core.DownloadResult {
	if err := utils.EnsureDir(outDir); err != nil {
		return failure("creating output directory: %v", err)
	}

	filename := SanitizeFilename(meta.Name)
	outputPath := filepath.Join(outDir, filename)

	resp, err := d.client.Get(ctx, link)
	if err != nil {
		return failure("download error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure("download error: HTTP %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return failure("failed to create file: %v", err)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0 // unknown, the bar degrades to a byte counter
	}
	bar := ui.NewProgressBar(total, "Downloading")

	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := outFile.Write(buf[:n]); writeErr != nil {
				bar.Finish()
				outFile.Close()
				os.Remove(outputPath)
				return failure("failed to write file: %v", writeErr)
			}
			written += int64(n)
			bar.Add(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			bar.Finish()
			outFile.Close()
			os.Remove(outputPath)
			return failure("download error: %v", readErr)
		}
	}
	bar.Finish()

	if err := outFile.Close(); err != nil {
		os.Remove(outputPath)
		return failure("failed to write file: %v", err)
	}
	if written == 0 {
		os.Remove(outputPath)
		return failure("empty file downloaded")
	}

	return core.DownloadResult{Success: true, Message: outputPath}
}

func failure(format string, a ...interface{}) core.DownloadResult {
	return core.DownloadResult{Success: false, Message: fmt.Sprintf(format, a...)}
}
