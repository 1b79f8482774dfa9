package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Downloader fetches videos from social platforms by shelling out to
// yt-dlp, which handles all the supported sites itself.
type Downloader struct {
	dir     string
	binary  string
	timeout time.Duration
}

func NewDownloader(dir string) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	return &Downloader{
		dir:     dir,
		binary:  "yt-dlp",
		timeout: 5 * time.Minute,
	}, nil
}

// DetectPlatform names the platform a video URL belongs to, "unknown" when
// none matches.
func DetectPlatform(url string) string {
	switch {
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return "youtube"
	case strings.Contains(url, "tiktok.com"):
		return "tiktok"
	case strings.Contains(url, "instagram.com"):
		return "instagram"
	case strings.Contains(url, "facebook.com"), strings.Contains(url, "fb.watch"):
		return "facebook"
	case strings.Contains(url, "twitter.com"), strings.Contains(url, "x.com"):
		return "twitter"
	default:
		return "unknown"
	}
}

// Download result: the stored filename and its size on disk.
type Result struct {
	Filename string
	Platform string
	Size     int64
}

// Download fetches the video at url into the download directory.
func (d *Downloader) Download(ctx context.Context, url string) (*Result, error) {
	platform := DetectPlatform(url)
	if platform == "unknown" {
		return nil, fmt.Errorf("unsupported platform, supported: youtube, tiktok, instagram, facebook, twitter")
	}

	filename := fmt.Sprintf("%s_%d.mp4", platform, time.Now().UnixNano())
	outputPath := filepath.Join(d.dir, filename)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.binary,
		"--format", "best[ext=mp4]/best",
		"--max-filesize", "100m",
		"--no-warnings",
		"--no-playlist",
		"--output", outputPath,
		url,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("download produced no file for %s", url)
	}
	return &Result{Filename: filename, Platform: platform, Size: info.Size()}, nil
}
