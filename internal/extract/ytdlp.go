// Package extract talks to yt-dlp and caches what it learns.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const (
	defaultYtdlpPath = "yt-dlp"
	defaultTimeout   = 30 * time.Second
	defaultAttempts  = 2
)

var (
	ErrYtdlpNotInstalled = errors.New("yt-dlp not installed")
	ErrRateLimited       = errors.New("rate limited by upstream")
	ErrVideoUnavailable  = errors.New("video unavailable")
)

// YtdlpExtractor implements catalog.Extractor by running yt-dlp as a
// subprocess.
type YtdlpExtractor struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout bounds a single invocation when the caller's context has no
	// earlier deadline.
	Timeout time.Duration

	// Attempts is how often a rate limited call is tried.
	Attempts uint

	RetryDelay time.Duration

	ExtraArgs []string

	Log logrus.FieldLogger
}

var _ catalog.Extractor = (*YtdlpExtractor)(nil)

func NewYtdlpExtractor(path string, timeout time.Duration, log logrus.FieldLogger) *YtdlpExtractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &YtdlpExtractor{
		Path:       path,
		Timeout:    timeout,
		Attempts:   defaultAttempts,
		RetryDelay: time.Second,
		Log:        log,
	}
}

func (y *YtdlpExtractor) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultYtdlpPath
}

// Available reports whether the yt-dlp binary can be executed.
func (y *YtdlpExtractor) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, y.path(), "--version").Run() == nil
}

func (y *YtdlpExtractor) FetchMetadata(ctx context.Context, url string) (*catalog.Metadata, error) {
	out, err := y.run(ctx, "--no-warnings", "--no-playlist", "--skip-download", "-J", url)
	if errors.Is(err, ErrYtdlpNotInstalled) {
		if meta := fallbackMetadata(url); meta != nil {
			return meta, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return parseInfo(out, url)
}

// ResolvePlayableURL asks yt-dlp for a direct stream no taller than quality.
// Any failure yields url unchanged.
func (y *YtdlpExtractor) ResolvePlayableURL(ctx context.Context, url, quality string) string {
	out, err := y.run(ctx, "--no-warnings", "--no-playlist", "--format", formatSelector(quality), "--get-url", url)
	if err != nil {
		y.logger().WithFields(logrus.Fields{"url": url, "error": err}).Warn("stream resolution failed")
		return url
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return url
}

func (y *YtdlpExtractor) Search(ctx context.Context, query string, maxResults int) ([]catalog.Metadata, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.Metadata{}, nil
	}
	if maxResults <= 0 {
		maxResults = 20
	}
	target := "ytsearch" + strconv.Itoa(maxResults) + ":" + query
	out, err := y.run(ctx, "--no-warnings", "--flat-playlist", "--dump-json", "--skip-download", target)
	if err != nil {
		return nil, err
	}
	_, entries := parseEntries(out, maxResults)
	return entries, nil
}

// ListFlat runs a flat listing of a playlist or channel URL.
func (y *YtdlpExtractor) ListFlat(ctx context.Context, url string, limit int) (string, []catalog.Metadata, error) {
	args := []string{"--no-warnings", "--flat-playlist", "--dump-json"}
	if limit > 0 {
		args = append(args, "--playlist-end", strconv.Itoa(limit))
	}
	out, err := y.run(ctx, append(args, url)...)
	if err != nil {
		return "", nil, err
	}
	title, entries := parseEntries(out, limit)
	return title, entries, nil
}

// run executes yt-dlp, retrying when upstream rate limits us.
func (y *YtdlpExtractor) run(ctx context.Context, args ...string) ([]byte, error) {
	var out []byte
	attempts := y.Attempts
	if attempts == 0 {
		attempts = 1
	}
	err := retry.Do(
		func() error {
			b, err := y.runOnce(ctx, args)
			if err != nil {
				return err
			}
			out = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(y.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrRateLimited) }),
		retry.OnRetry(func(n uint, err error) {
			y.logger().WithFields(logrus.Fields{"attempt": n + 1, "error": err}).Debug("retrying yt-dlp")
		}),
	)
	return out, err
}

func (y *YtdlpExtractor) runOnce(ctx context.Context, args []string) ([]byte, error) {
	timeout := y.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, y.path(), append(append([]string{}, y.ExtraArgs...), args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, ErrYtdlpNotInstalled
		}
		if cmdCtx.Err() != nil {
			return nil, cmdCtx.Err()
		}
		return nil, classify(err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func classify(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests"):
		return fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(stderr))
	case strings.Contains(msg, "video unavailable") || strings.Contains(msg, "private video"):
		return fmt.Errorf("%w: %s", ErrVideoUnavailable, strings.TrimSpace(stderr))
	}
	return fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr))
}

func (y *YtdlpExtractor) logger() logrus.FieldLogger {
	if y.Log != nil {
		return y.Log
	}
	return logrus.StandardLogger()
}
