package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"scribe/internal/services"
)

// CommandRunner executes a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Entry is one playlist entry from a flat channel listing. Entries are raw:
// channel uploads can include shelves and playlists alongside videos, and the
// caller decides what counts as a video.
type Entry struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	DurationSec float64 `json:"duration"`
}

// Listing is the parsed result of a flat channel enumeration.
type Listing struct {
	Channel string
	Entries []Entry
}

type flatPlaylistPayload struct {
	Channel  string  `json:"channel"`
	Uploader string  `json:"uploader"`
	Entries  []Entry `json:"entries"`
}

// Client invokes yt-dlp.
type Client struct {
	binary string
	runner CommandRunner
}

// New creates a yt-dlp client for the given binary name.
func New(binary string) *Client {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Client{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Client) WithCommandRunner(runner CommandRunner) {
	c.runner = runner
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.runner != nil {
		return c.runner(ctx, c.binary, args...)
	}
	cmd := exec.CommandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.binary, err, detail)
		}
		return nil, fmt.Errorf("%s: %w", c.binary, err)
	}
	return output, nil
}

// EnumerateChannel lists a channel's uploads without downloading anything.
func (c *Client) EnumerateChannel(ctx context.Context, channelURL string) (Listing, error) {
	if strings.TrimSpace(channelURL) == "" {
		return Listing{}, services.Wrap(services.ErrValidation, "ytdlp", "enumerate", "channel url required", nil)
	}

	output, err := c.run(ctx,
		"--flat-playlist",
		"--dump-single-json",
		"--no-warnings",
		"--ignore-errors",
		channelURL,
	)
	if err != nil {
		return Listing{}, services.Wrap(services.ErrExternalTool, "ytdlp", "enumerate", "channel listing failed", err)
	}

	var payload flatPlaylistPayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return Listing{}, services.Wrap(services.ErrExternalTool, "ytdlp", "enumerate", "unexpected listing payload", err)
	}

	channel := payload.Channel
	if channel == "" {
		channel = payload.Uploader
	}
	if channel == "" {
		channel = "Unknown"
	}

	return Listing{Channel: channel, Entries: payload.Entries}, nil
}

// DownloadAudio fetches the best audio stream for a video into destDir. The
// produced extension depends on what the source offers, so the file is
// located by globbing for the video id afterwards.
func (c *Client) DownloadAudio(ctx context.Context, videoURL, videoID, destDir string) (string, error) {
	if videoID == "" {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "download", "video id required", nil)
	}

	outputTemplate := filepath.Join(destDir, videoID+".%(ext)s")
	if _, err := c.run(ctx,
		"--format", "bestaudio/best",
		"--output", outputTemplate,
		"--no-warnings",
		"--quiet",
		videoURL,
	); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "audio download failed", err)
	}

	path, err := locateAudioFile(destDir, videoID)
	if err != nil {
		return "", err
	}
	return path, nil
}

func locateAudioFile(destDir, videoID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(destDir, videoID+".*"))
	if err != nil {
		return "", fmt.Errorf("locate audio: %w", err)
	}
	for _, match := range matches {
		// yt-dlp leaves .part files behind on interrupted downloads.
		if filepath.Ext(match) == ".part" {
			continue
		}
		return match, nil
	}
	return "", services.Wrap(services.ErrExternalTool, "ytdlp", "locate audio",
		fmt.Sprintf("audio file not found after download: %s", videoID), nil)
}
