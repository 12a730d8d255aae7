package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrTranscode = errors.New("transcode failed")

// DefaultTranscodeTimeout ограничивает время работы ffmpeg.
const DefaultTranscodeTimeout = 2 * time.Minute

// Transcoder приводит вложение к mp3 44.1 kHz stereo 192k.
type Transcoder struct {
	ffmpeg  string
	dir     string
	timeout time.Duration
}

func NewTranscoder(ffmpegPath, workDir string, timeout time.Duration) *Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = DefaultTranscodeTimeout
	}
	return &Transcoder{ffmpeg: ffmpegPath, dir: workDir, timeout: timeout}
}

// Convert пишет данные во временный файл, запускает ffmpeg и возвращает путь к mp3.
// Исходный файл удаляется всегда; mp3 удаляет вызывающий.
func (t *Transcoder) Convert(ctx context.Context, m *Media) (string, error) {
	if m == nil || len(m.Data) == 0 {
		return "", fmt.Errorf("%w: no data", ErrTranscode)
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscode, err)
	}

	base := fmt.Sprintf("%s-%s", safeName(m.FileID), uuid.NewString())
	raw := filepath.Join(t.dir, base+"."+m.Kind.Ext())
	out := filepath.Join(t.dir, base+".mp3")

	if err := os.WriteFile(raw, m.Data, 0o600); err != nil {
		os.Remove(raw)
		return "", fmt.Errorf("%w: stage input: %w", ErrTranscode, err)
	}
	defer os.Remove(raw)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.ffmpeg, "-i", raw, "-ar", "44100", "-ac", "2", "-b:a", "192k", out)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%v)", err, ctx.Err())
		}
		return "", fmt.Errorf("%w: ffmpeg: %w: %s", ErrTranscode, err, tail(stderr.String()))
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		os.Remove(out)
		return "", fmt.Errorf("%w: ffmpeg produced no output: %s", ErrTranscode, tail(stderr.String()))
	}
	return out, nil
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		s = "media"
	}
	return s
}

// tail оставляет последние строки stderr ffmpeg.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
