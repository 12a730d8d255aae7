// pkg/api/free_recognition.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/api/client"
)

// AcoustIDEndpoint – адрес метода lookup.
const AcoustIDEndpoint = "https://api.acoustid.org/v2/lookup"

type acoustIDResponse struct {
	Status string `json:"status"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Results []acoustIDResult `json:"results"`
}

type acoustIDResult struct {
	Score      float64 `json:"score"`
	Recordings []struct {
		Title   string `json:"title"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"recordings"`
}

type fingerprint struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

// AcoustID распознаёт запись по аудиоотпечатку: fpcalc считает отпечаток,
// AcoustID возвращает совпадения.
type AcoustID struct {
	apiKey   string
	fpcalc   string
	endpoint string
	tmpDir   string
	http     *client.Client
}

// AcoustIDOption настраивает AcoustID.
type AcoustIDOption func(*AcoustID)

// WithEndpoint подменяет адрес lookup (для тестов).
func WithEndpoint(endpoint string) AcoustIDOption {
	return func(a *AcoustID) { a.endpoint = endpoint }
}

// WithTempDir задаёт каталог для временных файлов fpcalc.
func WithTempDir(dir string) AcoustIDOption {
	return func(a *AcoustID) { a.tmpDir = dir }
}

func NewAcoustID(apiKey, fpcalcPath string, hc *client.Client, opts ...AcoustIDOption) *AcoustID {
	if fpcalcPath == "" {
		fpcalcPath = "fpcalc"
	}
	if hc == nil {
		hc = client.New(client.DefaultConcurrencyLimit)
	}
	a := &AcoustID{
		apiKey:   apiKey,
		fpcalc:   fpcalcPath,
		endpoint: AcoustIDEndpoint,
		http:     hc,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lookup возвращает совпадения в порядке убывания score. Аудио, из которого
// fpcalc не смог получить отпечаток, даёт пустую последовательность.
func (a *AcoustID) Lookup(ctx context.Context, audio []byte) (Matches, error) {
	fp, err := a.fingerprint(ctx, audio)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: fpcalc: %w", ErrRecognition, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return emptyMatches{}, nil
		}
		return nil, fmt.Errorf("%w: fpcalc: %w", ErrRecognition, err)
	}
	if strings.TrimSpace(fp.Fingerprint) == "" {
		return emptyMatches{}, nil
	}

	form := url.Values{}
	form.Set("client", a.apiKey)
	form.Set("duration", strconv.Itoa(int(math.Round(fp.Duration))))
	form.Set("fingerprint", fp.Fingerprint)
	form.Set("meta", "recordings")
	form.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, body, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: acoustid lookup: %w", ErrRecognition, err)
	}

	var resp acoustIDResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode acoustid response: %w", ErrRecognition, err)
	}
	if resp.Status != "ok" {
		msg := resp.Status
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return nil, fmt.Errorf("%w: acoustid: %s", ErrRecognition, msg)
	}

	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].Score > resp.Results[j].Score
	})
	return &resultIter{results: resp.Results}, nil
}

// fpcalcWaitDelay ограничивает ожидание закрытия pipe после отмены ctx,
// если дочерний процесс fpcalc их ещё держит.
const fpcalcWaitDelay = time.Second

func (a *AcoustID) fingerprint(ctx context.Context, audio []byte) (*fingerprint, error) {
	f, err := os.CreateTemp(a.tmpDir, "fp-*.mp3")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.fpcalc, "-json", path)
	cmd.Stderr = &stderr
	cmd.WaitDelay = fpcalcWaitDelay
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	var fp fingerprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return nil, fmt.Errorf("parse fpcalc output: %w", err)
	}
	return &fp, nil
}

type resultIter struct {
	results []acoustIDResult
	pos     int
}

func (it *resultIter) Next() (Match, bool) {
	if it.pos >= len(it.results) {
		return Match{}, false
	}
	r := it.results[it.pos]
	it.pos++

	m := Match{Score: r.Score}
	if len(r.Recordings) > 0 {
		rec := r.Recordings[0]
		m.Title = rec.Title
		for _, artist := range rec.Artists {
			m.Artists = append(m.Artists, artist.Name)
		}
	}
	return m, true
}

type emptyMatches struct{}

func (emptyMatches) Next() (Match, bool) { return Match{}, false }
