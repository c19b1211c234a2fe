// Package record captures a live station stream into a tagged MP3 file.
//
//	rec := record.NewRecorder(settings, client,
//	    record.WithFavicons(exportManager),
//	    record.WithLogger(logger))
//	out, err := rec.Record(ctx, station, 30*time.Minute, "", nil)
package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/radiowave/internal/audio"
	"github.com/handiism/radiowave/internal/config"
	rwhttp "github.com/handiism/radiowave/internal/http"
	ioutils "github.com/handiism/radiowave/internal/io"
	"github.com/handiism/radiowave/internal/model"
)

// ErrUnsupportedCodec is returned for stations that do not stream MP3.
var ErrUnsupportedCodec = errors.New("record: only MP3 streams can be recorded")

// FaviconSource provides JPEG cover art for a station.
type FaviconSource interface {
	Favicon(ctx context.Context, st model.Station) ([]byte, error)
}

// Recorder writes a fixed duration of a stream to disk.
type Recorder struct {
	settings *config.Settings
	client   *rwhttp.Client
	tagger   *audio.Tagger
	favicons FaviconSource
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithFavicons embeds station favicons from src as cover art.
func WithFavicons(src FaviconSource) Option {
	return func(r *Recorder) {
		r.favicons = src
	}
}

// WithLogger sets the logger for capture diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a Recorder.
func NewRecorder(settings *config.Settings, client *rwhttp.Client, opts ...Option) *Recorder {
	cfg := audio.DefaultTagConfig()
	cfg.ModifyTags = settings.ModifyTags

	r := &Recorder{
		settings: settings,
		client:   client,
		tagger:   audio.NewTagger(cfg),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record streams st for duration d into <dir>/<station> <timestamp>.mp3,
// or into settings.RecordingsPath when dir is empty. onProgress, when not
// nil, receives the number of bytes captured so far.
//
// A stream that ends before d yields a shorter recording. Cancelling ctx
// discards the partial file.
func (r *Recorder) Record(ctx context.Context, st model.Station, d time.Duration, dir string, onProgress func(written int64)) (audio.Recording, error) {
	if d <= 0 {
		return audio.Recording{}, fmt.Errorf("record: duration must be positive")
	}
	if st.Codec != "" && !strings.EqualFold(st.Codec, "mp3") {
		return audio.Recording{}, fmt.Errorf("%w: %s", ErrUnsupportedCodec, st.Codec)
	}
	if dir == "" {
		dir = r.settings.RecordingsPath
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return audio.Recording{}, err
	}

	rec := audio.Recording{Station: st, StartedAt: r.now()}
	rec.Path = filepath.Join(dir, ioutils.RecordingFileName(st.Name, rec.StartedAt, "mp3"))

	captureCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	body, contentType, err := r.client.Open(captureCtx, st.URL)
	if err != nil {
		return audio.Recording{}, fmt.Errorf("record: open stream: %w", err)
	}
	defer body.Close()

	if !audio.IsMP3(contentType) {
		return audio.Recording{}, fmt.Errorf("%w: %s", ErrUnsupportedCodec, contentType)
	}

	written, err := r.capture(captureCtx, body, rec.Path, onProgress)
	if err != nil {
		os.Remove(rec.Path)
		if ctx.Err() != nil {
			return audio.Recording{}, ctx.Err()
		}
		return audio.Recording{}, err
	}

	r.logger.Info().
		Str("station", st.Name).
		Str("path", rec.Path).
		Int64("bytes", written).
		Dur("duration", r.now().Sub(rec.StartedAt)).
		Msg("recording finished")

	r.tag(ctx, rec)
	return rec, nil
}

// capture copies body to path until the stream ends or ctx expires.
func (r *Recorder) capture(ctx context.Context, body io.Reader, path string, onProgress func(int64)) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	pw := &rwhttp.ProgressWriter{Writer: file, Total: -1}
	if onProgress != nil {
		pw.OnUpdate = func(written, _ int64) { onProgress(written) }
	}

	_, err = io.Copy(pw, body)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// The capture window elapsed.
		err = nil
	}
	if err != nil {
		return pw.Written, err
	}
	if pw.Written == 0 {
		return 0, fmt.Errorf("record: stream sent no data")
	}
	return pw.Written, file.Close()
}

// tag labels the recording. Failures are logged only.
func (r *Recorder) tag(ctx context.Context, rec audio.Recording) {
	if !r.settings.ModifyTags && !r.settings.SaveFaviconInTags {
		return
	}

	var artwork []byte
	if r.settings.SaveFaviconInTags && r.favicons != nil && rec.Station.HasFavicon() {
		var err error
		artwork, err = r.favicons.Favicon(ctx, rec.Station)
		if err != nil {
			r.logger.Warn().Err(err).Str("station", rec.Station.Name).Msg("no cover art for recording")
		}
	}

	if err := r.tagger.SaveTags(rec, artwork); err != nil {
		r.logger.Warn().Err(err).Str("path", rec.Path).Msg("failed to tag recording")
	}
}
