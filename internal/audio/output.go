package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	rwhttp "github.com/handiism/radiowave/internal/http"
)

// SpeakerSampleRate is the rate the speaker is initialised with. Streams
// with a different rate are resampled.
const SpeakerSampleRate = beep.SampleRate(44100)

var (
	// ErrNoSource is returned by Play before any stream was loaded.
	ErrNoSource = errors.New("audio: no stream loaded")

	// ErrClosed is returned once the output has been closed.
	ErrClosed = errors.New("audio: output closed")

	// ErrSuperseded is returned by a Play whose stream was replaced by a
	// newer Load while it was still connecting.
	ErrSuperseded = errors.New("audio: stream replaced while connecting")

	// ErrUnsupportedCodec is returned for streams that are not MP3.
	ErrUnsupportedCodec = errors.New("audio: unsupported codec")
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// sink is where decoded audio goes. The system speaker in production.
type sink interface {
	Init() error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// systemSpeaker drives the process-wide beep speaker.
type systemSpeaker struct{}

// Init initialises the shared speaker exactly once per process.
func (systemSpeaker) Init() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SpeakerSampleRate, SpeakerSampleRate.N(time.Second/10))
	})
	return speakerErr
}

func (systemSpeaker) Play(s beep.Streamer) { speaker.Play(s) }
func (systemSpeaker) Clear()               { speaker.Clear() }
func (systemSpeaker) Lock()                { speaker.Lock() }
func (systemSpeaker) Unlock()              { speaker.Unlock() }

// dialFunc opens and decodes a stream. The returned cancel ends it.
type dialFunc func(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, context.CancelFunc, error)

// pendingDial is a connection in progress for one loaded stream.
type pendingDial struct {
	gen  uint64
	done chan struct{}
	err  error
}

// SpeakerOutput plays one MP3 internet radio stream at a time through the
// system speaker.
//
// Load only records the target URL; the connection is made by Play. Pause
// keeps the connection open so resuming is instant, at the cost of the
// buffered audio falling behind the live broadcast. At most one stream is
// ever handed to the speaker: a Play issued while the loaded stream is
// still connecting waits for that connection instead of dialing again.
type SpeakerOutput struct {
	client *rwhttp.Client
	logger zerolog.Logger
	dial   dialFunc
	sink   sink

	mu      sync.Mutex
	url     string
	gen     uint64
	pending *pendingDial
	paused  bool
	cancel  context.CancelFunc
	stream  beep.StreamSeekCloser
	ctrl    *beep.Ctrl
	vol     *effects.Volume
	volume  float64
	closed  bool
}

// OutputOption configures a SpeakerOutput.
type OutputOption func(*SpeakerOutput)

// WithLogger sets the logger for stream lifecycle events.
func WithLogger(logger zerolog.Logger) OutputOption {
	return func(o *SpeakerOutput) {
		o.logger = logger
	}
}

// NewSpeakerOutput creates an output that fetches streams with client.
func NewSpeakerOutput(client *rwhttp.Client, opts ...OutputOption) *SpeakerOutput {
	o := &SpeakerOutput{
		client: client,
		logger: zerolog.Nop(),
		sink:   systemSpeaker{},
		volume: 1,
	}
	o.dial = o.connect
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load retargets the output at url and silences the previous stream.
func (o *SpeakerOutput) Load(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("audio: empty stream url")
	}

	o.stopLocked()
	o.url = url
	o.gen++
	o.paused = false
	return nil
}

// Play connects to the loaded stream, or resumes it when already
// connected.
func (o *SpeakerOutput) Play(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.url == "" {
		o.mu.Unlock()
		return ErrNoSource
	}
	o.paused = false
	if o.ctrl != nil {
		o.sink.Lock()
		o.ctrl.Paused = false
		o.sink.Unlock()
		o.mu.Unlock()
		return nil
	}
	if d := o.pending; d != nil && d.gen == o.gen {
		o.mu.Unlock()
		select {
		case <-d.done:
			return d.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d := &pendingDial{gen: o.gen, done: make(chan struct{})}
	o.pending = d
	url := o.url
	o.mu.Unlock()

	d.err = o.start(ctx, d, url)
	close(d.done)
	return d.err
}

// start dials url for d and hands the stream to the sink unless the
// output moved on in the meantime.
func (o *SpeakerOutput) start(ctx context.Context, d *pendingDial, url string) error {
	stream, format, cancel, err := o.dial(ctx, url)
	if err == nil {
		if ierr := o.sink.Init(); ierr != nil {
			stream.Close()
			cancel()
			err = fmt.Errorf("audio: init speaker: %w", ierr)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pending == d {
		o.pending = nil
	}
	if err != nil {
		return err
	}
	if o.closed || o.gen != d.gen {
		stream.Close()
		cancel()
		if o.closed {
			return ErrClosed
		}
		return ErrSuperseded
	}

	var src beep.Streamer = stream
	if format.SampleRate != SpeakerSampleRate {
		src = beep.Resample(4, format.SampleRate, SpeakerSampleRate, stream)
	}

	o.stream = stream
	o.cancel = cancel
	o.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(src, beep.Callback(func() {
			o.logger.Warn().Str("url", url).Msg("stream ended")
		})),
		Paused: o.paused,
	}
	o.vol = &effects.Volume{Streamer: o.ctrl, Base: 2}
	applyVolume(o.vol, o.volume)

	o.sink.Play(o.vol)

	o.logger.Info().
		Str("url", url).
		Int("sample_rate", int(format.SampleRate)).
		Int("channels", format.NumChannels).
		Bool("paused", o.paused).
		Msg("stream started")
	return nil
}

// connect opens and decodes the stream. ctx only bounds the connection;
// the stream itself lives until the returned cancel is called.
func (o *SpeakerOutput) connect(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, context.CancelFunc, error) {
	streamCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	body, contentType, err := o.client.Open(streamCtx, url)
	if err != nil {
		cancel()
		return nil, beep.Format{}, nil, err
	}
	if !IsMP3(contentType) {
		body.Close()
		cancel()
		return nil, beep.Format{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, contentType)
	}

	stream, format, err := mp3.Decode(body)
	if err != nil {
		body.Close()
		cancel()
		return nil, beep.Format{}, nil, fmt.Errorf("audio: decode %s: %w", url, err)
	}
	if ctx.Err() != nil {
		stream.Close()
		cancel()
		return nil, beep.Format{}, nil, ctx.Err()
	}
	return stream, format, cancel, nil
}

// IsMP3 accepts explicit MP3 content types and the generic types some
// servers send for Icecast streams.
func IsMP3(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "", "audio/mpeg", "audio/mp3", "audio/mpeg3", "audio/x-mpeg", "application/octet-stream":
		return true
	}
	return false
}

// Pause silences the stream but keeps it connected. A stream that is
// still connecting starts paused.
func (o *SpeakerOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.paused = true
	if o.ctrl == nil {
		return
	}
	o.sink.Lock()
	o.ctrl.Paused = true
	o.sink.Unlock()
}

// SetVolume applies v, clamped to [0, 1].
func (o *SpeakerOutput) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = math.Max(0, math.Min(1, v))
	if o.vol == nil {
		return
	}
	o.sink.Lock()
	applyVolume(o.vol, o.volume)
	o.sink.Unlock()
}

// Close stops playback. The output cannot be reused afterwards.
func (o *SpeakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.stopLocked()
	return nil
}

// stopLocked tears down the current stream. o.mu must be held.
func (o *SpeakerOutput) stopLocked() {
	if o.ctrl == nil {
		return
	}

	o.sink.Clear()
	if err := o.stream.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		o.logger.Debug().Err(err).Str("url", o.url).Msg("closing stream")
	}
	o.cancel()

	o.stream = nil
	o.cancel = nil
	o.ctrl = nil
	o.vol = nil
}

// applyVolume maps a linear volume in [0, 1] onto the exponential scale
// used by effects.Volume.
func applyVolume(vol *effects.Volume, v float64) {
	vol.Silent = v <= 0
	if vol.Silent {
		vol.Volume = 0
		return
	}
	vol.Volume = math.Log2(v)
}
