package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/radiowave/internal/audio"
	"github.com/handiism/radiowave/internal/config"
	rwhttp "github.com/handiism/radiowave/internal/http"
	ioutils "github.com/handiism/radiowave/internal/io"
	"github.com/handiism/radiowave/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents an export progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result summarizes a finished export.
type Result struct {
	PlaylistPath string
	FaviconDir   string
	Favicons     int
	Failed       int
}

// Manager exports station lists as playlist files with their favicons.
type Manager struct {
	settings     *config.Settings
	httpClient   *rwhttp.Client
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
	sleep      func(ctx context.Context, d time.Duration)
}

// NewManager creates a new export Manager.
//
// An unknown settings.PlaylistFormat falls back to M3U.
func NewManager(settings *config.Settings, client *rwhttp.Client, onProgress func(ProgressEvent)) *Manager {
	format, _ := audio.ParsePlaylistFormat(settings.PlaylistFormat)

	return &Manager{
		settings:     settings,
		httpClient:   client,
		playlist:     audio.NewPlaylistCreator(format, settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
		sleep:        sleepCtx,
	}
}

// Export writes stations to <dir>/<name>.<ext> and, when enabled, their
// favicons to <dir>/<name> favicons/.
//
// A favicon that cannot be fetched after all retries is reported as a
// warning and counted in Result.Failed; it does not fail the export.
func (m *Manager) Export(ctx context.Context, name string, stations []model.Station, dir string) (Result, error) {
	var res Result

	if err := ioutils.EnsureDir(dir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return res, err
	}

	base := ioutils.SanitizeFileName(name)
	res.PlaylistPath = filepath.Join(dir, base+"."+m.playlist.Format().Extension())

	content := m.playlist.CreatePlaylist(name, stations)
	if err := ioutils.WriteFile(ctx, res.PlaylistPath, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing playlist: %v", err), Level: LevelError})
		return res, fmt.Errorf("write playlist: %w", err)
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Wrote %s (%d stations)", filepath.Base(res.PlaylistPath), len(stations)),
		Level:   LevelSuccess,
	})

	if !m.settings.ExportFavicons {
		return res, nil
	}

	res.FaviconDir = filepath.Join(dir, base+" favicons")
	if err := ioutils.EnsureDir(res.FaviconDir); err != nil {
		return res, err
	}

	var withFavicon []model.Station
	for _, st := range stations {
		if st.HasFavicon() {
			withFavicon = append(withFavicon, st)
		}
	}
	atomic.StoreInt32(&m.totalFiles, int32(len(withFavicon)))
	atomic.StoreInt32(&m.downloadedFiles, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentFavicons)

	var failed int32
	for _, st := range withFavicon {
		g.Go(func() error {
			if err := m.exportFavicon(gctx, st, res.FaviconDir); err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching favicon for %s: %v", st.Name, err), Level: LevelWarning})
				atomic.AddInt32(&failed, 1)
				return nil // Continue with other stations
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Failed = int(failed)
	res.Favicons = len(withFavicon) - res.Failed

	if res.Failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %d favicons", res.Favicons), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %d favicons, %d failed", res.Favicons, res.Failed), Level: LevelWarning})
	}
	return res, nil
}

func (m *Manager) exportFavicon(ctx context.Context, st model.Station, dir string) error {
	data, err := m.Favicon(ctx, st)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, FaviconFileName(st))
	if err := ioutils.WriteFile(ctx, path, data); err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved favicon: %s", filepath.Base(path)), Level: LevelVerbose})
	return nil
}

// Favicon downloads the station favicon, retrying with exponential
// backoff, and returns it scaled and converted to JPEG.
func (m *Manager) Favicon(ctx context.Context, st model.Station) ([]byte, error) {
	if !st.HasFavicon() {
		return nil, fmt.Errorf("station %q has no favicon", st.Name)
	}

	var (
		data []byte
		err  error
	)
	retries := max(m.settings.DownloadMaxRetries, 1)
	for tries := 0; tries < retries; tries++ {
		data, err = m.httpClient.DownloadBytes(ctx, st.Favicon)
		if err == nil || ctx.Err() != nil {
			break
		}
		if tries+1 < retries {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, retries, st.Name), Level: LevelVerbose})
			m.sleep(ctx, m.settings.RetryDelay(tries))
		}
	}
	if err != nil {
		return nil, err
	}

	size := m.settings.FaviconMaxSize
	if size <= 0 {
		size = ioutils.DefaultFaviconSize
	}
	return m.imageService.Thumbnail(ctx, data, size)
}

// FaviconFileName names a station's favicon file. The id suffix keeps
// stations with equal names apart.
func FaviconFileName(st model.Station) string {
	id := strings.ReplaceAll(st.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	name := ioutils.SanitizeFileName(st.Name)
	if id != "" {
		name += " " + ioutils.SanitizeFileName(id)
	}
	return name + ".jpg"
}

// Progress returns how many favicons of the current export are saved.
func (m *Manager) Progress() (done, total int32) {
	return atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
