// Package httpd exposes the playback Store over a small local HTTP API so
// scripts and other programs can control a running radiowave.
//
//	GET    /healthz
//	GET    /state
//	POST   /play/{id}
//	POST   /pause
//	POST   /toggle
//	PUT    /volume          {"volume": 0.5}
//	GET    /favorites
//	PUT    /favorites/{id}
//	DELETE /favorites/{id}
//	GET    /recent
//
// Responses are JSON. Failures carry {"error": "..."}.
package httpd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radio"
)

// Player is the subset of *radio.Store the API drives.
type Player interface {
	State() radio.State
	PlayStation(ctx context.Context, st model.Station) error
	PauseStation()
	TogglePlay(ctx context.Context) error
	SetVolume(v float64)
	AddToFavorites(ctx context.Context, st model.Station)
	RemoveFromFavorites(ctx context.Context, id string)
	Lookup(id string) (model.Station, bool)
}

// Directory resolves station ids the Player does not know yet.
type Directory interface {
	StationByID(ctx context.Context, id string) (model.Station, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Player    Player
	Directory Directory
	Logger    zerolog.Logger
}

// NewRouter builds the API handler.
func NewRouter(srv *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(srv.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", srv.handleHealth())
	r.Get("/state", srv.handleState())
	r.Post("/play/{stationID}", srv.handlePlay())
	r.Post("/pause", srv.handlePause())
	r.Post("/toggle", srv.handleToggle())
	r.Put("/volume", srv.handleVolume())

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", srv.handleFavorites())
		r.Put("/{stationID}", srv.handleAddFavorite())
		r.Delete("/{stationID}", srv.handleRemoveFavorite())
	})
	r.Get("/recent", srv.handleRecent())

	return r
}

// requestLogger logs one line per request with zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully. started, when not nil, receives the bound address.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, started func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if started != nil {
		started(ln.Addr())
	}

	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
