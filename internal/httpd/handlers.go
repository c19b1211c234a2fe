package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radio"
	"github.com/handiism/radiowave/internal/radiobrowser"
)

type volumeRequest struct {
	Volume *float64 `json:"volume"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Player.State())
	}
}

func (s *Server) handlePlay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := s.station(w, r)
		if !ok {
			return
		}

		if err := s.Player.PlayStation(r.Context(), st); err != nil {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, s.Player.State())
	}
}

func (s *Server) handlePause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Player.PauseStation()
		respondWithJSON(w, http.StatusOK, s.Player.State())
	}
}

func (s *Server) handleToggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Player.TogglePlay(r.Context()); err != nil {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, s.Player.State())
	}
}

func (s *Server) handleVolume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req volumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Volume == nil {
			respondWithError(w, http.StatusBadRequest, `body must be {"volume": <0..1>}`)
			return
		}

		s.Player.SetVolume(*req.Volume)
		respondWithJSON(w, http.StatusOK, s.Player.State())
	}
}

func (s *Server) handleFavorites() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Player.State().Favorites)
	}
}

func (s *Server) handleAddFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := s.station(w, r)
		if !ok {
			return
		}

		s.Player.AddToFavorites(r.Context(), st)
		respondWithJSON(w, http.StatusOK, s.Player.State().Favorites)
	}
}

func (s *Server) handleRemoveFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Player.RemoveFromFavorites(r.Context(), chi.URLParam(r, "stationID"))
		respondWithJSON(w, http.StatusOK, s.Player.State().Favorites)
	}
}

func (s *Server) handleRecent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Player.State().Recent)
	}
}

// station resolves the {stationID} URL parameter, first among stations the
// Player knows, then in the directory. It writes the error response itself
// and reports whether the caller should continue.
func (s *Server) station(w http.ResponseWriter, r *http.Request) (model.Station, bool) {
	id := chi.URLParam(r, "stationID")
	if st, ok := s.Player.Lookup(id); ok {
		return st, true
	}
	if s.Directory == nil {
		respondWithError(w, http.StatusNotFound, "station not found")
		return model.Station{}, false
	}

	st, err := s.Directory.StationByID(r.Context(), id)
	if err != nil {
		var nerr *radiobrowser.NetworkError
		switch {
		case errors.Is(err, radiobrowser.ErrStationNotFound):
			respondWithError(w, http.StatusNotFound, "station not found")
		case errors.As(err, &nerr):
			respondWithError(w, http.StatusBadGateway, nerr.Message)
		default:
			s.Logger.Error().Err(err).Str("id", id).Msg("station lookup failed")
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return model.Station{}, false
	}
	return st, true
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// Compile-time check that the Store satisfies Player.
var _ Player = (*radio.Store)(nil)
