package radio

import (
	"fmt"

	"github.com/handiism/radiowave/internal/model"
)

// PlaybackError reports that the output rejected a play or resume request,
// for example an unreachable stream or an unsupported codec.
type PlaybackError struct {
	Station model.Station
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of %q failed: %v", e.Station.Name, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
