// Package radio holds the playback and favorites Store, the single
// authoritative state for what is audible, the favorites collection and
// the play history.
//
// # Store
//
// One Store is created at startup and handed to every view:
//
//	kv, _ := storage.Open(settings.Storage)
//	out := audio.NewSpeakerOutput(httpClient, logger)
//	store := radio.New(ctx, kv, out, radio.WithLogger(logger))
//	defer store.Close()
//
//	store.PlayStation(ctx, station)
//	store.SetVolume(0.5)
//	store.AddToFavorites(station)
//
// # Playback States
//
// A Store is Idle until a station is played, then moves between Playing
// and Paused:
//
//	Idle    --PlayStation-->  Playing
//	Playing --PauseStation--> Paused
//	Paused  --TogglePlay-->   Playing (or back to Paused if resuming fails)
//
// If the output rejects playback the Store stays on the attempted station
// but reports it as not playing, and PlayStation returns a *PlaybackError.
//
// # Output
//
// The Store exclusively owns one Output. Playing another station retargets
// that same Output, so at most one station is ever audible. Callers never
// see the Output; they only express intents through the Store.
//
// # Persistence
//
// Favorites and the recently played list are written to storage, each
// under its own key, by every operation that changes them. Write failures
// are logged and otherwise ignored. Missing or malformed records load as
// empty lists.
package radio
