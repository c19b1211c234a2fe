// Package audio provides the speaker output for internet radio streams,
// playlist generation, and ID3 tagging of recordings.
//
// # Speaker Output
//
// SpeakerOutput plays one MP3 stream at a time through the system speaker
// using gopxl/beep. It satisfies radio.Output:
//
//	out := audio.NewSpeakerOutput(client, audio.WithLogger(logger))
//	out.Load(station.URL)
//	err := out.Play(ctx) // connects, decodes and starts playback
//	out.Pause()          // keeps the connection open
//	out.SetVolume(0.5)
//
// Streams whose sample rate differs from SpeakerSampleRate are resampled.
// Non-MP3 streams fail with ErrUnsupportedCodec.
//
// # Playlist Generation
//
// Generate playlists of stations in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Favorites", stations)
//	os.WriteFile("favorites.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
//
// # ID3 Tagging
//
// Use the Tagger to label a recorded stream:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(audio.Recording{Path: path, Station: st, StartedAt: t0}, faviconJPEG)
//
// The tagger writes title, artist (station name), album (country), genre
// (station tags), year, recording date, a comment holding the stream URL,
// and the favicon as front cover.
package audio
