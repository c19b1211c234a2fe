package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/radiowave/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, understood by nearly every player
//   - PLS: INI-style format, the SHOUTcast/Icecast classic
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines carrying the station name.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat converts a settings value such as "m3u" or "pls"
// into a PlaylistFormat.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "m3u", "m3u8", "":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return "pls"
	case FormatWPL:
		return "wpl"
	case FormatZPL:
		return "zpl"
	default:
		return "m3u"
	}
}

func (f PlaylistFormat) String() string {
	return f.Extension()
}

// PlaylistCreator generates playlist files of stations.
//
// Each entry points at the station's stream URL, so the resulting file can
// be opened by any player that understands the format.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("Favorites", state.Favorites)
//	os.WriteFile("favorites.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,SomaFM Groove Salad
//	// https://ice2.somafm.com/groovesalad-128-mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with the station name
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for stations.
//
// Live streams have no length, so entries that carry one use -1.
func (p *PlaylistCreator) CreatePlaylist(title string, stations []model.Station) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(stations)
	case FormatWPL:
		return p.createWPL(title, stations)
	case FormatZPL:
		return p.createZPL(title, stations)
	default:
		return p.createM3U(stations)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:-1,Station Name
//	http://stream.example/live
func (p *PlaylistCreator) createM3U(stations []model.Station) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, st := range stations {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", oneLine(st.Name)))
		}
		sb.WriteString(st.URL + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=http://stream.example/live
//	Title1=Station Name
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(stations []model.Station) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, st := range stations {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, st.URL))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, oneLine(st.Name)))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", idx))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(stations)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, stations []model.Station) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, st := range stations {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(st.URL)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist, which carries the
// station name and country alongside each stream.
func (p *PlaylistCreator) createZPL(title string, stations []model.Station) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"radiowave\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(stations)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, st := range stations {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" albumTitle=\"%s\"/>\n",
			escapeXML(st.URL),
			escapeXML(st.Name),
			escapeXML(st.Name),
			escapeXML(st.Country)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// oneLine keeps names from breaking line-oriented formats.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
