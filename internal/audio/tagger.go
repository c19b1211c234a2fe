package audio

import (
	"os"
	"time"

	"github.com/bogem/id3v2"

	"github.com/handiism/radiowave/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with station data.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field written onto
// a recording.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Title:      TagModify,      // "<station> <timestamp>"
//	    Artist:     TagModify,      // station name
//	    Genre:      TagModify,      // station tags
//	    Date:       TagModify,      // recording time
//	    Comments:   TagDoNotModify, // keep whatever the stream sent
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame, set to the country.
	Album TagEditAction

	// Genre controls the TCON (Content type) frame.
	Genre TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// Comments controls the COMM frame, set to the stream URL.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every frame is
// written from station data.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Title:      TagModify,
		Artist:     TagModify,
		Album:      TagModify,
		Genre:      TagModify,
		Year:       TagModify,
		Date:       TagModify,
		Comments:   TagModify,
	}
}

// Recording describes a captured stream file.
type Recording struct {
	// Path is the MP3 file on disk.
	Path string

	// Station is the station that was recorded.
	Station model.Station

	// StartedAt is when the capture began.
	StartedAt time.Time
}

// Title is the display title of the recording.
func (r Recording) Title() string {
	return r.Station.Name + " " + r.StartedAt.Format("2006-01-02 15:04")
}

// Tagger writes ID3 tags to recorded MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags(rec, faviconJPEG)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the recording's file.
//
// artwork is JPEG image bytes for the front cover; nil skips artwork.
func (t *Tagger) SaveTags(rec Recording, artwork []byte) error {
	tag, err := id3v2.Open(rec.Path, id3v2.Options{Parse: true})
	if err != nil {
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, rec)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, rec Recording) {
	st := rec.Station

	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(rec.Title())
	}

	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(st.Name)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(st.Country)
	}

	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(st.TagList())
	}

	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, rec.StartedAt.Format("2006"))
	}

	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, rec.StartedAt.Format("2006-01-02T15:04:05"))
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		tag.DeleteFrames(tag.CommonID("Comments"))
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "stream",
			Text:        st.URL,
		})
	}
}

// updateArtwork embeds the station favicon as the front cover.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
