package media

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
)

// Field names of an audio/video record, in output order.
const (
	FieldTitle       = "Title"
	FieldAlbum       = "Album"
	FieldAlbumArtist = "Album Artist"
	FieldComposer    = "Composer"
	FieldGenre       = "Genre"
	FieldComment     = "Comment"
	FieldYear        = "Year Released"
	FieldDuration    = "Duration"
	FieldBitRate     = "Bit Rate"
	FieldSampleRate  = "Sample Rate"
	FieldAudioOffset = "Audio Offset"
	FieldChannels    = "Channels"
	FieldTrack       = "Track"
	FieldTrackTotal  = "Track Total"
)

const (
	bitRateSuffix    = " kBits/s"
	sampleRateSuffix = " sample/s"
)

var Fields = []string{
	FieldTitle, FieldAlbum, FieldAlbumArtist, FieldComposer, FieldGenre,
	FieldComment, FieldYear, FieldDuration, FieldBitRate, FieldSampleRate,
	FieldAudioOffset, FieldChannels, FieldTrack, FieldTrackTotal,
}

// Reader extracts tags and basic stream properties from audio and video
// files. Tags the file does not carry are left empty.
type Reader struct{}

func (Reader) Extract(ctx context.Context, path string) (domain.FileRecord, error) {
	select {
	case <-ctx.Done():
		return domain.FileRecord{}, ctx.Err()
	default:
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.MetadataDecode, "open", path, err)
	}
	defer file.Close()

	record := domain.NewFileRecord()
	for _, name := range Fields {
		record.Set(name, "")
	}

	meta, err := tag.ReadFrom(file)
	switch {
	case err == nil:
		applyTags(&record, meta)
	case stderrors.Is(err, tag.ErrNoTagsFound):
	default:
		return domain.FileRecord{}, appErrors.Wrap(appErrors.MetadataDecode, "read tags", path, err)
	}

	if info, ok := probeStream(file, strings.ToLower(filepath.Ext(path))); ok {
		applyStream(&record, info)
	}

	return record, nil
}

func applyTags(record *domain.FileRecord, meta tag.Metadata) {
	record.Set(FieldTitle, meta.Title())
	record.Set(FieldAlbum, meta.Album())
	record.Set(FieldAlbumArtist, meta.AlbumArtist())
	record.Set(FieldComposer, meta.Composer())
	record.Set(FieldGenre, meta.Genre())
	record.Set(FieldComment, meta.Comment())
	record.Set(FieldYear, positive(meta.Year()))

	track, total := meta.Track()
	record.Set(FieldTrack, positive(track))
	record.Set(FieldTrackTotal, positive(total))
}

func applyStream(record *domain.FileRecord, info streamInfo) {
	if info.Duration > 0 {
		record.Set(FieldDuration, domain.FormatClock(info.Duration))
	}
	if info.BitRate > 0 {
		record.Set(FieldBitRate, strconv.FormatFloat(info.BitRate, 'f', -1, 64)+bitRateSuffix)
	}
	if info.SampleRate > 0 {
		record.Set(FieldSampleRate, strconv.Itoa(info.SampleRate)+sampleRateSuffix)
	}
	if info.AudioOffset > 0 {
		record.Set(FieldAudioOffset, strconv.FormatInt(info.AudioOffset, 10))
	}
	if info.Channels > 0 {
		record.Set(FieldChannels, strconv.Itoa(info.Channels))
	}
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
