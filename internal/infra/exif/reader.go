package exif

import (
	"bytes"
	"context"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
)

// Reader extracts EXIF tags from JPEG, PNG and GIF images.
type Reader struct{}

type dimensionPair struct {
	width, height goexif.FieldName
}

// Resolution is derived from the first pair whose tags are both present.
var dimensionPairs = []dimensionPair{
	{goexif.ImageWidth, goexif.ImageLength},
	{goexif.PixelXDimension, goexif.PixelYDimension},
}

type walkedTag struct {
	id    uint16
	name  string
	value string
	tag   *tiff.Tag
}

type tagCollector struct {
	tags []walkedTag
}

func (c *tagCollector) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	c.tags = append(c.tags, walkedTag{
		id:    tag.Id,
		name:  string(name),
		value: formatTag(tag),
		tag:   tag,
	})
	return nil
}

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

	_, format, err := image.DecodeConfig(file)
	if err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.MetadataDecode, "decode image", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.MetadataDecode, "seek", path, err)
	}

	record := domain.NewFileRecord()

	var source io.Reader = file
	if format == "png" {
		payload, err := pngExifChunk(file)
		if err != nil {
			return domain.FileRecord{}, appErrors.Wrap(appErrors.MetadataDecode, "read png chunks", path, err)
		}
		if payload == nil {
			return record, nil
		}
		source = bytes.NewReader(payload)
	}

	x, err := goexif.Decode(source)
	if x == nil || (err != nil && goexif.IsCriticalError(err)) {
		// A readable image without an EXIF block simply has no tags.
		return record, nil
	}

	collector := &tagCollector{}
	if err := x.Walk(collector); err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.MetadataDecode, "walk exif", path, err)
	}
	sort.SliceStable(collector.tags, func(i, j int) bool {
		if collector.tags[i].id == collector.tags[j].id {
			return collector.tags[i].name < collector.tags[j].name
		}
		return collector.tags[i].id < collector.tags[j].id
	})

	byName := make(map[string]*tiff.Tag, len(collector.tags))
	for _, t := range collector.tags {
		record.Set(t.name, t.value)
		byName[t.name] = t.tag
	}

	for _, pair := range dimensionPairs {
		width, okW := intValue(byName[string(pair.width)])
		height, okH := intValue(byName[string(pair.height)])
		if !okW || !okH {
			continue
		}
		record.Delete(string(pair.width))
		record.Delete(string(pair.height))
		record.Set("Resolution", FormatResolution(width, height))
		break
	}

	return record, nil
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngExifChunk returns the raw TIFF held by the eXIf chunk of a PNG stream,
// or nil when the image has none.
func pngExifChunk(r io.Reader) ([]byte, error) {
	signature := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, signature); err != nil {
		return nil, err
	}
	if !bytes.Equal(signature, pngSignature) {
		return nil, stderrors.New("not a png stream")
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		length := int64(binary.BigEndian.Uint32(header[:4]))
		switch string(header[4:]) {
		case "eXIf":
			payload := make([]byte, length)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, err
			}
			// Some writers keep the JPEG APP1 prefix.
			return bytes.TrimPrefix(payload, []byte("Exif\x00\x00")), nil
		case "IEND":
			return nil, nil
		}
		if _, err := io.CopyN(io.Discard, r, length+4); err != nil {
			return nil, err
		}
	}
}

// FormatResolution renders pixel dimensions with their megapixel count.
func FormatResolution(width, height int) string {
	mp := float64(width) * float64(height) / 1e6
	return fmt.Sprintf("%d×%d (%.1f MP)", width, height, mp)
}

func intValue(tag *tiff.Tag) (int, bool) {
	if tag == nil || tag.Count == 0 || tag.Format() != tiff.IntVal {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatTag(tag *tiff.Tag) string {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return ""
		}
		return strings.TrimRight(s, "\x00 ")
	case tiff.UndefVal:
		return strings.ToValidUTF8(strings.TrimRight(string(tag.Val), "\x00"), "?")
	case tiff.IntVal:
		return joinValues(tag, func(i int) (string, error) {
			v, err := tag.Int64(i)
			return strconv.FormatInt(v, 10), err
		})
	case tiff.RatVal:
		return joinValues(tag, func(i int) (string, error) {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return "", err
			}
			if den == 0 {
				return fmt.Sprintf("%d/%d", num, den), nil
			}
			return strconv.FormatFloat(float64(num)/float64(den), 'f', -1, 64), nil
		})
	case tiff.FloatVal:
		return joinValues(tag, func(i int) (string, error) {
			v, err := tag.Float(i)
			return strconv.FormatFloat(v, 'f', -1, 64), err
		})
	default:
		return tag.String()
	}
}

func joinValues(tag *tiff.Tag, format func(i int) (string, error)) string {
	values := make([]string, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		v, err := format(i)
		if err != nil {
			break
		}
		values = append(values, v)
	}
	return strings.Join(values, ", ")
}
