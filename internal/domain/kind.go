package domain

import "strings"

// MetadataKind selects which extractor, if any, enriches a file's record.
type MetadataKind int

const (
	NoExtraMetadata MetadataKind = iota
	ImageMetadata
	AvMetadata
)

func (k MetadataKind) String() string {
	switch k {
	case ImageMetadata:
		return "image"
	case AvMetadata:
		return "audio/video"
	default:
		return "none"
	}
}

func KindForExtension(ext string) MetadataKind {
	if IsImageExtension(ext) {
		return ImageMetadata
	}
	if IsAvExtension(ext) {
		return AvMetadata
	}
	return NoExtraMetadata
}

func IsImageExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	default:
		return false
	}
}

func IsAvExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp3", ".m4a", ".mp4", ".flac", ".wav", ".opus", ".ogg", ".mkv", ".webm":
		return true
	default:
		return false
	}
}
