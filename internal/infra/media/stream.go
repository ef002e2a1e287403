package media

import (
	"io"
	"math"
	"time"

	"github.com/abema/go-mp4"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
	"github.com/tcolgate/mp3"
)

type streamInfo struct {
	Duration    float64
	BitRate     float64
	SampleRate  int
	Channels    int
	AudioOffset int64
}

// A streamProbe reads stream properties from r, positioned at the start of
// a file of the given size.
type streamProbe func(r io.ReadSeeker, size int64) (streamInfo, bool)

var streamProbes = map[string]streamProbe{
	".mp3":  probeMP3,
	".wav":  probeWAV,
	".flac": probeFLAC,
	".m4a":  probeMP4,
	".mp4":  probeMP4,
	".ogg":  probeOgg,
	".opus": probeOpus,
}

// probeStream reports false for containers without a probe and for streams
// the probe could not make sense of.
func probeStream(r io.ReadSeeker, ext string) (streamInfo, bool) {
	probe, ok := streamProbes[ext]
	if !ok {
		return streamInfo{}, false
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return streamInfo{}, false
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return streamInfo{}, false
	}
	return probe(r, size)
}

// averageKbps is rounded to a tenth of a kilobit.
func averageKbps(bytes int64, seconds float64) float64 {
	if bytes <= 0 || seconds <= 0 {
		return 0
	}
	return math.Round(float64(bytes)*8/seconds/100) / 10
}

func probeMP3(r io.ReadSeeker, _ int64) (streamInfo, bool) {
	offset := id3v2Size(r)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return streamInfo{}, false
	}

	var (
		info     streamInfo
		frame    mp3.Frame
		skipped  int
		frames   int
		bitRates int64
		duration time.Duration
	)
	decoder := mp3.NewDecoder(r)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			break
		}
		header := frame.Header()
		if frames == 0 {
			info.AudioOffset = offset + int64(skipped)
			info.SampleRate = int(header.SampleRate())
			info.Channels = 2
			if header.ChannelMode() == mp3.SingleChannel {
				info.Channels = 1
			}
		}
		frames++
		bitRates += int64(header.BitRate())
		duration += frame.Duration()
	}
	if frames == 0 {
		return streamInfo{}, false
	}

	info.Duration = duration.Seconds()
	info.BitRate = math.Round(float64(bitRates)/float64(frames)/100) / 10
	return info, true
}

// id3v2Size returns the length of a leading ID3v2 tag, footer included, or
// zero when the stream does not start with one.
func id3v2Size(r io.Reader) int64 {
	var header [10]byte
	if _, err := io.ReadFull(r, header[:]); err != nil || string(header[:3]) != "ID3" {
		return 0
	}
	size := int64(header[6]&0x7F)<<21 | int64(header[7]&0x7F)<<14 | int64(header[8]&0x7F)<<7 | int64(header[9]&0x7F)
	size += int64(len(header))
	if header[5]&0x10 != 0 {
		size += int64(len(header))
	}
	return size
}

func probeWAV(r io.ReadSeeker, _ int64) (streamInfo, bool) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return streamInfo{}, false
	}
	if err := decoder.FwdToPCM(); err != nil || decoder.AvgBytesPerSec == 0 {
		return streamInfo{}, false
	}
	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return streamInfo{}, false
	}

	return streamInfo{
		Duration:    float64(decoder.PCMSize) / float64(decoder.AvgBytesPerSec),
		BitRate:     float64(decoder.AvgBytesPerSec) * 8 / 1000,
		SampleRate:  int(decoder.SampleRate),
		Channels:    int(decoder.NumChans),
		AudioOffset: offset,
	}, true
}

// flacStreamInfoEnd is the offset just past the mandatory STREAMINFO block.
const flacStreamInfoEnd = 4 + 4 + 34

func probeFLAC(r io.ReadSeeker, size int64) (streamInfo, bool) {
	stream, err := flac.Parse(r)
	if err != nil || stream.Info == nil || stream.Info.SampleRate == 0 {
		return streamInfo{}, false
	}

	offset := int64(flacStreamInfoEnd)
	for _, block := range stream.Blocks {
		offset += 4 + block.Length
	}

	info := streamInfo{
		Duration:    float64(stream.Info.NSamples) / float64(stream.Info.SampleRate),
		SampleRate:  int(stream.Info.SampleRate),
		Channels:    int(stream.Info.NChannels),
		AudioOffset: offset,
	}
	info.BitRate = averageKbps(size-offset, info.Duration)
	return info, true
}

func probeMP4(r io.ReadSeeker, size int64) (streamInfo, bool) {
	probe, err := mp4.Probe(r)
	if err != nil {
		return streamInfo{}, false
	}
	return mp4StreamInfo(probe, size)
}

// mp4StreamInfo takes the movie duration and the first AAC track's rate,
// channel count and average bit rate.
func mp4StreamInfo(probe *mp4.ProbeInfo, size int64) (streamInfo, bool) {
	if probe == nil || probe.Timescale == 0 {
		return streamInfo{}, false
	}

	info := streamInfo{Duration: float64(probe.Duration) / float64(probe.Timescale)}
	for _, track := range probe.Tracks {
		if track.Codec != mp4.CodecMP4A || track.Timescale == 0 {
			continue
		}
		info.SampleRate = int(track.Timescale)
		if track.MP4A != nil {
			info.Channels = int(track.MP4A.ChannelCount)
		}
		var payload int64
		for _, sample := range track.Samples {
			payload += int64(sample.Size)
		}
		info.BitRate = averageKbps(payload, float64(track.Duration)/float64(track.Timescale))
		break
	}
	if info.BitRate == 0 {
		info.BitRate = averageKbps(size, info.Duration)
	}
	return info, info.Duration > 0
}

// .ogg holds either Opus or Vorbis.
func probeOgg(r io.ReadSeeker, size int64) (streamInfo, bool) {
	if info, ok := probeOpus(r, size); ok {
		return info, true
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return streamInfo{}, false
	}

	length, format, err := oggvorbis.GetLength(r)
	if err != nil || format == nil || format.SampleRate == 0 {
		return streamInfo{}, false
	}
	info := streamInfo{
		Duration:   float64(length) / float64(format.SampleRate),
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	}
	if format.Bitrate.Nominal > 0 {
		info.BitRate = float64(format.Bitrate.Nominal) / 1000
	} else {
		info.BitRate = averageKbps(size, info.Duration)
	}
	return info, true
}

// Opus granule positions count 48 kHz samples whatever the input rate.
const opusGranuleRate = 48000

func probeOpus(r io.ReadSeeker, size int64) (streamInfo, bool) {
	reader, header, err := oggreader.NewWith(r)
	if err != nil {
		return streamInfo{}, false
	}

	var granule uint64
	for {
		_, page, err := reader.ParseNextPage()
		if err != nil {
			break
		}
		// All bits set marks a page on which no packet ends.
		if page.GranulePosition != math.MaxUint64 && page.GranulePosition > granule {
			granule = page.GranulePosition
		}
	}

	info := streamInfo{
		SampleRate: int(header.SampleRate),
		Channels:   int(header.Channels),
	}
	if info.SampleRate == 0 {
		info.SampleRate = opusGranuleRate
	}
	if preSkip := uint64(header.PreSkip); granule > preSkip {
		info.Duration = float64(granule-preSkip) / opusGranuleRate
	}
	info.BitRate = averageKbps(size, info.Duration)
	return info, true
}
