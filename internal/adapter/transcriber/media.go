package transcriber

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var supportedExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".mov":  true,
	".m4a":  true,
	".webm": true,
}

// IsSupported reports whether fileName has an accepted audio/video extension.
func IsSupported(fileName string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(fileName))]
}

// SupportedExtensions lists the accepted extensions, without dots.
func SupportedExtensions() []string {
	return []string{"mp3", "mp4", "wav", "mov", "m4a", "webm"}
}

// MediaConverter prepares uploaded media for speech-to-text.
type MediaConverter interface {
	// HasAudio reports whether the file contains at least one audio stream.
	HasAudio(path string) (bool, error)
	// ToSpeechAudio writes a mono 16 kHz mp3 rendition of in to out.
	ToSpeechAudio(in, out string) error
}

// FFmpegConverter shells out to the ffmpeg and ffprobe binaries.
type FFmpegConverter struct{}

func (FFmpegConverter) HasAudio(path string) (bool, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return false, fmt.Errorf("probing media: %w", err)
	}

	var probe struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return false, fmt.Errorf("decoding ffprobe output: %w", err)
	}
	for _, s := range probe.Streams {
		if s.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

func (FFmpegConverter) ToSpeechAudio(in, out string) error {
	return ffmpeg.Input(in).
		Output(out, ffmpeg.KwArgs{
			"ac":  1,
			"ar":  16000,
			"b:a": "64k",
		}).
		OverWriteOutput().
		Run()
}
