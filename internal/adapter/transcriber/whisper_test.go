package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubequiz/internal/domain"
)

type fakeAudioClient struct {
	text      string
	err       error
	requests  []openai.AudioRequest
	sawFile   bool
	fileBytes []byte
}

func (f *fakeAudioClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.requests = append(f.requests, req)
	if data, err := os.ReadFile(req.FilePath); err == nil {
		f.sawFile = true
		f.fileBytes = data
	}
	if f.err != nil {
		return openai.AudioResponse{}, f.err
	}
	return openai.AudioResponse{Text: f.text}, nil
}

type fakeConverter struct {
	hasAudio   bool
	probeErr   error
	convertErr error
	converted  []string
}

func (f *fakeConverter) HasAudio(path string) (bool, error) {
	return f.hasAudio, f.probeErr
}

func (f *fakeConverter) ToSpeechAudio(in, out string) error {
	f.converted = append(f.converted, in)
	if f.convertErr != nil {
		return f.convertErr
	}
	return os.WriteFile(out, []byte("mp3-bytes"), 0o600)
}

func upload(name, body string) domain.MediaUpload {
	return domain.MediaUpload{FileName: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed")
}

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"talk.mp3", "lecture.MP4", "a.wav", "clip.mov", "voice.m4a", "x.webm"} {
		assert.True(t, IsSupported(name), name)
	}
	for _, name := range []string{"notes.txt", "archive.zip", "noext", "movie.mkv"} {
		assert.False(t, IsSupported(name), name)
	}
}

func TestWhisperTranscriber_ConvertsAndTranscribes(t *testing.T) {
	tmp := t.TempDir()
	client := &fakeAudioClient{text: "  hello from the lecture  "}
	conv := &fakeConverter{hasAudio: true}
	w := NewWhisperTranscriber(client, conv, Options{TempDir: tmp})

	text, err := w.Transcribe(context.Background(), upload("Lecture.MOV", "video-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "hello from the lecture", text)
	require.Len(t, client.requests, 1)
	assert.Equal(t, openai.Whisper1, client.requests[0].Model)
	assert.Equal(t, "speech.mp3", filepath.Base(client.requests[0].FilePath))
	assert.True(t, client.sawFile)
	assert.Equal(t, []byte("mp3-bytes"), client.fileBytes)
	require.Len(t, conv.converted, 1)
	assert.Equal(t, ".mov", filepath.Ext(conv.converted[0]))
	assertDirEmpty(t, tmp)
}

func TestWhisperTranscriber_WithoutConverterSendsOriginal(t *testing.T) {
	tmp := t.TempDir()
	client := &fakeAudioClient{text: "hi"}
	w := NewWhisperTranscriber(client, nil, Options{TempDir: tmp, Model: "whisper-large"})

	_, err := w.Transcribe(context.Background(), upload("voice.wav", "RIFF"))

	require.NoError(t, err)
	assert.Equal(t, "whisper-large", client.requests[0].Model)
	assert.Equal(t, []byte("RIFF"), client.fileBytes)
	assertDirEmpty(t, tmp)
}

func TestWhisperTranscriber_Failures(t *testing.T) {
	tests := []struct {
		name     string
		upload   domain.MediaUpload
		client   *fakeAudioClient
		conv     *fakeConverter
		maxBytes int64
		wantCode domain.ErrorCode
	}{
		{
			name:     "unsupported extension",
			upload:   upload("notes.txt", "text"),
			client:   &fakeAudioClient{},
			conv:     &fakeConverter{hasAudio: true},
			wantCode: domain.CodeUnsupportedMedia,
		},
		{
			name:     "no audio stream",
			upload:   upload("silent.mp4", "video"),
			client:   &fakeAudioClient{},
			conv:     &fakeConverter{hasAudio: false},
			wantCode: domain.CodeUnsupportedMedia,
		},
		{
			name:     "probe fails",
			upload:   upload("broken.mp4", "video"),
			client:   &fakeAudioClient{},
			conv:     &fakeConverter{probeErr: errors.New("moov atom not found")},
			wantCode: domain.CodeMediaConversion,
		},
		{
			name:     "conversion fails",
			upload:   upload("talk.mp3", "audio"),
			client:   &fakeAudioClient{},
			conv:     &fakeConverter{hasAudio: true, convertErr: errors.New("exit status 1")},
			wantCode: domain.CodeMediaConversion,
		},
		{
			name:     "whisper fails",
			upload:   upload("talk.mp3", "audio"),
			client:   &fakeAudioClient{err: errors.New("401 unauthorized")},
			conv:     &fakeConverter{hasAudio: true},
			wantCode: domain.CodeTranscriptionFailed,
		},
		{
			name:     "empty transcription",
			upload:   upload("talk.mp3", "audio"),
			client:   &fakeAudioClient{text: "   "},
			conv:     &fakeConverter{hasAudio: true},
			wantCode: domain.CodeTranscriptionFailed,
		},
		{
			name:     "empty upload",
			upload:   upload("talk.mp3", ""),
			client:   &fakeAudioClient{},
			conv:     &fakeConverter{hasAudio: true},
			wantCode: domain.CodeInvalidInput,
		},
		{
			name:     "upload too large",
			upload:   domain.MediaUpload{FileName: "talk.mp3", Reader: strings.NewReader("0123456789")},
			client:   &fakeAudioClient{},
			conv:     &fakeConverter{hasAudio: true},
			maxBytes: 4,
			wantCode: domain.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			w := NewWhisperTranscriber(tt.client, tt.conv, Options{TempDir: tmp, MaxBytes: tt.maxBytes})

			_, err := w.Transcribe(context.Background(), tt.upload)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			assertDirEmpty(t, tmp)
		})
	}
}
