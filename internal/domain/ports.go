package domain

import (
	"context"
	"io"
)

// MediaUpload is an audio or video file supplied by the user.
type MediaUpload struct {
	FileName string
	Size     int64
	Reader   io.Reader
}

// TranscriptSource fetches the transcript of an online video.
type TranscriptSource interface {
	// Fetch returns the flat transcript text for a video ID.
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Transcriber turns uploaded media into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, upload MediaUpload) (string, error)
}

// Summarizer condenses a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// QuizGenerator asks a model for quiz text in the blank-line separated,
// sentinel-marked format understood by the quiz text parser.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, transcript string, numQuestions int) (string, error)
}

// Explainer explains why a submitted answer is wrong.
type Explainer interface {
	Explain(ctx context.Context, question Question, userAnswer string) (string, error)
}

// Answerer answers a free-form question using transcript excerpts as context.
type Answerer interface {
	Answer(ctx context.Context, excerpts, question string) (string, error)
}
