package audio

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

type TranscriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Transcriber turns an uploaded voice clip into a transcript with Whisper.
type Transcriber struct {
	client   TranscriptionClient
	language string
}

func NewTranscriber(client TranscriptionClient, language string) *Transcriber {
	return &Transcriber{client: client, language: language}
}

// NewOpenAIClient returns a client usable both for speech and transcription.
func NewOpenAIClient(apiKey string) *openai.Client {
	return openai.NewClient(apiKey)
}

func (t *Transcriber) Transcribe(ctx context.Context, name string, clip io.Reader) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: name,
		Reader:   clip,
		Language: t.language,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
