package services

import (
	"context"

	"s2t/internal/api/v1/dto"
	"s2t/internal/app/converter"
)

// FileService runs the upload and recognition flow for one file.
// *converter.FileTranscriber satisfies it.
type FileService interface {
	Transcribe(ctx context.Context, up converter.Upload, sink converter.ProgressSink) converter.Result
}

// LiveService runs microphone sessions.
// *converter.LiveTranscriber satisfies it.
type LiveService interface {
	Run(ctx context.Context, r converter.Renderer) converter.Result
	Busy() bool
	Keyword() string
}

// ProviderService defines the interface for provider operations
type ProviderService interface {
	ListProviders(ctx context.Context, withHealth bool) (*dto.ProviderListResponse, error)
	GetProvider(ctx context.Context, name string, withHealth bool) (*dto.ProviderResponse, error)
}
