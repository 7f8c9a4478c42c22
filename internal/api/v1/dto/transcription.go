package dto

import (
	"mime/multipart"
)

// Server-sent event names of the file transcription stream
const (
	EventInfo     = "info"
	EventProgress = "progress"
	EventResult   = "result"
)

// UploadRequest is the multipart form of POST /transcriptions/file
type UploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

// InfoEvent is the payload of an info event
type InfoEvent struct {
	Message string `json:"message"`
}

// ProgressEvent is the payload of a progress event
type ProgressEvent struct {
	Percent int `json:"percent"`
}
