package converter

import (
	apperrors "s2t/internal/app/errors"
)

// User-facing messages. The wording is part of the interface: UIs render them verbatim.
const (
	fileResultLabel       = "File Transcription:\n"
	fileUnrecognizedMsg   = "Could not understand the audio in the file."
	operationFailedPrefix = "An error occurred: "
	listeningMsgFormat    = "Listening... (say '%s' to end)"
	listeningStoppedMsg   = "Listening stopped."
	listeningCancelledMsg = "Listening cancelled."
	youSaidPrefix         = "You said: "
	liveUnrecognizedMsg   = "Could not understand the audio. Please try again."
)

// FileProcessingNotice is shown while a file upload is being transcribed
const FileProcessingNotice = "Processing audio file..."

// Result is the outcome of one transcription invocation
type Result struct {
	Kind apperrors.Kind `json:"kind"`
	// Text is the recognized transcript, empty on failure
	Text string `json:"text"`
	// Message is the string shown to the user
	Message string `json:"message"`
}

// Failed reports whether the invocation ended with an operation failure
func (r Result) Failed() bool {
	return r.Kind == apperrors.KindOperationFailed
}

func failedResult(err error) Result {
	return Result{
		Kind:    apperrors.KindOperationFailed,
		Message: operationFailedPrefix + err.Error(),
	}
}
