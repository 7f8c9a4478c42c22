package dto

// Message types exchanged on the live websocket
const (
	LiveTypeState   = "state"
	LiveTypeInfo    = "info"
	LiveTypeSaid    = "said"
	LiveTypeWarning = "warning"
	LiveTypeResult  = "result"
	LiveTypeCancel  = "cancel"
)

// LiveMessage is one JSON frame of the live websocket.
// Kind and Text are only set on result frames.
type LiveMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Text    string `json:"text,omitempty"`
}
