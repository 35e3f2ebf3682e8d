package ws

// Inbound message types.
const (
	TypeUserMessage = "user_message"
	TypeMood        = "mood"
	TypePing        = "ping"
)

// Outbound message types not produced by the service.
const (
	TypePong  = "pong"
	TypeError = "error"
)

// Error codes.
const (
	ErrorCodeInvalidMessage   = "invalid_message"
	ErrorCodeInvalidInput     = "invalid_input"
	ErrorCodeSessionNotActive = "session_not_active"
	ErrorCodeBusy             = "busy"
	ErrorCodeInternal         = "internal_error"
)

type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts,omitempty"`
}

type UserMessage struct {
	BaseMessage
	Text string `json:"text"`
}

type MoodMessage struct {
	BaseMessage
	Mood      string   `json:"mood"`
	Emotions  []string `json:"emotions,omitempty"`
	Intensity int      `json:"intensity"`
}

type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
