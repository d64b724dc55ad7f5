package entities

// Message is a transport-neutral chat event: a text message or a button press.
type Message struct {
	ChatID     int64
	From       int64
	FirstName  string
	Text       string
	HasText    bool
	Command    string // without the leading slash, empty for plain text
	Args       string
	IsCallback bool
	CallbackID string
	Data       string // callback payload
}

// BroadcastFailure records one recipient that could not be reached.
type BroadcastFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

type BroadcastResult struct {
	Sent     int                `json:"sent"`
	Failed   int                `json:"failed"`
	Failures []BroadcastFailure `json:"failures"`
}
