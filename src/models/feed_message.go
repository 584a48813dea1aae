package models

// -----------------------------------------------------------------------------

// MFeedMessage is the wire payload pushed to websocket subscribers.
// Exactly one field is set per message.
type MFeedMessage struct {
	Message string   `json:"message,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------

func StatusMessage(text string) *MFeedMessage {
	return &MFeedMessage{Message: text}
}

// -----------------------------------------------------------------------------

func PriceMessage(price float64) *MFeedMessage {
	return &MFeedMessage{Price: &price}
}

// -----------------------------------------------------------------------------

func ErrorMessage(text string) *MFeedMessage {
	return &MFeedMessage{Error: text}
}
