package queue

import "encoding/json"

// MessageVersion is bumped when the payload shape changes.
const MessageVersion = 1

// Message notifies a candidate that a recruiter made contact.
type Message struct {
	CandidateID   string `json:"candidateId"`
	RecruiterName string `json:"recruiterName"`
	Company       string `json:"company"`
	Email         string `json:"email"`
	Body          string `json:"message"`
	RequestID     string `json:"requestId,omitempty"`
	SentAt        string `json:"sentAt"`
	Version       int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
