package models

import "time"

// ChatExchange is one question/answer round trip. Nothing is kept between
// requests; prior context has to be resent by the client.
type ChatExchange struct {
	Query     string  `json:"query"`
	Response  string  `json:"response"`
	TimeTaken float64 `json:"time_taken"` // seconds
}

func NewChatExchange(query, response string, elapsed time.Duration) ChatExchange {
	secs := elapsed.Seconds()
	if secs < 0 {
		secs = 0
	}
	return ChatExchange{Query: query, Response: response, TimeTaken: secs}
}
