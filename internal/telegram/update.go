package telegram

import "encoding/json"

// Update is the inbound webhook payload, reduced to the fields the bot reads.
type Update struct {
	Message struct {
		Chat struct {
			ID json.Number `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// ChatID returns the sender's chat id as a string.
func (u Update) ChatID() string {
	return u.Message.Chat.ID.String()
}
