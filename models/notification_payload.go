package models

import (
	"encoding/json"
	"fmt"
)

// NotificationPayload tells the user how a deposit went.
// Delivery is up to the notifier.
type NotificationPayload struct {
	Name     string `json:"name"`
	Repo     string `json:"repo"`
	PaperURL string `json:"paperurl"`
}

// NewNotificationPayload builds the payload for a deposit of
// paper by user into repo. Param paperURLFormat must contain
// one %d for the paper id.
func NewNotificationPayload(user *User, repo *Repository, paper *Paper, paperURLFormat string) *NotificationPayload {
	payload := &NotificationPayload{}
	if user != nil {
		payload.Name = user.DisplayName()
	}
	if repo != nil {
		payload.Repo = repo.Name
	}
	if paper != nil {
		payload.PaperURL = fmt.Sprintf(paperURLFormat, paper.Id)
	}
	return payload
}

// AppendMessage adds " message" to PaperURL, which is how failed
// deposits tell the user what happened.
func (payload *NotificationPayload) AppendMessage(message string) {
	payload.PaperURL += " " + message
}

func (payload *NotificationPayload) ToJson() ([]byte, error) {
	return json.Marshal(payload)
}
