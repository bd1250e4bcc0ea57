package models

import "time"

// DialogueStep is the step a session is waiting on. Terminal states are never stored.
type DialogueStep string

const (
	StepConfirm     DialogueStep = "confirm"
	StepAskType     DialogueStep = "ask_type"
	StepAskLocation DialogueStep = "ask_location"
)

// Session is the state of one food dialogue, scoped to a single user in a single channel.
type Session struct {
	ID        string       `json:"id"`
	User      string       `json:"user"`
	Channel   string       `json:"channel"`
	Step      DialogueStep `json:"step"`
	FoodType  string       `json:"foodType"`
	Location  string       `json:"location"`
	Retries   int          `json:"retries"`
	StartedAt time.Time    `json:"startedAt"`
}
