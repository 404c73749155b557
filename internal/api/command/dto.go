package command

import "avril/internal/entity"

type SaveCommandRequest struct {
	Phrase   string `json:"phrase" validate:"required,min=2,max=120"`
	Response string `json:"response" validate:"required,max=1000"`
}

type CommandListResponse struct {
	Commands []entity.CustomCommand `json:"commands"`
	Total    int                    `json:"total"`
}

// Seed is the optional YAML file that provides the first set of custom
// commands and the joke bank.
type Seed struct {
	Commands []entity.CustomCommand `yaml:"commands"`
	Jokes    []string               `yaml:"jokes"`
}

// CommandListEvent opens or closes the command list on the console.
type CommandListEvent struct {
	Open bool `json:"open"`
}

type StatusEvent struct {
	Text string `json:"text"`
}
