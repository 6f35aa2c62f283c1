package model

// Avatars holds presentation-only avatar image URLs.
type Avatars struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// SessionState is a snapshot of everything the presentation layer renders.
type SessionState struct {
	Title         string        `json:"title"`
	Conversations []string      `json:"conversations"`
	ActiveID      string        `json:"active_id,omitempty"`
	Model         string        `json:"model"`
	Models        []string      `json:"models"`
	Personas      []Persona     `json:"personas"`
	Editor        PersonaEditor `json:"editor"`
	Avatars       Avatars       `json:"avatars"`
}

// SelectModelRequest selects the model used for new sends.
type SelectModelRequest struct {
	Model string `json:"model"`
}
