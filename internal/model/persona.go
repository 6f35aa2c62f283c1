package model

// Persona is a named system prompt.
type Persona struct {
	Name    string `json:"name"`
	Persona string `json:"persona"`
}

// PersonaEditor is the transient persona being edited. It is not persisted
// until saved.
type PersonaEditor struct {
	Name string `json:"name"`
	Text string `json:"persona"`
}

// UpsertPersonaRequest is the request to create or update a persona.
type UpsertPersonaRequest struct {
	Name    string `json:"name"`
	Persona string `json:"persona"`
}

// EditPersonaRequest edits one or both fields of the persona editor.
type EditPersonaRequest struct {
	Name    *string `json:"name,omitempty"`
	Persona *string `json:"persona,omitempty"`
}

// SelectPersonaRequest selects a persona by name.
type SelectPersonaRequest struct {
	Name string `json:"name"`
}
