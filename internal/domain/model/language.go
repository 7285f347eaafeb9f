package model

// Language is one entry of the execution language table exposed to clients.
type Language struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Judge0ID    int      `json:"judge0Id"`
	Aliases     []string `json:"aliases,omitempty"`
}
