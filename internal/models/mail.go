package models

// WelcomeEmail — сообщение очереди приветственных писем.
type WelcomeEmail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}
