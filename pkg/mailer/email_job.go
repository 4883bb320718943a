package mailer

import (
	"errors"
	"fmt"
)

// ErrInvalidJob marks a job that can never be sent; workers drop it.
var ErrInvalidJob = errors.New("invalid email job")

// EmailJob is the JSON payload of the email queue. Either Template with Data,
// or Subject with Text and/or HTML, is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (j EmailJob) Validate() error {
	switch {
	case j.To == "":
		return fmt.Errorf("%w: no recipient", ErrInvalidJob)
	case j.Template != "":
		return nil
	case j.Subject == "" || (j.Text == "" && j.HTML == ""):
		return fmt.Errorf("%w: needs a template or a subject with a body", ErrInvalidJob)
	}
	return nil
}
