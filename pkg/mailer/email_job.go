package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text is required; HTML is optional.
type EmailJob struct {
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
	// Tag groups messages in Mailgun analytics, e.g. "page-contact".
	Tag string `json:"tag,omitempty"`
}

// Valid reports whether the job has enough to be sent.
func (j EmailJob) Valid() bool {
	return j.To != "" && j.Subject != "" && (j.Text != "" || j.HTML != "")
}
