// Package notify is the best-effort notification sink. Delivery failures are
// logged and never surface to the caller; a failed notification must not
// abort the operation that triggered it.
package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// TaskSummary is the payload delivered with an assignment notification.
type TaskSummary struct {
	Title        string
	Description  string
	AssignerName string
	Criticality  string
	Deadline     string
}

// Notifier delivers task notifications to a recipient. Implementations are
// best-effort: errors are reported for logging only.
type Notifier interface {
	NotifyAssignment(recipientEmail, recipientName string, task TaskSummary) error
}

// LogNotifier writes notifications to the process log. It is the default
// sink when no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyAssignment(recipientEmail, recipientName string, task TaskSummary) error {
	log.Printf("notify: task %q assigned to %s <%s>", task.Title, recipientName, recipientEmail)
	return nil
}

// SMTPNotifier sends assignment emails through a plain SMTP server.
type SMTPNotifier struct {
	Addr string // host:port
	From string
}

func (n SMTPNotifier) NotifyAssignment(recipientEmail, recipientName string, task TaskSummary) error {
	if recipientEmail == "" {
		return nil
	}
	body := fmt.Sprintf("To: %s\r\nSubject: New Task Assigned: %s\r\n\r\n"+
		"Hi %s,\r\n\r\nYou have been assigned a new task by %s.\r\n\r\n"+
		"Task: %s\r\nDescription: %s\r\nCriticality: %s\r\nDeadline: %s\r\n",
		recipientEmail, task.Title, recipientName, task.AssignerName,
		task.Title, task.Description, task.Criticality, task.Deadline)
	return smtp.SendMail(n.Addr, nil, n.From, []string{recipientEmail}, []byte(body))
}

// FromEnv picks the notifier: SMTP when SMTP_ADDR is set, otherwise the log
// sink.
func FromEnv() Notifier {
	addr := os.Getenv("SMTP_ADDR")
	if addr == "" {
		return LogNotifier{}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@syncdeck.local"
	}
	return SMTPNotifier{Addr: addr, From: from}
}
