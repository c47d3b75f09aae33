// Package notifsvc delivers progression domain events to users.
package notifsvc

import (
	"fmt"

	"github.com/elimucd/maendeleo/core"
)

// renderEvent produces a human-readable subject and body for an event.
func renderEvent(evt *core.Event) (subject, body string) {
	switch evt.Type {
	case core.EventApprovalApproved:
		subject = "Module approved"
		body = "Your request to access the next module has been approved. Keep it up!"
		if c, ok := evt.Payload["comment"].(string); ok && c != "" {
			body += "\n\nReviewer comment: " + c
		}
	case core.EventApprovalRejected:
		subject = "Module approval rejected"
		body = "Your request to access the next module has been rejected."
		if c, ok := evt.Payload["comment"].(string); ok && c != "" {
			body += "\n\nReviewer comment: " + c
		}
	case core.EventModuleUnlocked:
		subject = "New module unlocked"
		body = "Congratulations! You completed a module and the next one is now available."
		if name, ok := evt.Payload["module_name"].(string); ok && name != "" {
			subject = fmt.Sprintf("New module unlocked: %s", name)
		}
	case core.EventQuizGraded:
		subject = "Quiz graded"
		if score, ok := evt.Payload["score"]; ok {
			body = fmt.Sprintf("Your quiz submission has been graded: %v/100.", score)
		} else {
			body = "Your quiz submission has been graded."
		}
	case core.EventGradeReceived:
		subject = "New grade received"
		if grade, ok := evt.Payload["grade"]; ok {
			body = fmt.Sprintf("You received a new grade: %v/100.", grade)
		} else {
			body = "You received a new grade."
		}
	default:
		subject = evt.Type
		body = fmt.Sprintf("%v", evt.Payload)
	}
	return subject, body
}
