package notifsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/user"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// emailService delivers events as transactional emails via Sendgrid.
// Recipient addresses are resolved from the user service at dispatch time.
type emailService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	usrSvc     user.ServiceInterface
	logger     core.Logger
}

var _ core.NotificationService = (*emailService)(nil)

func NewEmailService(conf *core.Config, usrSvc user.ServiceInterface, logger core.Logger) *emailService {
	return &emailService{
		key:        conf.SendgridAPIKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		usrSvc:     usrSvc,
		logger:     logger,
	}
}

func (svc emailService) SendEvents(events ...*core.Event) {
	for _, evt := range events {
		evt := evt
		go func() {
			usr, err := svc.usrSvc.GetByID(context.Background(), evt.UserID)
			if err != nil {
				svc.logger.Error(fmt.Sprintf("resolving event recipient: %v", err), err)
				return
			}
			if usr.Email == "" {
				return
			}
			svc.send(usr, evt)
		}()
	}
}

func (svc emailService) send(usr user.User, evt *core.Event) {
	subject, body := renderEvent(evt)

	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + subject
	p.AddTos(sgmail.NewEmail(usr.Name, usr.Email))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending notification email: %v", err), err)
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending notification email - status: %d - Body: %s", res.StatusCode, res.Body))
	}
}
