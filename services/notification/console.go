package notifsvc

import (
	"log"
	"sync"

	"github.com/elimucd/maendeleo/core"
)

type consoleService struct {
	subjPrefix    string
	disableOutput bool

	mu         sync.Mutex
	sentEvents []core.Event
}

var _ core.NotificationService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) *consoleService {
	return &consoleService{subjPrefix: "[" + conf.AppName + "] "}
}

func (svc *consoleService) SendEvents(events ...*core.Event) {
	for _, evt := range events {
		go svc.sendEvent(evt)
	}
}

func (svc *consoleService) sendEvent(evt *core.Event) {
	subject, body := renderEvent(evt)
	if !svc.disableOutput {
		log.Printf("To: %s\nSubject: %s\n\n%s\n", evt.UserID, svc.subjPrefix+subject, body)
	}
	svc.mu.Lock()
	svc.sentEvents = append(svc.sentEvents, *evt)
	svc.mu.Unlock()
}

// SentEvents returns a copy of everything dispatched so far.
func (svc *consoleService) SentEvents() []core.Event {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sent := make([]core.Event, len(svc.sentEvents))
	copy(sent, svc.sentEvents)
	return sent
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(conf *core.Config) *consoleServiceMock {
	return &consoleServiceMock{
		consoleService: consoleService{
			subjPrefix:    "[" + conf.AppName + "] ",
			disableOutput: true,
		},
	}
}

// SendEvents dispatches synchronously so tests can assert on SentEvents.
func (svc *consoleServiceMock) SendEvents(events ...*core.Event) {
	for _, evt := range events {
		svc.sendEvent(evt)
	}
}
