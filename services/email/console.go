package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/oscardm22/estuguia/core"
)

var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    conf.TestMode,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if msg.HasRecipients() && msg.HasContent() {
		svc.send(*msg)
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

func (svc consoleService) send(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}

	var sb strings.Builder
	sb.WriteString("From: " + svc.defaultFromEmail.String() + "\n")
	sb.WriteString("To: " + joinAddresses(msg.To) + "\n")
	if len(msg.Cc) > 0 {
		sb.WriteString("Cc: " + joinAddresses(msg.Cc) + "\n")
	}
	sb.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\n\n")
	sb.WriteString(msg.TextContent + "\n")
	fmt.Println(sb.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
