// Package notifsvc implements the notification presentation collaborators.
package notifsvc

import (
	"log"
	"sync"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
)

// ConsoleNotifier writes notifications to the process log. Posting the same
// key again replaces the previous entry, mirroring the platform behavior of
// re-notifying under an id.
type ConsoleNotifier struct {
	channelID   string
	channelName string

	once   sync.Once
	mu     sync.Mutex
	posted map[uint32]reminder.Notification
}

var _ reminder.Notifier = (*ConsoleNotifier)(nil)

func NewConsoleNotifier(conf *core.Config) *ConsoleNotifier {
	return &ConsoleNotifier{
		channelID:   conf.Reminder.ChannelID,
		channelName: conf.Reminder.ChannelName,
		posted:      make(map[uint32]reminder.Notification),
	}
}

func (n *ConsoleNotifier) Post(notif reminder.Notification) error {
	n.ensureChannel()

	n.mu.Lock()
	_, replaced := n.posted[notif.Key]
	n.posted[notif.Key] = notif
	n.mu.Unlock()

	action := "posted"
	if replaced {
		action = "replaced"
	}
	log.Printf("[%s] %s #%d: %s - %s", n.channelID, action, notif.Key, notif.Title, notif.Body)
	return nil
}

// Posted reports whether a notification is currently shown under the key.
func (n *ConsoleNotifier) Posted(key uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.posted[key]
	return ok
}

func (n *ConsoleNotifier) ensureChannel() {
	n.once.Do(func() {
		log.Printf("notification channel %q (%s) created", n.channelID, n.channelName)
	})
}
