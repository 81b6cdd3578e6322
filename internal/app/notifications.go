package app

import (
	"sync"
	"time"

	"github.com/corey/unitylens/internal/ports"
)

// notificationCap is how many notifications the ring keeps.
const notificationCap = 100

// Notifications is a ring buffer of the most recent host notifications.
// Hosts poll it with Since. Safe for concurrent use.
type Notifications struct {
	mu    sync.Mutex
	ring  [notificationCap]ports.Notification
	head  int
	count int
	now   func() time.Time
}

// NewNotifications creates an empty ring.
func NewNotifications() *Notifications {
	return &Notifications{now: time.Now}
}

// Notify implements ports.Notifier. A zero Time is stamped with now.
func (n *Notifications) Notify(note ports.Notification) {
	if note.Time.IsZero() {
		note.Time = n.now()
	}
	n.mu.Lock()
	n.ring[n.head] = note
	n.head = (n.head + 1) % notificationCap
	if n.count < notificationCap {
		n.count++
	}
	n.mu.Unlock()
}

// Since returns kept notifications newer than t, oldest first.
func (n *Notifications) Since(t time.Time) []ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []ports.Notification
	for i := n.count - 1; i >= 0; i-- {
		note := n.ring[(n.head-1-i+notificationCap)%notificationCap]
		if note.Time.After(t) {
			out = append(out, note)
		}
	}
	return out
}

// Len returns the number of kept notifications.
func (n *Notifications) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
