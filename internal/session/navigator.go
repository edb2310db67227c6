package session

import "sync"

// Navigator moves the operator's front end to another page.
type Navigator interface {
	Navigate(to string)
}

// PendingNavigator remembers the last requested destination until the front
// end collects it.
type PendingNavigator struct {
	mu      sync.Mutex
	pending string
	history []string
}

func NewPendingNavigator() *PendingNavigator {
	return &PendingNavigator{}
}

func (n *PendingNavigator) Navigate(to string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = to
	n.history = append(n.history, to)
}

// Pending returns the destination waiting to be followed, if any.
func (n *PendingNavigator) Pending() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}

// Take returns and clears the pending destination.
func (n *PendingNavigator) Take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	to := n.pending
	n.pending = ""
	return to
}

// History lists every destination requested so far.
func (n *PendingNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
