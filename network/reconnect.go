package network

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	redialMin = time.Second
	redialMax = 30 * time.Second
)

// RoomStore is the persisted room identity used to rejoin after a drop.
type RoomStore interface {
	RoomCode() string
	SaveRoomCode(code string)
	ClearRoomCode()
}

// Controller owns the channel lifecycle: it detects loss, redials with
// backoff, replays the rejoin handshake, and requests a full snapshot so
// the session can rebuild from the idempotent merge. Outbound sends while
// disconnected are silently dropped, which is the broadcast suppression the
// session relies on.
type Controller struct {
	URL      string
	ClientID string
	Store    RoomStore

	// Events merges envelopes from every successive connection.
	Events chan Envelope
	// Status emits true on restore and false on loss.
	Status chan bool

	mu      sync.RWMutex
	current *Channel
}

func NewController(url, clientID string, store RoomStore) *Controller {
	return &Controller{
		URL:      url,
		ClientID: clientID,
		Store:    store,
		Events:   make(chan Envelope, sendBuffer),
		Status:   make(chan bool, 4),
	}
}

// Send forwards an event over the live channel. Returns false while the
// connection is down.
func (rc *Controller) Send(t string, payload any) bool {
	rc.mu.RLock()
	ch := rc.current
	rc.mu.RUnlock()
	if ch == nil {
		return false
	}
	if err := ch.SendEvent(t, payload); err != nil {
		log.Printf("reconnect: send %s: %v", t, err)
		return false
	}
	return true
}

// Connected reports whether a channel is live.
func (rc *Controller) Connected() bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.current != nil
}

// Run dials, pumps, and redials until ctx is cancelled.
func (rc *Controller) Run(ctx context.Context) {
	backoff := redialMin
	for {
		ch, err := Dial(rc.URL)
		if err != nil {
			log.Printf("reconnect: dial %s: %v (retry in %v)", rc.URL, err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > redialMax {
				backoff = redialMax
			}
			continue
		}
		backoff = redialMin

		rc.mu.Lock()
		rc.current = ch
		rc.mu.Unlock()
		rc.notify(true)

		// Persisted room identity means this is a reconnect, not a first
		// join: ask back in and let the snapshot rebuild everything.
		if code := rc.Store.RoomCode(); code != "" {
			ch.SendEvent(MsgRejoinRoom, RejoinRoomPayload{RoomCode: code, ClientID: rc.ClientID})
		}

		if done := rc.pump(ctx, ch); done {
			return
		}

		rc.mu.Lock()
		rc.current = nil
		rc.mu.Unlock()
		rc.notify(false)
	}
}

// pump forwards envelopes until the channel dies or ctx cancels. Returns
// true on cancellation.
func (rc *Controller) pump(ctx context.Context, ch *Channel) bool {
	for {
		select {
		case <-ctx.Done():
			ch.Close()
			return true
		case <-ch.Closed:
			log.Printf("reconnect: channel lost")
			return false
		case env := <-ch.Events:
			rc.intercept(ch, env)
			select {
			case rc.Events <- env:
			default:
				log.Printf("reconnect: event buffer full, dropping %s", env.T)
			}
		}
	}
}

// intercept handles the rejoin handshake before the session sees it.
func (rc *Controller) intercept(ch *Channel, env Envelope) {
	switch env.T {
	case MsgRejoinOK:
		ch.SendEvent(MsgRequestFullState, nil)
	case MsgRejoinFailed:
		// Room is gone; forget the identity so the next connect is a
		// clean join from the pre-match screen.
		rc.Store.ClearRoomCode()
	}
}

func (rc *Controller) notify(up bool) {
	select {
	case rc.Status <- up:
	default:
	}
}
