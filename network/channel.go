package network

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	dialWait   = 5 * time.Second
	sendBuffer = 256
)

// Channel is one websocket connection to the game server. Incoming
// envelopes land on Events; Closed is closed when the read side dies, which
// is the loss-detection signal for the reconnection controller.
type Channel struct {
	conn   *websocket.Conn
	send   chan []byte
	Events chan Envelope
	Closed chan struct{}

	// mu orders Close against concurrent SendEvent calls so a late send
	// during teardown cannot hit a closed channel.
	mu     sync.Mutex
	closed bool
}

// Dial opens a channel and starts its pumps.
func Dial(url string) (*Channel, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialWait}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		Events: make(chan Envelope, sendBuffer),
		Closed: make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()
	return c, nil
}

func (c *Channel) readPump() {
	defer func() {
		c.conn.Close()
		close(c.Closed)
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := DecodeEnvelope(message)
		if err != nil {
			// Malformed frames are skipped, never fatal
			continue
		}
		c.Events <- env
	}
}

func (c *Channel) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// SendEvent encodes and queues an outbound event. Fire-and-forget: when the
// send buffer is full the message is dropped rather than blocking a handler.
// After Close it returns an error instead of panicking.
func (c *Channel) SendEvent(t string, payload any) error {
	b, err := Encode(t, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("channel: closed")
	}
	select {
	case c.send <- b:
	default:
		log.Printf("channel: send buffer full, dropping %s", t)
	}
	return nil
}

// Close tears the connection down. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
