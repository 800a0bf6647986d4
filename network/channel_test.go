package network

import (
	"sync"
	"testing"
)

func TestChannelSendAfterClose(t *testing.T) {
	c := &Channel{send: make(chan []byte, 4)}

	c.Close()
	c.Close() // idempotent

	if err := c.SendEvent(MsgLeaveRoom, nil); err == nil {
		t.Fatalf("send accepted after close")
	}
}

func TestChannelCloseRacesSend(t *testing.T) {
	c := &Channel{send: make(chan []byte, 4)}

	// A handler issuing one last send while teardown runs must not panic.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.SendEvent(MsgPosition, nil)
		}
	}()
	go func() {
		defer wg.Done()
		c.Close()
	}()
	wg.Wait()
}
