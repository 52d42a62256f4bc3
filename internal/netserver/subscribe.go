package netserver

import "github.com/obsidian-net/classicd/internal/wire"

// Subscribe registers a one-shot listener for the next inbound packet
// with the given id, used by CPE modules that need to intercept a
// single packet out of band (a TwoWayPing reply, a custom block
// permission ack). When alsoHandle is true the packet is still routed
// through its normal handler after being delivered to the channel;
// when false, delivery to the channel is the packet's only handling.
//
// Only one subscription per packet id can be pending at a time; a
// second call before the first fires replaces it.
func (c *Connection) Subscribe(id wire.PacketID, alsoHandle bool) <-chan []byte {
	ch := make(chan []byte, 1)
	c.mu.Lock()
	if c.subs == nil {
		c.subs = make(map[wire.PacketID]chan []byte)
	}
	if c.subsHandle == nil {
		c.subsHandle = make(map[wire.PacketID]bool)
	}
	c.subs[id] = ch
	c.subsHandle[id] = alsoHandle
	c.mu.Unlock()
	return ch
}

func (c *Connection) takeSubscription(id wire.PacketID) (chan []byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	return ch, ok
}

func (c *Connection) subscriptionHandlesUpdate(id wire.PacketID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subsHandle[id]
}
