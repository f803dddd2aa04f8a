package tcp

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/mcoot/flipseven-go/internal/model"
)

const (
	// Time allowed to write a line to the peer
	writeWait = 10 * time.Second

	// Buffer size for outgoing lines
	sendBufferSize = 256
)

// Client is one connected lobby member
type Client struct {
	id          model.MemberID
	conn        net.Conn
	send        chan string
	connectedAt time.Time
}

// NewClient creates a new Client for conn
func NewClient(id model.MemberID, conn net.Conn) *Client {
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan string, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Tag returns the J<id> form of the client's member ID
func (c *Client) Tag() string {
	return fmt.Sprintf("J%d", c.id)
}

// writeLoop writes queued lines until the hub closes the queue, then closes
// the connection. Lines queued before the close are still written.
func (c *Client) writeLoop() {
	defer c.conn.Close()

	w := bufio.NewWriter(c.conn)
	for line := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := w.WriteString(line + "\n"); err != nil {
			return
		}
		if len(c.send) == 0 {
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
	_ = w.Flush()
}
