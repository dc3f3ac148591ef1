// Package transport carries IPC frames over stream sockets.
//
// A frame is a little-endian uint32 payload length followed by that
// many bytes of payload. The framing knows nothing about the
// payload's contents.
package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// MaxFrameSize is the largest payload a frame may carry.
const MaxFrameSize = 64 << 20

// ErrFrameTooLarge is returned when reading or writing a frame whose
// payload exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame too large")

// Conn is a framed IPC connection.
//
// ReadFrame must not be called concurrently with itself. WriteFrame
// may be called from multiple goroutines.
type Conn struct {
	conn net.Conn
	rd   *bufio.Reader

	writeMu sync.Mutex
	wbuf    []byte
}

// New returns a Conn that frames messages over c.
func New(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		rd:   bufio.NewReader(c),
	}
}

// ReadFrame reads one frame and returns its payload.
func (c *Conn) ReadFrame() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(c.rd, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	ret := make([]byte, n)
	if _, err := io.ReadFull(c.rd, ret); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return ret, nil
}

// WriteFrame writes bs as a single frame.
func (c *Conn) WriteFrame(bs []byte) error {
	if len(bs) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(bs))
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.wbuf = binary.LittleEndian.AppendUint32(c.wbuf[:0], uint32(len(bs)))
	c.wbuf = append(c.wbuf, bs...)
	_, err := c.conn.Write(c.wbuf)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the address of the connection's peer.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
