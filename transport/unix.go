package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"go.uber.org/zap"
)

// Dial connects to the server listening on the unix socket at path.
func Dial(ctx context.Context, path string) (*Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ListenOptions configures a Listener.
type ListenOptions struct {
	// SameUser, if true, makes the Listener reject peers running as
	// a different user than the current process.
	SameUser bool
	// Logger receives logs about rejected peers. If nil, logging is
	// disabled.
	Logger *zap.Logger
}

// Listener accepts framed connections on a unix socket.
type Listener struct {
	l    *net.UnixListener
	path string
	opts ListenOptions
	uid  int
}

// Listen listens on the unix socket at path.
//
// If a stale socket exists at path, it is removed first. Any other
// kind of file at path is an error.
func Listen(path string, opts *ListenOptions) (*Listener, error) {
	if opts == nil {
		opts = &ListenOptions{}
	}
	if opts.SameUser && !peerCredsSupported {
		return nil, fmt.Errorf("peer credential checks are not supported on this platform: %w", errors.ErrUnsupported)
	}
	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode().Type() != fs.ModeSocket {
			return nil, fmt.Errorf("%s exists and is not a socket", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing stale socket: %w", err)
		}
	}
	l, err := net.ListenUnix("unix", &net.UnixAddr{Net: "unix", Name: path})
	if err != nil {
		return nil, err
	}
	ret := &Listener{
		l:    l,
		path: path,
		opts: *opts,
		uid:  os.Getuid(),
	}
	if ret.opts.Logger == nil {
		ret.opts.Logger = zap.NewNop()
	}
	return ret, nil
}

// Accept waits for and returns the next acceptable connection.
//
// When the Listener checks peer credentials, rejected peers are
// disconnected and Accept keeps waiting.
func (l *Listener) Accept() (*Conn, error) {
	for {
		c, err := l.l.AcceptUnix()
		if err != nil {
			return nil, err
		}
		if l.opts.SameUser {
			uid, err := peerUID(c)
			if err != nil {
				l.opts.Logger.Warn("reading peer credentials", zap.Error(err))
				c.Close()
				continue
			}
			if uid != l.uid {
				l.opts.Logger.Warn("rejected peer", zap.Int("peer_uid", uid), zap.Int("uid", l.uid))
				c.Close()
				continue
			}
		}
		return New(c), nil
	}
}

// Close stops listening and removes the socket file.
func (l *Listener) Close() error {
	// UnixListener unlinks its socket by default.
	return l.l.Close()
}

// Path returns the filesystem path of the listening socket.
func (l *Listener) Path() string { return l.path }
