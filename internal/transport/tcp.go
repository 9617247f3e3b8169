package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TCPConfig describes one rank of a TCP chain.
type TCPConfig struct {
	// Rank is this process's position in Peers.
	Rank int
	// Peers lists the listen address of every rank, in rank order.
	Peers []string
	// RetryInterval is the pause between dial attempts to rank+1.
	RetryInterval time.Duration
	// Compress enables zstd compression of large frames.
	Compress bool
	Logger   zerolog.Logger
}

type tcpEndpoint struct {
	rank, size int
	compress   bool

	listener net.Listener
	up       *tcpConn // from rank-1: segments in, traces out
	down     *tcpConn // to rank+1: segments out, traces in

	closeOnce sync.Once
}

type tcpConn struct {
	conn net.Conn
	r    *bufio.Reader
	wmu  sync.Mutex
	w    *bufio.Writer
}

func newTCPConn(c net.Conn) *tcpConn {
	return &tcpConn{conn: c, r: bufio.NewReaderSize(c, 64<<10), w: bufio.NewWriterSize(c, 64<<10)}
}

// DialTCP joins the chain described by cfg. It listens for rank-1 and dials
// rank+1 concurrently, retrying the dial until ctx is done, and returns once
// both neighbours are connected.
func DialTCP(ctx context.Context, cfg TCPConfig) (Endpoint, error) {
	size := len(cfg.Peers)
	if cfg.Rank < 0 || cfg.Rank >= size {
		return nil, fmt.Errorf("transport: rank %d outside chain of %d peers", cfg.Rank, size)
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 200 * time.Millisecond
	}
	ep := &tcpEndpoint{rank: cfg.Rank, size: size, compress: cfg.Compress}

	if cfg.Rank > 0 {
		ln, err := net.Listen("tcp", cfg.Peers[cfg.Rank])
		if err != nil {
			return nil, fmt.Errorf("transport: listen %s: %w", cfg.Peers[cfg.Rank], err)
		}
		ep.listener = ln
	}

	g, gctx := errgroup.WithContext(ctx)
	if ep.listener != nil {
		g.Go(func() error {
			c, err := acceptPeer(gctx, ep.listener, cfg.Rank-1)
			if err != nil {
				return err
			}
			ep.up = c
			cfg.Logger.Debug().Int("rank", cfg.Rank).Str("peer", c.conn.RemoteAddr().String()).Msg("accepted upstream rank")
			return nil
		})
	}
	if cfg.Rank < size-1 {
		g.Go(func() error {
			c, err := dialPeer(gctx, cfg.Peers[cfg.Rank+1], cfg.Rank, cfg.RetryInterval)
			if err != nil {
				return err
			}
			ep.down = c
			cfg.Logger.Debug().Int("rank", cfg.Rank).Str("peer", cfg.Peers[cfg.Rank+1]).Msg("connected downstream rank")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = ep.Close()
		return nil, err
	}
	return ep, nil
}

func acceptPeer(ctx context.Context, ln net.Listener, want int) (*tcpConn, error) {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	c, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, &LinkError{Op: "accept", Peer: want, Err: ctx.Err()}
		}
		return nil, &LinkError{Op: "accept", Peer: want, Err: err}
	}
	tc := newTCPConn(c)
	kind, payload, err := ReadFrame(tc.r)
	if err != nil {
		_ = c.Close()
		return nil, &LinkError{Op: "handshake", Peer: want, Err: err}
	}
	if kind != KindHello || len(payload) != 4 || int(binary.LittleEndian.Uint32(payload)) != want {
		_ = c.Close()
		return nil, &LinkError{Op: "handshake", Peer: want, Err: errors.New("unexpected peer greeting")}
	}
	return tc, nil
}

func dialPeer(ctx context.Context, addr string, self int, retry time.Duration) (*tcpConn, error) {
	var d net.Dialer
	for {
		c, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			tc := newTCPConn(c)
			var hello [4]byte
			binary.LittleEndian.PutUint32(hello[:], uint32(self))
			if err := tc.write(KindHello, hello[:], false); err != nil {
				_ = c.Close()
				return nil, &LinkError{Op: "handshake", Peer: self + 1, Err: err}
			}
			return tc, nil
		}
		select {
		case <-ctx.Done():
			return nil, &LinkError{Op: "dial", Peer: self + 1, Err: errors.Join(ctx.Err(), err)}
		case <-time.After(retry):
		}
	}
}

func (c *tcpConn) write(kind Kind, payload []byte, compress bool) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := WriteFrame(c.w, kind, payload, compress); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *tcpConn) read(ctx context.Context, want Kind) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetReadDeadline(time.Unix(1, 0)) })
	defer stop()

	kind, payload, err := ReadFrame(c.r)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if kind != want {
		return nil, fmt.Errorf("transport: expected frame kind %d, got %d", want, kind)
	}
	return payload, nil
}

func (e *tcpEndpoint) Rank() int { return e.rank }
func (e *tcpEndpoint) Size() int { return e.size }

func (e *tcpEndpoint) SendRow(ctx context.Context, seg Segment) error {
	if e.down == nil {
		return &LinkError{Op: "send row", Peer: e.rank + 1, Err: ErrNoPeer}
	}
	if err := ctx.Err(); err != nil {
		return &LinkError{Op: "send row", Peer: e.rank + 1, Err: err}
	}
	if err := e.down.write(KindSegment, EncodeSegment(seg), e.compress); err != nil {
		return &LinkError{Op: "send row", Peer: e.rank + 1, Err: err}
	}
	return nil
}

func (e *tcpEndpoint) RecvRow(ctx context.Context) (Segment, error) {
	if e.up == nil {
		return Segment{}, &LinkError{Op: "recv row", Peer: e.rank - 1, Err: ErrNoPeer}
	}
	payload, err := e.up.read(ctx, KindSegment)
	if err != nil {
		return Segment{}, &LinkError{Op: "recv row", Peer: e.rank - 1, Err: err}
	}
	seg, err := DecodeSegment(payload)
	if err != nil {
		return Segment{}, &LinkError{Op: "recv row", Peer: e.rank - 1, Err: err}
	}
	return seg, nil
}

func (e *tcpEndpoint) SendTrace(ctx context.Context, tr Trace) error {
	if e.up == nil {
		return &LinkError{Op: "send trace", Peer: e.rank - 1, Err: ErrNoPeer}
	}
	if err := ctx.Err(); err != nil {
		return &LinkError{Op: "send trace", Peer: e.rank - 1, Err: err}
	}
	if err := e.up.write(KindTrace, EncodeTrace(tr), e.compress); err != nil {
		return &LinkError{Op: "send trace", Peer: e.rank - 1, Err: err}
	}
	return nil
}

func (e *tcpEndpoint) RecvTrace(ctx context.Context) (Trace, error) {
	if e.down == nil {
		return Trace{}, &LinkError{Op: "recv trace", Peer: e.rank + 1, Err: ErrNoPeer}
	}
	payload, err := e.down.read(ctx, KindTrace)
	if err != nil {
		return Trace{}, &LinkError{Op: "recv trace", Peer: e.rank + 1, Err: err}
	}
	tr, err := DecodeTrace(payload)
	if err != nil {
		return Trace{}, &LinkError{Op: "recv trace", Peer: e.rank + 1, Err: err}
	}
	return tr, nil
}

func (e *tcpEndpoint) Close() error {
	var errs []error
	e.closeOnce.Do(func() {
		if e.listener != nil {
			errs = append(errs, ignoreClosed(e.listener.Close()))
		}
		if e.up != nil {
			errs = append(errs, ignoreClosed(e.up.conn.Close()))
		}
		if e.down != nil {
			errs = append(errs, ignoreClosed(e.down.conn.Close()))
		}
	})
	return errors.Join(errs...)
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
