package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLocalMeshChain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eps := NewLocalMesh(3, 4)
	require.Len(t, eps, 3)

	for k, ep := range eps {
		assert.Equal(t, k, ep.Rank())
		assert.Equal(t, 3, ep.Size())
	}

	require.NoError(t, eps[0].SendRow(ctx, Segment{Row: 2, Start: 1, Values: []uint32{0, 1, 1}}))
	seg, err := eps[1].RecvRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), seg.Row)
	assert.Equal(t, []uint32{0, 1, 1}, seg.Values)

	require.NoError(t, eps[2].SendTrace(ctx, Trace{Column: 4, Length: 3, Suffix: []byte("GT")}))
	tr, err := eps[1].RecvTrace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("GT"), tr.Suffix)
}

func TestLocalMeshEnds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eps := NewLocalMesh(2, 1)

	_, err := eps[0].RecvRow(ctx)
	assert.ErrorIs(t, err, ErrNoPeer)
	assert.ErrorIs(t, eps[1].SendRow(ctx, Segment{}), ErrNoPeer)
	assert.ErrorIs(t, eps[0].SendTrace(ctx, Trace{}), ErrNoPeer)
	_, err = eps[1].RecvTrace(ctx)
	assert.ErrorIs(t, err, ErrNoPeer)
}

func TestLocalMeshCloseDrainsThenFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eps := NewLocalMesh(2, 2)

	require.NoError(t, eps[0].SendRow(ctx, Segment{Row: 1, Start: 1, Values: []uint32{1}}))
	require.NoError(t, eps[0].Close())
	require.NoError(t, eps[0].Close())

	_, err := eps[1].RecvRow(ctx)
	require.NoError(t, err, "buffered segment must survive Close")

	_, err = eps[1].RecvRow(ctx)
	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, 0, linkErr.Peer)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLocalMeshRecvHonoursContext(t *testing.T) {
	t.Parallel()
	eps := NewLocalMesh(2, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := eps[1].RecvRow(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFrameCompression(t *testing.T) {
	t.Parallel()
	values := make([]uint32, 8192)
	for i := range values {
		values[i] = uint32(i / 7)
	}
	seg := Segment{Row: 500, Start: 1, Values: values}

	var plain, packed bytes.Buffer
	require.NoError(t, WriteFrame(&plain, KindSegment, EncodeSegment(seg), false))
	require.NoError(t, WriteFrame(&packed, KindSegment, EncodeSegment(seg), true))
	assert.Less(t, packed.Len(), plain.Len())

	kind, payload, err := ReadFrame(&packed)
	require.NoError(t, err)
	assert.Equal(t, KindSegment, kind)
	got, err := DecodeSegment(payload)
	require.NoError(t, err)
	assert.Equal(t, seg, got)
}

func TestReadFrameTruncated(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, KindTrace, EncodeTrace(Trace{Column: 1, Suffix: []byte("ACGT")}), false))
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])

	_, _, err := ReadFrame(truncated)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	t.Parallel()
	_, err := DecodeSegment([]byte{1, 2, 3})
	assert.Error(t, err)

	bad := EncodeSegment(Segment{Values: []uint32{1, 2}})
	_, err = DecodeSegment(bad[:len(bad)-4])
	assert.Error(t, err)

	_, err = DecodeTrace([]byte{0})
	assert.Error(t, err)
}

func freeAddrs(t *testing.T, n int) []string {
	t.Helper()
	addrs := make([]string, n)
	for i := range addrs {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addrs[i] = ln.Addr().String()
		require.NoError(t, ln.Close())
	}
	return addrs
}

func TestTCPChain(t *testing.T) {
	peers := freeAddrs(t, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eps := make([]Endpoint, len(peers))
	g, gctx := errgroup.WithContext(ctx)
	for k := range peers {
		g.Go(func() error {
			ep, err := DialTCP(gctx, TCPConfig{Rank: k, Peers: peers, Compress: true, RetryInterval: 10 * time.Millisecond})
			eps[k] = ep
			return err
		})
	}
	require.NoError(t, g.Wait())
	defer func() {
		for _, ep := range eps {
			_ = ep.Close()
		}
	}()

	big := make([]uint32, 5000)
	for i := range big {
		big[i] = uint32(i % 3)
	}
	require.NoError(t, eps[0].SendRow(ctx, Segment{Row: 3, Start: 1, Values: big}))
	seg, err := eps[1].RecvRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, big, seg.Values)

	require.NoError(t, eps[1].SendRow(ctx, seg))
	_, err = eps[2].RecvRow(ctx)
	require.NoError(t, err)

	require.NoError(t, eps[2].SendTrace(ctx, Trace{Column: 7, Length: 2, Suffix: []byte("CA")}))
	tr, err := eps[1].RecvTrace(ctx)
	require.NoError(t, err)
	assert.Equal(t, Trace{Column: 7, Length: 2, Suffix: []byte("CA")}, tr)
}

func TestTCPPeerLossSurfacesAsLinkError(t *testing.T) {
	peers := freeAddrs(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eps := make([]Endpoint, 2)
	g, gctx := errgroup.WithContext(ctx)
	for k := range peers {
		g.Go(func() error {
			ep, err := DialTCP(gctx, TCPConfig{Rank: k, Peers: peers, RetryInterval: 10 * time.Millisecond})
			eps[k] = ep
			return err
		})
	}
	require.NoError(t, g.Wait())
	defer eps[1].Close()

	require.NoError(t, eps[0].Close())
	_, err := eps[1].RecvRow(ctx)
	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "recv row", linkErr.Op)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDialTCPRejectsBadRank(t *testing.T) {
	t.Parallel()
	_, err := DialTCP(context.Background(), TCPConfig{Rank: 2, Peers: []string{"a", "b"}})
	assert.Error(t, err)
}
