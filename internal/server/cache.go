package server

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/zeebo/blake3"
)

// resultCache memoises responses by a digest of everything that determines
// them. Cost is the response size in bytes.
type resultCache struct {
	c    *ristretto.Cache[string, *Response]
	once sync.Once
}

func newResultCache(maxBytes int64) (*resultCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Response]{
		NumCounters: max(maxBytes/64, 1000),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialise result cache: %w", err)
	}
	return &resultCache{c: c}, nil
}

// cacheKey hashes the request fields that affect the result. Lengths are
// written before variable fields so distinct requests cannot collide by
// concatenation.
func cacheKey(req *Request) string {
	h := blake3.New()
	var buf [8]byte
	field := func(s string) {
		binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(s))
	}
	field(req.Strategy)
	binary.BigEndian.PutUint64(buf[:], uint64(req.Workers)<<32|uint64(uint32(req.Processes)))
	_, _ = h.Write(buf[:])
	field(req.Trace)
	field(req.Alphabet)
	field(req.A)
	field(req.B)
	return string(h.Sum(nil))
}

func (rc *resultCache) get(key string) (*Response, bool) {
	if rc == nil {
		return nil, false
	}
	return rc.c.Get(key)
}

func (rc *resultCache) put(key string, resp *Response) {
	if rc == nil {
		return
	}
	rc.c.Set(key, resp, int64(len(resp.LCS)+128))
}

func (rc *resultCache) close() {
	if rc != nil {
		rc.once.Do(rc.c.Close)
	}
}
