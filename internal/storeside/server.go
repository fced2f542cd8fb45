package storeside

import (
	"time"

	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
)

// Server bundles the three verb implementations behind the TTL
// parameters that govern bucket and match-set lifetime.
type Server struct {
	Indexer *Indexer
	Matcher *Matcher
	Fetcher *Fetcher
}

// NewServer wires the three verbs against a single store connection.
// tIndex is T_idx (day-bucket TTL, 0 disables), tQry is T_qry (criteria
// bundle and match-set TTL), fetchCount/fetchLimit are the FETCH verb's
// batch size and clamp.
func NewServer(store kvstore.Store, tIndex, tQry time.Duration, fetchCount, fetchLimit int64) *Server {
	return &Server{
		Indexer: NewIndexer(store, tIndex),
		Matcher: NewMatcher(store, tQry),
		Fetcher: NewFetcher(store, fetchCount, fetchLimit),
	}
}
