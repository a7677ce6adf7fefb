package credential

import (
	"context"
	"sort"
	"time"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/ledger"
)

// Selector ranks the configured Pool by current ledger state to decide
// which credential a fetch attempt should use next.
type Selector struct {
	pool       *Pool
	ledger     ledger.Ledger
	dailyLimit int64
	maxErrors  int64
	loc        *time.Location
}

// NewSelector builds a Selector over pool, backed by led, enforcing the
// given per-credential daily usage and consecutive-error ceilings. loc
// is the zone DayKey rolls over in, and backs the retry-after hint on
// NoCredentialsAvailable.
func NewSelector(pool *Pool, led ledger.Ledger, dailyLimit, maxErrors int64, loc *time.Location) *Selector {
	return &Selector{pool: pool, ledger: led, dailyLimit: dailyLimit, maxErrors: maxErrors, loc: loc}
}

// retryAfterSeconds returns the whole seconds until the next local
// midnight in s.loc, the point at which daily usage counters reset.
func (s *Selector) retryAfterSeconds() int {
	return int(NextMidnight(time.Now(), s.loc).Sub(time.Now()).Seconds())
}

// Candidate pairs a credential with its current ledger counters, for
// callers that want visibility into why a credential ranked where it did.
type Candidate struct {
	Credential Credential
	Usage      int64
	Errors     int64
}

// SelectAll returns every credential still eligible for day, ordered
// least-used first with priority as the tie-break. An empty Pool or a
// pool with no eligible credential returns NoCredentialsAvailable.
func (s *Selector) SelectAll(ctx context.Context, day string) ([]Candidate, error) {
	ids := s.pool.IDs()
	if len(ids) == 0 {
		return nil, &apierrors.NoCredentialsAvailable{RetryAfterSeconds: s.retryAfterSeconds()}
	}

	snapshot, err := s.ledger.ListAvailable(ctx, ids, day)
	if err != nil {
		return nil, &apierrors.LedgerUnavailable{Cause: err}
	}

	byID := make(map[string]ledger.CredentialUsage, len(snapshot))
	for _, row := range snapshot {
		byID[row.CredentialID] = row
	}

	candidates := make([]Candidate, 0, len(ids))
	for _, cred := range s.pool.All() {
		row := byID[cred.ID]
		if row.Usage >= s.dailyLimit || row.Errors >= s.maxErrors {
			continue
		}
		candidates = append(candidates, Candidate{Credential: cred, Usage: row.Usage, Errors: row.Errors})
	}

	if len(candidates) == 0 {
		return nil, &apierrors.NoCredentialsAvailable{RetryAfterSeconds: s.retryAfterSeconds()}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Usage != candidates[j].Usage {
			return candidates[i].Usage < candidates[j].Usage
		}
		return candidates[i].Credential.Priority < candidates[j].Credential.Priority
	})

	return candidates, nil
}
