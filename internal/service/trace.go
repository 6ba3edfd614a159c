package service

import (
	"context"
	"fmt"

	"flow-ledger/pkg/apperror"
)

// maxTraceResults is the hard ceiling on a single flow trace. Once the
// result holds this many ids, expansion stops and the trace is returned
// truncated; truncation is not an error.
const maxTraceResults = 100

// traceFrame is one depth level of the traversal: a party's sent
// transactions and a cursor into them.
type traceFrame struct {
	party string
	sent  []string
	next  int
}

// TraceFlow reconstructs the chain of transactions reachable from root by
// repeatedly following "root sent a transaction, continue from its
// receiver". Depth-first: each sent transaction's subtree is expanded
// before its next sibling.
//
// Three guards bound the walk:
//   - ids already collected are skipped and never re-expanded, so a cycle
//     of previously seen ids terminates;
//   - a transaction whose receiver is the current party is collected but
//     not descended into (next-hop self-loop guard only — longer cycles of
//     distinct ids keep consuming slots);
//   - the result is capped at maxTraceResults, regardless of graph size.
//
// The frontier is an explicit frame stack, not native recursion, so stack
// depth is bounded by the cap rather than the runtime.
func (s *LedgerServiceImpl) TraceFlow(ctx context.Context, root string) ([]string, error) {
	seen := make(map[string]struct{})
	result := make([]string, 0)

	sent, err := s.SentBy(ctx, root)
	if err != nil {
		return nil, err
	}
	stack := []traceFrame{{party: root, sent: sent}}

	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		if frame.next >= len(frame.sent) {
			stack = stack[:len(stack)-1]
			continue
		}

		id := frame.sent[frame.next]
		frame.next++

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
		if len(result) == maxTraceResults {
			break
		}

		txn, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get transaction %s: %w", id, err))
		}
		if txn.Receiver == frame.party {
			// Self-loop: record the transaction but do not follow the
			// edge back into the same party.
			continue
		}

		nextSent, err := s.SentBy(ctx, txn.Receiver)
		if err != nil {
			return nil, err
		}
		stack = append(stack, traceFrame{party: txn.Receiver, sent: nextSent})
	}

	s.log.Debug().
		Str("root", root).
		Int("collected", len(result)).
		Msg("flow trace completed")

	return result, nil
}
