/*
cascade.go - Billing-topic deletion cascade

PURPOSE:
  When a billing topic is deleted, time entries that were written off
  through its line items may be left with a stale is_written_off flag.
  This cascade clears the flag, but only for entries that no other
  still-waived line item references.

RE-QUERY, DON'T ASSUME:
  In normal operation an entry is waived through exactly one line item
  at a time, but step 3 re-queries live reference counts after the
  deleting write rather than inferring "no remaining references" from
  pre-deletion state. Deletion order and concurrent topic edits can
  otherwise leave a stale flag set (or clear one while another waive
  reference still exists).

PRECONDITIONS:
  The caller has already verified the parent service description is
  DRAFT and runs this inside a transaction; the schema-level FK cascade
  removes the topic's line items with the topic.

SEE ALSO:
  - api/handlers.go: DELETE billing topic endpoint
  - store/sqlite: WaivedEntryIDs / CountWaiveReferences
*/
package billing

import (
	"context"
)

// CascadeResult reports which entries had their write-off flag cleared.
type CascadeResult struct {
	ClearedEntryIDs []string
}

// DeleteTopicWithCascade deletes a billing topic and clears the
// write-off flag of every entry it had waived that no other line item
// still waives. Must run inside a transaction so the deletion and the
// flag updates are atomic.
func DeleteTopicWithCascade(ctx context.Context, s Store, topicID string) (CascadeResult, error) {
	waived, err := s.WaivedEntryIDs(ctx, topicID)
	if err != nil {
		return CascadeResult{}, err
	}

	if err := s.DeleteBillingTopic(ctx, topicID); err != nil {
		return CascadeResult{}, err
	}

	var result CascadeResult
	seen := make(map[string]bool, len(waived))
	for _, entryID := range waived {
		if seen[entryID] {
			continue
		}
		seen[entryID] = true

		// Live count, post-deletion: the topic's own line items are
		// already gone, so any remaining reference belongs to another
		// topic.
		refs, err := s.CountWaiveReferences(ctx, entryID)
		if err != nil {
			return CascadeResult{}, err
		}
		if refs > 0 {
			continue
		}

		if err := s.SetWriteOff(ctx, entryID, false); err != nil {
			return CascadeResult{}, err
		}
		result.ClearedEntryIDs = append(result.ClearedEntryIDs, entryID)
	}

	return result, nil
}
