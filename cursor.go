// Copyright (c) 2025 Neomantra Corp

package mbp

// RetrieveParams is the immutable request descriptor for a projection
// query (spec.md §6). Unlike the original design it carries no mutable
// cursor state; see Cursor for that (Design Notes §9, "Mutable cursor
// inside RetrieveParams").
type RetrieveParams struct {
	Symbols []string
	StartTs int64
	EndTs   int64
	Schema  Schema
}

// Validate checks the request shape before any query executes
// (spec.md §7, "Unknown schemas are rejected before any query
// executes").
func (p *RetrieveParams) Validate() error {
	if err := p.Schema.validate(); err != nil {
		return err
	}
	if p.EndTs < p.StartTs {
		return invalidRangeError(p.StartTs, p.EndTs)
	}
	return nil
}

// Cursor is the mutable batch-planning state threaded through a
// dispatch loop. It is kept apart from the request rather than mutated
// in place on it, and projectors do not return it: Dispatch computes
// the next Cursor with Advance only after a batch succeeds, so a failed
// batch leaves the caller free to retry with the same Cursor (spec.md
// §5, "Cancellation & timeouts").
type Cursor struct {
	Start      int64
	End        int64
	IntervalNs int64
}

// NewCursor builds the initial planner state for a validated request.
func NewCursor(p RetrieveParams) Cursor {
	return Cursor{
		Start:      p.StartTs,
		End:        p.EndTs,
		IntervalNs: p.Schema.IntervalNs(),
	}
}

// Done reports whether the cursor has advanced past the end of the
// requested range; no further batches should be issued once true
// (spec.md §4.B, "Termination").
func (c Cursor) Done() bool {
	return c.Start > c.End
}

func alignDown(ts, intervalNs int64) int64 {
	if intervalNs <= 1 {
		return ts
	}
	mod := ts % intervalNs
	if mod < 0 {
		mod += intervalNs
	}
	return ts - mod
}

// NextWindow computes the next batch's upper edge and returns a new
// Cursor with Start aligned down to the interval boundary, following
// spec.md §4.B exactly:
//  1. align the cursor down to the interval;
//  2. propose start+batchSizeNs as the window end;
//  3. cap to the interval-aligned end_ts if the proposal overruns it.
//
// final reports whether the proposed window was capped by the
// requested range rather than by batchSizeNs — i.e. this is the last
// batch a dispatch loop should issue. Capping on End rather than
// batchSizeNs can otherwise recompute the same windowEnd forever for a
// windowed schema whose final bucket doesn't land exactly on End, so
// callers must stop after a final batch rather than looping Advance
// again (Design Notes §9, "Schema-dependent cursor advance").
func (c Cursor) NextWindow(batchSizeNs int64) (aligned Cursor, windowEnd int64, final bool) {
	aligned = c
	aligned.Start = alignDown(c.Start, c.IntervalNs)

	tentative := aligned.Start + batchSizeNs
	if tentative > aligned.End {
		return aligned, alignDown(aligned.End, aligned.IntervalNs), true
	}
	return aligned, tentative, false
}

// AdvancePointInTime returns the cursor for the next batch of a
// point-in-time schema (mbp-1, trade, tbbo): the next window starts
// immediately after this one's upper edge.
func (c Cursor) AdvancePointInTime(windowEnd int64) Cursor {
	c.Start = windowEnd + 1
	return c
}

// AdvanceWindowed returns the cursor for the next batch of a windowed
// schema (bbo-*, ohlcv-*): the aligned upper edge of this window is the
// lower edge of the next one.
func (c Cursor) AdvanceWindowed(windowEnd int64) Cursor {
	c.Start = windowEnd
	return c
}

// Advance dispatches to AdvancePointInTime or AdvanceWindowed based on
// the schema, per the rule in spec.md §4.B.
func (c Cursor) Advance(schema Schema, windowEnd int64) Cursor {
	if schema.IsWindowed() {
		return c.AdvanceWindowed(windowEnd)
	}
	return c.AdvancePointInTime(windowEnd)
}
