// Copyright (c) 2025 Neomantra Corp

package mbp

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// ComputeOrderBookHash fingerprints an event's level array exactly as
// spec.md §3 requires: SHA-256 over the big-endian bytes of
// (bid_px, ask_px, bid_sz, ask_sz, bid_ct, ask_ct) for each level in
// index order, serialized as lowercase hex. Two events with identical
// level arrays hash identically (spec.md §8, invariant 1) — the exact
// byte layout is part of the contract (§9, "Order book hash").
func ComputeOrderBookHash(levels []BidAskPair) string {
	h := sha256.New()
	var buf [8]byte
	for _, lv := range levels {
		binary.BigEndian.PutUint64(buf[:], uint64(lv.BidPx))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(lv.AskPx))
		h.Write(buf[:])
		binary.BigEndian.PutUint32(buf[:4], lv.BidSz)
		h.Write(buf[:4])
		binary.BigEndian.PutUint32(buf[:4], lv.AskSz)
		h.Write(buf[:4])
		binary.BigEndian.PutUint32(buf[:4], lv.BidCt)
		h.Write(buf[:4])
		binary.BigEndian.PutUint32(buf[:4], lv.AskCt)
		h.Write(buf[:4])
	}
	return hex.EncodeToString(h.Sum(nil))
}
