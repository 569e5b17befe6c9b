// Copyright (c) 2025 Neomantra Corp
//
// Event and record shapes for the MBP-1 store, normalized the way
// DataBento's DBN encodes market-by-price-1 data:
//   https://databento.com/docs/knowledge-base/new-users/fields-by-schema/
//
// NOTE: JSON field metadata does not round-trip 1:1 with the row
// decoder; ts_recv/ts_event are widened to uint64 in Go but stored as
// BIGINT in Postgres.
//

package mbp

import (
	"github.com/valyala/fastjson"
	"github.com/valyala/fastjson/fastfloat"
)

///////////////////////////////////////////////////////////////////////////////

// RecordHeader is the common envelope every projected record carries
// (spec.md §6).
type RecordHeader struct {
	InstrumentID uint32 `json:"instrument_id" csv:"instrument_id"`
	TsEvent      uint64 `json:"ts_event" csv:"ts_event"`
}

///////////////////////////////////////////////////////////////////////////////

// BidAskPair is one depth level of the order book (spec.md §3, "L").
type BidAskPair struct {
	BidPx int64  `json:"bid_px" csv:"bid_px"`
	AskPx int64  `json:"ask_px" csv:"ask_px"`
	BidSz uint32 `json:"bid_sz" csv:"bid_sz"`
	AskSz uint32 `json:"ask_sz" csv:"ask_sz"`
	BidCt uint32 `json:"bid_ct" csv:"bid_ct"`
	AskCt uint32 `json:"ask_ct" csv:"ask_ct"`
}

func fillBidAskPairJson(val *fastjson.Value, prefix string) BidAskPair {
	return BidAskPair{
		BidPx: fastjson_GetInt64FromString(val, prefix+"bid_px"),
		AskPx: fastjson_GetInt64FromString(val, prefix+"ask_px"),
		BidSz: uint32(val.GetUint(prefix + "bid_sz")),
		AskSz: uint32(val.GetUint(prefix + "ask_sz")),
		BidCt: uint32(val.GetUint(prefix + "bid_ct")),
		AskCt: uint32(val.GetUint(prefix + "ask_ct")),
	}
}

// Decodes a fastjson.Value string as an int64.
func fastjson_GetInt64FromString(val *fastjson.Value, key string) int64 {
	return fastfloat.ParseInt64BestEffort(string(val.GetStringBytes(key)))
}

// Decodes a fastjson.Value string as an uint64.
func fastjson_GetUint64FromString(val *fastjson.Value, key string) uint64 {
	return fastfloat.ParseUint64BestEffort(string(val.GetStringBytes(key)))
}

///////////////////////////////////////////////////////////////////////////////

// Event is the insert-path representation of an MBP-1 row (spec.md §3).
// Unlike the projected record types, it carries its full depth-N level
// array rather than just depth 0 — the insert path persists every
// level, while projectors only ever select depth 0 back out.
type Event struct {
	InstrumentID uint32
	TsEvent      int64
	TsRecv       int64
	TsInDelta    int32
	Price        int64
	Size         uint32
	Action       Action
	Side         Side
	Flags        uint8
	Sequence     uint32
	Levels       []BidAskPair // index is depth
}

// FillJson populates an Event from a bulk-ingest JSON record shaped
// like the teacher's Mbp0/Ohlcv Fill_Json methods: top-level scalar
// fields plus a "levels" array of depth-ordered bid/ask objects.
func (e *Event) FillJson(val *fastjson.Value) error {
	e.InstrumentID = uint32(val.GetUint("instrument_id"))
	e.TsEvent = fastjson_GetInt64FromString(val, "ts_event")
	e.TsRecv = fastjson_GetInt64FromString(val, "ts_recv")
	e.TsInDelta = int32(val.GetInt("ts_in_delta"))
	e.Price = fastjson_GetInt64FromString(val, "price")
	e.Size = uint32(val.GetUint("size"))
	e.Action = Action(val.GetStringBytes("action")[0])
	e.Side = Side(val.GetStringBytes("side")[0])
	e.Flags = uint8(val.GetUint("flags"))
	e.Sequence = uint32(val.GetUint("sequence"))

	levels := val.GetArray("levels")
	e.Levels = make([]BidAskPair, len(levels))
	for i, lv := range levels {
		e.Levels[i] = fillBidAskPairJson(lv, "")
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// Mbp1Msg is a full MBP-1 event projection: header, event fields, and
// the depth-0 level (spec.md §6).
type Mbp1Msg struct {
	Header     RecordHeader `json:"hd" csv:"hd"`
	Price      int64        `json:"price" csv:"price"`
	Size       uint32       `json:"size" csv:"size"`
	Action     Action       `json:"action" csv:"action"`
	Side       Side         `json:"side" csv:"side"`
	Depth      uint8        `json:"depth" csv:"depth"`
	Flags      uint8        `json:"flags" csv:"flags"`
	TsRecv     uint64       `json:"ts_recv" csv:"ts_recv"`
	TsInDelta  int32        `json:"ts_in_delta" csv:"ts_in_delta"`
	Sequence   uint32       `json:"sequence" csv:"sequence"`
	Levels     [1]BidAskPair `json:"levels" csv:"levels"`
}

func (*Mbp1Msg) RecordKind() RecordKind { return RecordKind_Mbp1 }

///////////////////////////////////////////////////////////////////////////////

// TradeMsg is an MBP-1 event restricted to action='T', without levels
// (spec.md §4.D.2).
type TradeMsg struct {
	Header    RecordHeader `json:"hd" csv:"hd"`
	Price     int64        `json:"price" csv:"price"`
	Size      uint32       `json:"size" csv:"size"`
	Action    Action       `json:"action" csv:"action"`
	Side      Side         `json:"side" csv:"side"`
	Depth     uint8        `json:"depth" csv:"depth"`
	Flags     uint8        `json:"flags" csv:"flags"`
	TsRecv    uint64       `json:"ts_recv" csv:"ts_recv"`
	TsInDelta int32        `json:"ts_in_delta" csv:"ts_in_delta"`
	Sequence  uint32       `json:"sequence" csv:"sequence"`
}

func (*TradeMsg) RecordKind() RecordKind { return RecordKind_Trade }

///////////////////////////////////////////////////////////////////////////////

// TbboMsg is a trade paired with the top-of-book level observed at the
// same event (spec.md §4.D.2). Field-for-field identical to Mbp1Msg;
// the distinction is purely in the WHERE clause the projector applies.
type TbboMsg struct {
	Header    RecordHeader  `json:"hd" csv:"hd"`
	Price     int64         `json:"price" csv:"price"`
	Size      uint32        `json:"size" csv:"size"`
	Action    Action        `json:"action" csv:"action"`
	Side      Side          `json:"side" csv:"side"`
	Depth     uint8         `json:"depth" csv:"depth"`
	Flags     uint8         `json:"flags" csv:"flags"`
	TsRecv    uint64        `json:"ts_recv" csv:"ts_recv"`
	TsInDelta int32         `json:"ts_in_delta" csv:"ts_in_delta"`
	Sequence  uint32        `json:"sequence" csv:"sequence"`
	Levels    [1]BidAskPair `json:"levels" csv:"levels"`
}

func (*TbboMsg) RecordKind() RecordKind { return RecordKind_Tbbo }

///////////////////////////////////////////////////////////////////////////////

// BboMsg is one row per (instrument, window): the latest observed
// quote in the window plus the LOCF-carried last trade (spec.md
// §4.D.4). TsEvent/Price/Size are zero and Side is Side_None when no
// trade has yet been observed for the instrument (leading buckets,
// spec.md "Edge cases").
type BboMsg struct {
	Header   RecordHeader  `json:"hd" csv:"hd"`
	Price    int64         `json:"price" csv:"price"`
	Size     uint32        `json:"size" csv:"size"`
	Side     Side          `json:"side" csv:"side"`
	Flags    uint8         `json:"flags" csv:"flags"`
	TsRecv   uint64        `json:"ts_recv" csv:"ts_recv"`
	Sequence uint32        `json:"sequence" csv:"sequence"`
	Levels   [1]BidAskPair `json:"levels" csv:"levels"`
}

func (*BboMsg) RecordKind() RecordKind { return RecordKind_Bbo }

///////////////////////////////////////////////////////////////////////////////

// OhlcvMsg is one open/high/low/close/volume bar per (instrument,
// window) (spec.md §4.D.3).
type OhlcvMsg struct {
	Header RecordHeader `json:"hd" csv:"hd"`
	Open   int64        `json:"open" csv:"open"`
	High   int64        `json:"high" csv:"high"`
	Low    int64        `json:"low" csv:"low"`
	Close  int64        `json:"close" csv:"close"`
	Volume uint64       `json:"volume" csv:"volume"`
}

func (*OhlcvMsg) RecordKind() RecordKind { return RecordKind_Ohlcv }
