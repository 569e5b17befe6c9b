// Copyright (c) 2025 Neomantra Corp

package mbp

// RecordEnvelope is a sum type over the five projected record shapes,
// used to stream heterogeneous batches through a single channel or
// callback without a type hierarchy (spec.md "Design Notes": "prefer a
// sum type/enum over deep class hierarchies for the record shapes").
// Exactly one of the pointer fields is non-nil; Kind says which.
type RecordEnvelope struct {
	Kind  RecordKind
	Mbp1  *Mbp1Msg
	Trade *TradeMsg
	Tbbo  *TbboMsg
	Bbo   *BboMsg
	Ohlcv *OhlcvMsg
}

func EnvelopeMbp1(m Mbp1Msg) RecordEnvelope   { return RecordEnvelope{Kind: RecordKind_Mbp1, Mbp1: &m} }
func EnvelopeTrade(m TradeMsg) RecordEnvelope { return RecordEnvelope{Kind: RecordKind_Trade, Trade: &m} }
func EnvelopeTbbo(m TbboMsg) RecordEnvelope   { return RecordEnvelope{Kind: RecordKind_Tbbo, Tbbo: &m} }
func EnvelopeBbo(m BboMsg) RecordEnvelope     { return RecordEnvelope{Kind: RecordKind_Bbo, Bbo: &m} }
func EnvelopeOhlcv(m OhlcvMsg) RecordEnvelope { return RecordEnvelope{Kind: RecordKind_Ohlcv, Ohlcv: &m} }
