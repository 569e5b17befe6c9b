// Copyright (c) 2025 Neomantra Corp

package mbp

// SymbolMap is a point-in-time ticker<->instrument_id mapping, built up
// by a projector as it observes rows from the instrument join
// (spec.md §4.F, "symbol_map is the set of (ticker, instrument_id)
// pairs observed"). Adapted from the teacher's PitSymbolMap, trimmed to
// the bidirectional lookup this store actually needs — no interval
// handling, since every row already carries its own instrument_id.
type SymbolMap struct {
	byID     map[uint32]string
	byTicker map[string]uint32
}

// NewSymbolMap returns an empty SymbolMap.
func NewSymbolMap() *SymbolMap {
	return &SymbolMap{
		byID:     make(map[uint32]string),
		byTicker: make(map[string]uint32),
	}
}

// AddInstrument records an observed (ticker, instrument_id) pair.
func (m *SymbolMap) AddInstrument(ticker string, instrumentID uint32) {
	m.byID[instrumentID] = ticker
	m.byTicker[ticker] = instrumentID
}

// Ticker returns the ticker for instrumentID, or "" if never observed.
func (m *SymbolMap) Ticker(instrumentID uint32) string {
	return m.byID[instrumentID]
}

// InstrumentID returns the instrument id for ticker, or (0, false) if
// never observed.
func (m *SymbolMap) InstrumentID(ticker string) (uint32, bool) {
	id, ok := m.byTicker[ticker]
	return id, ok
}

// Len returns the number of distinct instruments observed.
func (m *SymbolMap) Len() int {
	return len(m.byID)
}

// IsEmpty reports whether no instruments have been observed.
func (m *SymbolMap) IsEmpty() bool {
	return len(m.byID) == 0
}

// Tickers returns every ticker observed so far, in no particular order.
func (m *SymbolMap) Tickers() []string {
	tickers := make([]string, 0, len(m.byTicker))
	for t := range m.byTicker {
		tickers = append(tickers, t)
	}
	return tickers
}

// Merge folds other's observations into m.
func (m *SymbolMap) Merge(other *SymbolMap) {
	if other == nil {
		return
	}
	for id, ticker := range other.byID {
		m.AddInstrument(ticker, id)
	}
}
