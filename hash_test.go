// Copyright (c) 2025 Neomantra Corp

package mbp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeOrderBookHashEmpty(t *testing.T) {
	// sha256("") per spec.md §3's big-endian byte layout with zero levels.
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ComputeOrderBookHash(nil),
	)
}

func TestComputeOrderBookHashDeterministic(t *testing.T) {
	levels := []BidAskPair{
		{BidPx: 100_000_000_000, AskPx: 100_500_000_000, BidSz: 10, AskSz: 5, BidCt: 2, AskCt: 1},
	}
	h1 := ComputeOrderBookHash(levels)
	h2 := ComputeOrderBookHash(levels)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestComputeOrderBookHashDistinguishesLevels(t *testing.T) {
	a := []BidAskPair{{BidPx: 1, AskPx: 2, BidSz: 1, AskSz: 1, BidCt: 1, AskCt: 1}}
	b := []BidAskPair{{BidPx: 1, AskPx: 2, BidSz: 1, AskSz: 1, BidCt: 1, AskCt: 2}}
	require.NotEqual(t, ComputeOrderBookHash(a), ComputeOrderBookHash(b))
}

func TestComputeOrderBookHashOrderMatters(t *testing.T) {
	lvl0 := BidAskPair{BidPx: 1, AskPx: 2, BidSz: 1, AskSz: 1, BidCt: 1, AskCt: 1}
	lvl1 := BidAskPair{BidPx: 3, AskPx: 4, BidSz: 2, AskSz: 2, BidCt: 2, AskCt: 2}
	require.NotEqual(t,
		ComputeOrderBookHash([]BidAskPair{lvl0, lvl1}),
		ComputeOrderBookHash([]BidAskPair{lvl1, lvl0}),
	)
}
