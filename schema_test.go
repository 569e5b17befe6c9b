// Copyright (c) 2025 Neomantra Corp

package mbp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	valid := []Schema{
		Schema_Mbp1, Schema_Trade, Schema_Tbbo,
		Schema_Ohlcv1S, Schema_Ohlcv1M, Schema_Ohlcv1H, Schema_Ohlcv1D,
		Schema_Bbo1S, Schema_Bbo1M,
	}
	for _, s := range valid {
		got, err := ParseSchema(string(s))
		require.NoError(t, err)
		require.Equal(t, s, got)
	}

	_, err := ParseSchema("bogus-schema")
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSchemaIntervalNs(t *testing.T) {
	tests := []struct {
		schema Schema
		want   int64
	}{
		{Schema_Mbp1, 1},
		{Schema_Trade, 1},
		{Schema_Tbbo, 1},
		{Schema_Ohlcv1S, nanosPerSecond},
		{Schema_Bbo1S, nanosPerSecond},
		{Schema_Ohlcv1M, nanosPerMinute},
		{Schema_Bbo1M, nanosPerMinute},
		{Schema_Ohlcv1H, nanosPerHour},
		{Schema_Ohlcv1D, nanosPerDay},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.schema.IntervalNs(), tt.schema)
	}
}

func TestSchemaIsWindowed(t *testing.T) {
	require.False(t, Schema_Mbp1.IsWindowed())
	require.False(t, Schema_Trade.IsWindowed())
	require.False(t, Schema_Tbbo.IsWindowed())
	require.True(t, Schema_Ohlcv1S.IsWindowed())
	require.True(t, Schema_Bbo1M.IsWindowed())
}

func TestSchemaRecordKind(t *testing.T) {
	require.Equal(t, RecordKind_Mbp1, Schema_Mbp1.RecordKind())
	require.Equal(t, RecordKind_Trade, Schema_Trade.RecordKind())
	require.Equal(t, RecordKind_Tbbo, Schema_Tbbo.RecordKind())
	require.Equal(t, RecordKind_Bbo, Schema_Bbo1S.RecordKind())
	require.Equal(t, RecordKind_Ohlcv, Schema_Ohlcv1D.RecordKind())
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Schema Schema `json:"schema"`
	}
	b, err := json.Marshal(wrapper{Schema: Schema_Ohlcv1M})
	require.NoError(t, err)
	require.JSONEq(t, `{"schema":"ohlcv-1m"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal(b, &w))
	require.Equal(t, Schema_Ohlcv1M, w.Schema)

	err = json.Unmarshal([]byte(`{"schema":"not-a-schema"}`), &w)
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestRetrieveParamsValidate(t *testing.T) {
	p := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 100, Schema: Schema_Mbp1}
	require.NoError(t, p.Validate())

	bad := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 100, EndTs: 0, Schema: Schema_Mbp1}
	require.ErrorIs(t, bad.Validate(), ErrInvalidRange)

	unknown := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 100, Schema: "garbage"}
	require.ErrorIs(t, unknown.Validate(), ErrInvalidSchema)
}
