// Copyright (c) 2025 Neomantra Corp
//
// Parquet export, generalized from the teacher's
// internal/file/parquet_writer.go: one GroupNode + column-writer pair
// per record kind, built the same column-at-a-time way, but keyed off
// RecordKind instead of a DBN wire Schema and fed by a SymbolMap
// instead of a TsSymbolMap (this store's ticker mapping carries no
// time dimension — spec.md §4.F).

package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/neomantra/mbp-go"
)

// ParquetWriter buffers one row group of a single RecordKind and
// flushes it to w on Close. A fresh ParquetWriter must be created per
// RecordKind — query results are already homogeneous per schema
// (spec.md §4.F, "each projector returns records of its own shape").
type ParquetWriter struct {
	kind    mbp.RecordKind
	pw      *pqfile.Writer
	rgw     pqfile.BufferedRowGroupWriter
	symbols *mbp.SymbolMap
}

// NewParquetWriter opens a Parquet writer for kind, writing to w.
func NewParquetWriter(w io.Writer, kind mbp.RecordKind, symbols *mbp.SymbolMap) (*ParquetWriter, error) {
	node := groupNodeForKind(kind)
	if node == nil {
		return nil, fmt.Errorf("export: no parquet schema for record kind %s", kind)
	}
	props := parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy),
	)
	pw := pqfile.NewParquetWriter(w, node, pqfile.WithWriterProps(props))
	return &ParquetWriter{
		kind:    kind,
		pw:      pw,
		rgw:     pw.AppendBufferedRowGroup(),
		symbols: symbols,
	}, nil
}

// WriteRecord appends one record to the open row group. rec.Kind must
// match the kind this writer was opened for.
func (p *ParquetWriter) WriteRecord(rec mbp.RecordEnvelope) error {
	if rec.Kind != p.kind {
		return fmt.Errorf("export: writer opened for %s, got %s", p.kind, rec.Kind)
	}
	switch p.kind {
	case mbp.RecordKind_Ohlcv:
		return writeOhlcvRow(p.rgw, rec.Ohlcv, p.symbols)
	case mbp.RecordKind_Trade:
		return writeTradeRow(p.rgw, rec.Trade, p.symbols)
	case mbp.RecordKind_Mbp1:
		return writeMbp1Row(p.rgw, rec.Mbp1, p.symbols)
	case mbp.RecordKind_Tbbo:
		return writeTbboRow(p.rgw, rec.Tbbo, p.symbols)
	case mbp.RecordKind_Bbo:
		return writeBboRow(p.rgw, rec.Bbo, p.symbols)
	default:
		return fmt.Errorf("export: unhandled record kind %s", p.kind)
	}
}

// Close flushes the buffered row group and writes the file footer.
func (p *ParquetWriter) Close() error {
	if err := p.rgw.Close(); err != nil {
		return err
	}
	return p.pw.FlushWithFooter()
}

func groupNodeForKind(kind mbp.RecordKind) *pqschema.GroupNode {
	switch kind {
	case mbp.RecordKind_Ohlcv:
		return groupNodeOhlcv()
	case mbp.RecordKind_Trade:
		return groupNodeTrade()
	case mbp.RecordKind_Mbp1:
		return groupNodeMbp1()
	case mbp.RecordKind_Tbbo:
		return groupNodeTbbo()
	case mbp.RecordKind_Bbo:
		return groupNodeBbo()
	default:
		return nil
	}
}

func tsField(name string) *pqschema.PrimitiveNode {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Optional, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitNanos), parquet.Types.Int64, 0, -1))
}

func u32Field(name string) *pqschema.PrimitiveNode {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1))
}

func u8Field(name string) *pqschema.PrimitiveNode {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(8, false), parquet.Types.Int32, 0, -1))
}

func strField(name string) *pqschema.PrimitiveNode {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted(
		name, parquet.Repetitions.Optional, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1))
}

func groupNodeOhlcv() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		u32Field("instrument_id"),
		strField("symbol"),
		tsField("ts_event"),
		pqschema.NewFloat64Node("open", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("high", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("low", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("close", parquet.Repetitions.Optional, -1),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("volume", parquet.Repetitions.Optional, pqschema.NewIntLogicalType(64, false), parquet.Types.Int64, 0, -1)),
	}, -1))
}

func writeOhlcvRow(rgw pqfile.BufferedRowGroupWriter, r *mbp.OhlcvMsg, symbols *mbp.SymbolMap) error {
	cw, _ := rgw.Column(0)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Header.InstrumentID)}, []int16{1}, nil)
	cw, _ = rgw.Column(1)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(symbols.Ticker(r.Header.InstrumentID))}, []int16{1}, nil)
	cw, _ = rgw.Column(2)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.Header.TsEvent)}, []int16{1}, nil)
	cw, _ = rgw.Column(3)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.Open)}, []int16{1}, nil)
	cw, _ = rgw.Column(4)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.High)}, []int16{1}, nil)
	cw, _ = rgw.Column(5)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.Low)}, []int16{1}, nil)
	cw, _ = rgw.Column(6)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.Close)}, []int16{1}, nil)
	cw, _ = rgw.Column(7)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.Volume)}, []int16{1}, nil)
	return nil
}

func groupNodeTrade() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		u32Field("instrument_id"),
		strField("symbol"),
		tsField("ts_event"),
		tsField("ts_recv"),
		strField("action"),
		strField("side"),
		pqschema.NewFloat64Node("price", parquet.Repetitions.Optional, -1),
		u32Field("size"),
		u8Field("flags"),
		u32Field("sequence"),
	}, -1))
}

func writeTradeRow(rgw pqfile.BufferedRowGroupWriter, r *mbp.TradeMsg, symbols *mbp.SymbolMap) error {
	cw, _ := rgw.Column(0)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Header.InstrumentID)}, []int16{1}, nil)
	cw, _ = rgw.Column(1)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(symbols.Ticker(r.Header.InstrumentID))}, []int16{1}, nil)
	cw, _ = rgw.Column(2)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.Header.TsEvent)}, []int16{1}, nil)
	cw, _ = rgw.Column(3)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.TsRecv)}, []int16{1}, nil)
	cw, _ = rgw.Column(4)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{{byte(r.Action)}}, []int16{1}, nil)
	cw, _ = rgw.Column(5)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{{byte(r.Side)}}, []int16{1}, nil)
	cw, _ = rgw.Column(6)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.Price)}, []int16{1}, nil)
	cw, _ = rgw.Column(7)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Size)}, []int16{1}, nil)
	cw, _ = rgw.Column(8)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Flags)}, []int16{1}, nil)
	cw, _ = rgw.Column(9)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Sequence)}, []int16{1}, nil)
	return nil
}

func levelFields() pqschema.FieldList {
	return pqschema.FieldList{
		pqschema.NewFloat64Node("bid_px", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("ask_px", parquet.Repetitions.Optional, -1),
		u32Field("bid_sz"),
		u32Field("ask_sz"),
		u32Field("bid_ct"),
		u32Field("ask_ct"),
	}
}

func writeLevelCols(rgw pqfile.BufferedRowGroupWriter, start int, lv mbp.BidAskPair) {
	cw, _ := rgw.Column(start)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(lv.BidPx)}, []int16{1}, nil)
	cw, _ = rgw.Column(start + 1)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(lv.AskPx)}, []int16{1}, nil)
	cw, _ = rgw.Column(start + 2)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(lv.BidSz)}, []int16{1}, nil)
	cw, _ = rgw.Column(start + 3)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(lv.AskSz)}, []int16{1}, nil)
	cw, _ = rgw.Column(start + 4)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(lv.BidCt)}, []int16{1}, nil)
	cw, _ = rgw.Column(start + 5)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(lv.AskCt)}, []int16{1}, nil)
}

func groupNodeMbp1() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		u32Field("instrument_id"),
		strField("symbol"),
		tsField("ts_event"),
		tsField("ts_recv"),
		strField("action"),
		strField("side"),
		pqschema.NewFloat64Node("price", parquet.Repetitions.Optional, -1),
		u32Field("size"),
		u8Field("flags"),
		u32Field("sequence"),
	}
	fields = append(fields, levelFields()...)
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1))
}

func writeMbp1Row(rgw pqfile.BufferedRowGroupWriter, r *mbp.Mbp1Msg, symbols *mbp.SymbolMap) error {
	cw, _ := rgw.Column(0)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Header.InstrumentID)}, []int16{1}, nil)
	cw, _ = rgw.Column(1)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(symbols.Ticker(r.Header.InstrumentID))}, []int16{1}, nil)
	cw, _ = rgw.Column(2)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.Header.TsEvent)}, []int16{1}, nil)
	cw, _ = rgw.Column(3)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.TsRecv)}, []int16{1}, nil)
	cw, _ = rgw.Column(4)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{{byte(r.Action)}}, []int16{1}, nil)
	cw, _ = rgw.Column(5)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{{byte(r.Side)}}, []int16{1}, nil)
	cw, _ = rgw.Column(6)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.Price)}, []int16{1}, nil)
	cw, _ = rgw.Column(7)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Size)}, []int16{1}, nil)
	cw, _ = rgw.Column(8)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Flags)}, []int16{1}, nil)
	cw, _ = rgw.Column(9)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Sequence)}, []int16{1}, nil)
	writeLevelCols(rgw, 10, r.Levels[0])
	return nil
}

func groupNodeTbbo() *pqschema.GroupNode {
	return groupNodeMbp1() // field-for-field identical; see structs.go TbboMsg doc.
}

func writeTbboRow(rgw pqfile.BufferedRowGroupWriter, r *mbp.TbboMsg, symbols *mbp.SymbolMap) error {
	m := mbp.Mbp1Msg{
		Header: r.Header, Price: r.Price, Size: r.Size, Action: r.Action, Side: r.Side,
		Depth: r.Depth, Flags: r.Flags, TsRecv: r.TsRecv, TsInDelta: r.TsInDelta,
		Sequence: r.Sequence, Levels: r.Levels,
	}
	return writeMbp1Row(rgw, &m, symbols)
}

func groupNodeBbo() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		u32Field("instrument_id"),
		strField("symbol"),
		tsField("ts_event"),
		tsField("ts_recv"),
		strField("side"),
		pqschema.NewFloat64Node("price", parquet.Repetitions.Optional, -1),
		u32Field("size"),
		u8Field("flags"),
		u32Field("sequence"),
	}
	fields = append(fields, levelFields()...)
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1))
}

func writeBboRow(rgw pqfile.BufferedRowGroupWriter, r *mbp.BboMsg, symbols *mbp.SymbolMap) error {
	cw, _ := rgw.Column(0)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Header.InstrumentID)}, []int16{1}, nil)
	cw, _ = rgw.Column(1)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(symbols.Ticker(r.Header.InstrumentID))}, []int16{1}, nil)
	cw, _ = rgw.Column(2)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.Header.TsEvent)}, []int16{1}, nil)
	cw, _ = rgw.Column(3)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.TsRecv)}, []int16{1}, nil)
	cw, _ = rgw.Column(4)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{{byte(r.Side)}}, []int16{1}, nil)
	cw, _ = rgw.Column(5)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{mbp.Fixed9ToFloat64(r.Price)}, []int16{1}, nil)
	cw, _ = rgw.Column(6)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Size)}, []int16{1}, nil)
	cw, _ = rgw.Column(7)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Flags)}, []int16{1}, nil)
	cw, _ = rgw.Column(8)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Sequence)}, []int16{1}, nil)
	writeLevelCols(rgw, 9, r.Levels[0])
	return nil
}
