// Copyright (c) 2025 Neomantra Corp
//
// Test-only instrument setup/teardown, grounded on original_source's
// market_data.rs test helpers (create_instrument / Instrument::delete_instrument):
// insert one ticker with a single INSERT ... RETURNING id, delete it at
// teardown, so each test owns an isolated instrument_id.

package testfixture

import (
	"context"
	"fmt"

	"github.com/neomantra/mbp-go/store"
)

// CreateInstrument inserts ticker and returns its instrument_id.
func CreateInstrument(ctx context.Context, db store.Querier, ticker string) (uint32, error) {
	d := db.Dialect()
	sqlText := fmt.Sprintf(`INSERT INTO instrument (ticker) VALUES (%s) RETURNING id`, d.Placeholder(1))
	rows, err := db.Query(ctx, sqlText, ticker)
	if err != nil {
		return 0, fmt.Errorf("insert instrument %q: %w", ticker, err)
	}
	defer rows.Close()

	var id uint32
	if !rows.Next() {
		return 0, fmt.Errorf("insert instrument %q: no id returned", ticker)
	}
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

// DeleteInstrument removes an instrument and its dependent mbp/bid_ask
// rows, in child-to-parent order to satisfy the foreign keys declared
// in store's DDL (store/migrate.go).
func DeleteInstrument(ctx context.Context, db store.Querier, instrumentID uint32) error {
	d := db.Dialect()
	p1 := d.Placeholder(1)
	if _, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM bid_ask WHERE mbp_id IN (SELECT id FROM mbp WHERE instrument_id = %s)`, p1), instrumentID); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM mbp WHERE instrument_id = %s`, p1), instrumentID); err != nil {
		return err
	}
	_, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM instrument WHERE id = %s`, p1), instrumentID)
	return err
}
