// Copyright (c) 2025 Neomantra Corp
//
// Schema DDL for both backends, generalized from original_source's
// instrument/mbp/bid_ask tables (api/src/database/market_data.rs and
// its init_market_db test helper).

package store

import "context"

const postgresDDL = `
CREATE TABLE IF NOT EXISTS instrument (
	id     SERIAL PRIMARY KEY,
	ticker TEXT NOT NULL UNIQUE
);
CREATE SEQUENCE IF NOT EXISTS mbp_id_seq;
CREATE TABLE IF NOT EXISTS mbp (
	id              BIGINT PRIMARY KEY DEFAULT nextval('mbp_id_seq'),
	instrument_id   INTEGER NOT NULL REFERENCES instrument(id),
	ts_event        BIGINT NOT NULL,
	ts_recv         BIGINT NOT NULL,
	ts_in_delta     INTEGER NOT NULL,
	price           BIGINT NOT NULL,
	size            INTEGER NOT NULL,
	action          SMALLINT NOT NULL,
	side            SMALLINT NOT NULL,
	flags           SMALLINT NOT NULL,
	sequence        INTEGER NOT NULL,
	order_book_hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS mbp_instrument_ts_recv_idx ON mbp (instrument_id, ts_recv);
CREATE TABLE IF NOT EXISTS bid_ask (
	mbp_id BIGINT NOT NULL REFERENCES mbp(id),
	depth  SMALLINT NOT NULL,
	bid_px BIGINT NOT NULL,
	bid_sz INTEGER NOT NULL,
	bid_ct INTEGER NOT NULL,
	ask_px BIGINT NOT NULL,
	ask_sz INTEGER NOT NULL,
	ask_ct INTEGER NOT NULL,
	PRIMARY KEY (mbp_id, depth)
);
`

const duckdbDDL = `
CREATE SEQUENCE IF NOT EXISTS instrument_id_seq;
CREATE TABLE IF NOT EXISTS instrument (
	id     INTEGER PRIMARY KEY DEFAULT nextval('instrument_id_seq'),
	ticker TEXT NOT NULL UNIQUE
);
CREATE SEQUENCE IF NOT EXISTS mbp_id_seq;
CREATE TABLE IF NOT EXISTS mbp (
	id              BIGINT PRIMARY KEY,
	instrument_id   INTEGER NOT NULL REFERENCES instrument(id),
	ts_event        BIGINT NOT NULL,
	ts_recv         BIGINT NOT NULL,
	ts_in_delta     INTEGER NOT NULL,
	price           BIGINT NOT NULL,
	size            INTEGER NOT NULL,
	action          SMALLINT NOT NULL,
	side            SMALLINT NOT NULL,
	flags           SMALLINT NOT NULL,
	sequence        INTEGER NOT NULL,
	order_book_hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS mbp_instrument_ts_recv_idx ON mbp (instrument_id, ts_recv);
CREATE TABLE IF NOT EXISTS bid_ask (
	mbp_id BIGINT NOT NULL REFERENCES mbp(id),
	depth  SMALLINT NOT NULL,
	bid_px BIGINT NOT NULL,
	bid_sz INTEGER NOT NULL,
	bid_ct INTEGER NOT NULL,
	ask_px BIGINT NOT NULL,
	ask_sz INTEGER NOT NULL,
	ask_ct INTEGER NOT NULL,
	PRIMARY KEY (mbp_id, depth)
);
`

// Migrate creates the instrument/mbp/bid_ask tables if they don't
// already exist, using the DDL appropriate to q's dialect.
func Migrate(ctx context.Context, q Querier) error {
	ddl := postgresDDL
	if q.Dialect() == DialectDuckDB {
		ddl = duckdbDDL
	}
	_, err := q.Exec(ctx, ddl)
	return err
}
