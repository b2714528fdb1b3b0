// journal/schema.go
package journal

// Prices and quantities are TEXT so decimals round-trip exactly. Tags are
// stored as ",tag1,tag2," to allow a simple substring match.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	quantity TEXT NOT NULL,
	open_price TEXT NOT NULL,
	open_time DATETIME NOT NULL,
	close_price TEXT,
	close_time DATETIME,
	stop_loss TEXT,
	notes TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
CREATE INDEX IF NOT EXISTS idx_trades_open_time ON trades(open_time);
`
