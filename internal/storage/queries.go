package storage

const (
	snapshotColumns = `id, month, salary, card1, card2, card3, card4, extra1, extra2, extra3, extra4, memo, created_at`

	qHasPinHash = `SELECT EXISTS(SELECT 1 FROM app_pin WHERE pin_hash = ?)`

	qAddPinHash = `INSERT INTO app_pin (pin_hash, created_at) VALUES (?, ?)
ON CONFLICT (pin_hash) DO NOTHING`

	qInsertSnapshot = `INSERT INTO monthly_money
(month, salary, card1, card2, card3, card4, extra1, extra2, extra3, extra4, memo, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	qLatestSnapshot = `SELECT ` + snapshotColumns + ` FROM monthly_money
WHERE month = ? ORDER BY id DESC LIMIT 1`

	qListSnapshots = `SELECT ` + snapshotColumns + ` FROM monthly_money
WHERE month = ? ORDER BY id DESC`

	qGetSnapshot = `SELECT ` + snapshotColumns + ` FROM monthly_money WHERE id = ?`

	qSnapshotsAfter = `SELECT ` + snapshotColumns + ` FROM monthly_money
WHERE id > ? ORDER BY id ASC LIMIT ?`
)
