// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence increments and returns the next sequence number for table inside tx.
//
// The counter row is only advanced if tx commits, so a rolled-back insert does not burn a sequence number.
func NextSequence(tx *sql.Tx, table string) (int, error) {
	counter := table + "_sequence"

	var sequence int
	err := tx.QueryRow(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", counter)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s: %w", counter, err)
	}
	return sequence, nil
}
