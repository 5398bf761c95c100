package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/permledger/permledger/foundation/ledger/id"
)

// detailRow is one account-detail record as stored in the
// account_has_detail table.
type detailRow struct {
	Writer id.AccountID
	Key    string
	Value  string
}

// detailRows selects the detail records for an account ordered by
// (writer, key), applying the writer and key filters.
func (r *reader) detailRows(accountID id.AccountID, writer id.AccountID, key string) ([]detailRow, error) {
	const q = `
	SELECT writer, key, value
	FROM account_has_detail
	WHERE account_id = $1
	  AND ($2 = '' OR writer = $2)
	  AND ($3 = '' OR key = $3)
	ORDER BY writer, key`

	rows, err := r.tx.QueryContext(r.ctx, q, accountID, writer, key)
	if err != nil {
		return nil, fmt.Errorf("select account details: %w", err)
	}
	defer rows.Close()

	var out []detailRow
	for rows.Next() {
		var dr detailRow
		if err := rows.Scan(&dr.Writer, &dr.Key, &dr.Value); err != nil {
			return nil, fmt.Errorf("scan account detail: %w", err)
		}
		out = append(out, dr)
	}

	return out, rows.Err()
}

// renderDetailRows produces the canonical JSON form of a detail subtree.
// Map keys marshal in sorted order, which keeps the rendering stable.
func renderDetailRows(rows []detailRow) string {
	if len(rows) == 0 {
		return "{}"
	}

	subtree := make(map[id.AccountID]map[string]string)
	for _, dr := range rows {
		if subtree[dr.Writer] == nil {
			subtree[dr.Writer] = make(map[string]string)
		}
		subtree[dr.Writer][dr.Key] = dr.Value
	}

	data, err := json.Marshal(subtree)
	if err != nil {
		return "{}"
	}

	return string(data)
}
