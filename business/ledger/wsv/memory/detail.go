package memory

import (
	"encoding/json"
	"sort"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/id"
)

// detailRow is one flattened account-detail record.
type detailRow struct {
	record wsv.DetailRecord
	value  string
}

// flattenDetails turns the per-writer detail document into a record list
// sorted by (writer, key), applying the writer and key filters.
func flattenDetails(details map[id.AccountID]map[string]string, writer id.AccountID, key string) []detailRow {
	var rows []detailRow

	for w, kvs := range details {
		if writer != "" && w != writer {
			continue
		}
		for k, v := range kvs {
			if key != "" && k != key {
				continue
			}
			rows = append(rows, detailRow{record: wsv.DetailRecord{Writer: w, Key: k}, value: v})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].record.Writer != rows[j].record.Writer {
			return rows[i].record.Writer < rows[j].record.Writer
		}
		return rows[i].record.Key < rows[j].record.Key
	})

	return rows
}

// renderDetails produces the canonical JSON form of a detail subtree.
// Map keys marshal in sorted order, which keeps the rendering stable.
func renderDetails(details map[id.AccountID]map[string]string) string {
	if len(details) == 0 {
		return "{}"
	}

	data, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}

	return string(data)
}
