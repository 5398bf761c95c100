package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/permledger/permledger/foundation/ledger/signature"
)

// queryRequest mirrors the node's query request model.
type queryRequest struct {
	Kind          string   `json:"kind"`
	CreatorID     string   `json:"creator_id"`
	CreatedTimeMs uint64   `json:"created_time_ms"`
	SignerKey     string   `json:"signer_key,omitempty"`
	TargetID      string   `json:"target_id,omitempty"`
	AssetID       string   `json:"asset_id,omitempty"`
	RoleID        string   `json:"role_id,omitempty"`
	Height        uint64   `json:"height,omitempty"`
	Hashes        []string `json:"hashes,omitempty"`
	PageSize      int      `json:"page_size,omitempty"`
	FirstHash     string   `json:"first_hash,omitempty"`
	Paged         bool     `json:"paged,omitempty"`
}

// runQuery posts the request to the node and prints the JSON response.
func runQuery(req queryRequest) error {
	req.CreatorID = creatorID
	req.CreatedTimeMs = uint64(time.Now().UTC().UnixMilli())

	privateKey, err := loadKey()
	if err != nil {
		return err
	}
	if privateKey != nil {
		req.SignerKey = signature.PublicKeyString(privateKey.PublicKey)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/query", url), "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}

	fmt.Println(pretty.String())
	return nil
}
