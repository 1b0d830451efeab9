package havona

import (
	"context"
	"encoding/json"
	"net/http"
)

// BlockchainService inspects the platform's blockchain layer: connection
// status and per-record persistence. The platform dual-persists every
// write to a fast query layer and a confidential EVM audit trail.
type BlockchainService struct {
	client *Client
}

// Status returns the current blockchain connection status.
func (s *BlockchainService) Status(ctx context.Context) (*BlockchainStatus, error) {
	raw, err := s.client.Request(ctx, http.MethodGet, "/api/blockchain/status", nil)
	if err != nil {
		return nil, err
	}

	var status BlockchainStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, decodeError(err, raw)
	}
	return &status, nil
}

// Persistence fetches the blockchain persistence record for a trade or
// document write.
func (s *BlockchainService) Persistence(ctx context.Context, recordID string) (*BlockchainPersistence, error) {
	raw, err := s.client.Request(ctx, http.MethodGet, "/api/blockchain/persistence/"+recordID, nil)
	if err != nil {
		return nil, err
	}

	var record BlockchainPersistence
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, decodeError(err, raw)
	}
	return &record, nil
}

// RawStatus returns the blockchain status without model parsing.
func (s *BlockchainService) RawStatus(ctx context.Context) (json.RawMessage, error) {
	return s.client.Request(ctx, http.MethodGet, "/api/blockchain/status", nil)
}
