package havona

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TradesService manages TradeContract records. Writes go through
// POST /dynamic (query layer plus blockchain); reads go through /graphql.
type TradesService struct {
	client *Client
}

const tradeFields = `
	id
	contractNo
	status
	contractType
	sellerId
	buyerId
	blockchainPersistence {
		status
		txHash
		blockNumber
		attemptCount
	}`

// List returns up to limit trade contracts. A non-positive limit defaults
// to 100.
func (s *TradesService) List(ctx context.Context, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 100
	}

	data, err := s.client.GraphQL(ctx, fmt.Sprintf(
		"query { queryTradeContract(first: %d) { %s } }", limit, tradeFields), nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		QueryTradeContract []Trade `json:"queryTradeContract"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, decodeError(err, data)
	}
	return out.QueryTradeContract, nil
}

// Get fetches one trade contract by ID. A null record in the GraphQL
// response surfaces as a not-found error rather than an empty trade.
func (s *TradesService) Get(ctx context.Context, tradeID string) (*Trade, error) {
	data, err := s.client.GraphQL(ctx, fmt.Sprintf(
		"query { getTradeContract(id: %q) { %s } }", tradeID, tradeFields), nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		GetTradeContract *Trade `json:"getTradeContract"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, decodeError(err, data)
	}
	if out.GetTradeContract == nil {
		return nil, &Error{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("TradeContract %q not found", tradeID),
		}
	}
	return out.GetTradeContract, nil
}

// Create saves a new TradeContract. Field names may be snake_case or
// camelCase; they are normalised before the write.
//
//	trade, err := client.Trades.Create(ctx, map[string]any{
//	    "contract_no": "TC-2026-001",
//	    "status":      "DRAFT",
//	})
func (s *TradesService) Create(ctx context.Context, fields map[string]any) (*Trade, error) {
	raw, err := s.client.Write(ctx, "TradeContract", normaliseTradeFields(fields))
	if err != nil {
		return nil, err
	}

	var trade Trade
	if err := json.Unmarshal(raw, &trade); err != nil {
		return nil, decodeError(err, raw)
	}
	return &trade, nil
}

// Update modifies an existing TradeContract by including its ID in the
// write payload.
func (s *TradesService) Update(ctx context.Context, tradeID string, fields map[string]any) (json.RawMessage, error) {
	payload := normaliseTradeFields(fields)
	payload["id"] = tradeID
	return s.client.Write(ctx, "TradeContract", payload)
}

// AssignBook sets the party-specific book classification. Book is stripped
// from cross-namespace sync, so each counterparty manages its own
// classification independently.
func (s *TradesService) AssignBook(ctx context.Context, tradeID, book string) (json.RawMessage, error) {
	return s.client.Request(ctx, http.MethodPatch,
		"/api/trades/"+tradeID+"/book", map[string]string{"book": book})
}

// tradeWriteAliases maps snake_case write field names to the camelCase
// names the /dynamic endpoint expects.
var tradeWriteAliases = map[string]string{
	"contract_no":         "contractNo",
	"contract_type":       "contractType",
	"seller_id":           "sellerId",
	"buyer_id":            "buyerId",
	"blockchain_status":   "blockchainStatus",
	"payment_terms":       "paymentTerms",
	"shipment_date":       "shipmentDate",
	"origin_country":      "originCountry",
	"destination_country": "destinationCountry",
	"unit_price":          "unitPrice",
	"total_value":         "totalValue",
}

func normaliseTradeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if camel, ok := tradeWriteAliases[k]; ok {
			k = camel
		}
		out[k] = v
	}
	return out
}

func decodeError(err error, raw json.RawMessage) *Error {
	return &Error{
		Kind:    KindGeneric,
		Message: "decode response",
		Body:    truncate(string(raw), maxErrorBody),
		err:     err,
	}
}
