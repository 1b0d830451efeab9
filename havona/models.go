package havona

import "encoding/json"

// Trade is a TradeContract record.
type Trade struct {
	ID                    string                 `json:"id"`
	ContractNo            string                 `json:"contractNo"`
	Status                string                 `json:"status"`
	ContractType          string                 `json:"contractType,omitempty"`
	SellerID              string                 `json:"sellerId,omitempty"`
	BuyerID               string                 `json:"buyerId,omitempty"`
	BlockchainPersistence *BlockchainPersistence `json:"blockchainPersistence,omitempty"`
}

// BlockchainPersistence is the audit-trail record for one write.
type BlockchainPersistence struct {
	RecordID     string `json:"recordId"`
	Status       string `json:"status"` // PENDING | CONFIRMED | FAILED
	TxHash       string `json:"txHash,omitempty"`
	BlockNumber  int64  `json:"blockNumber,omitempty"`
	AttemptCount int    `json:"attemptCount"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// BlockchainStatus reports the platform's blockchain connection.
type BlockchainStatus struct {
	Connected       bool   `json:"connected"`
	ChainID         int64  `json:"chainId,omitempty"`
	Network         string `json:"network,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
}

// Agent is an ERC-8004 registered agent.
type Agent struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AgentType   string `json:"agentType"`
	Wallet      string `json:"wallet,omitempty"`
	Status      string `json:"status,omitempty"`
	MetadataURI string `json:"metadataUri,omitempty"`
}

// AgentReputation is the aggregated community score for an agent.
type AgentReputation struct {
	AgentID       int64            `json:"agentId"`
	TotalFeedback int              `json:"totalFeedback"`
	AverageScore  float64          `json:"averageScore,omitempty"`
	Breakdown     []map[string]any `json:"breakdown,omitempty"`
}

// ETRType is an Electronic Trade Record document type supported by the
// extraction service.
type ETRType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ExtractionResult is the outcome of a document extraction. Nothing is
// persisted by extraction; pass ToTradeFields to Trades.Create to save it.
type ExtractionResult struct {
	DocumentType     string
	Fields           map[string]any
	Confidence       float64
	Source           string // "pdf" | "excel" | "ai"
	UploadedFilename string
}

// UnmarshalJSON tolerates the server's envelope variations: extracted
// fields may arrive under "extractedData", "fields" or "result".
func (r *ExtractionResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		DocumentType     string         `json:"documentType"`
		ExtractedData    map[string]any `json:"extractedData"`
		Fields           map[string]any `json:"fields"`
		Result           map[string]any `json:"result"`
		Confidence       float64        `json:"confidence"`
		Source           string         `json:"source"`
		UploadedFilename string         `json:"uploadedFilename"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := raw.ExtractedData
	if fields == nil {
		fields = raw.Fields
	}
	if fields == nil {
		fields = raw.Result
	}
	if fields == nil {
		fields = map[string]any{}
	}

	r.DocumentType = raw.DocumentType
	r.Fields = fields
	r.Confidence = raw.Confidence
	r.Source = raw.Source
	r.UploadedFilename = raw.UploadedFilename
	return nil
}

// tradeFieldAliases maps the server's camelCase trade field names to the
// snake_case aliases the extractor sometimes emits.
var tradeFieldAliases = map[string]string{
	"contractNo":         "contract_no",
	"contractType":       "contract_type",
	"commodity":          "commodity",
	"quantity":           "quantity",
	"unit":               "unit",
	"unitPrice":          "unit_price",
	"currency":           "currency",
	"totalValue":         "total_value",
	"originCountry":      "origin_country",
	"destinationCountry": "destination_country",
	"shipmentDate":       "shipment_date",
	"paymentTerms":       "payment_terms",
	"incoterms":          "incoterms",
	"description":        "description",
}

// ToTradeFields converts the extracted fields into a payload suitable for
// Trades.Create. Camel-case names win; snake_case aliases fill the gaps.
func (r *ExtractionResult) ToTradeFields() map[string]any {
	payload := map[string]any{}

	for serverKey := range tradeFieldAliases {
		if v, ok := r.Fields[serverKey]; ok {
			payload[serverKey] = v
		}
	}
	for serverKey, alias := range tradeFieldAliases {
		if _, done := payload[serverKey]; done {
			continue
		}
		if v, ok := r.Fields[alias]; ok {
			payload[serverKey] = v
		}
	}

	return payload
}
