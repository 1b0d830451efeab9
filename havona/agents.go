package havona

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// AgentsService reads the on-chain ERC-8004 agent registry: autonomous AI
// entities with verifiable identity and a community reputation score.
type AgentsService struct {
	client *Client
}

// List returns all registered agents. The server returns an empty list
// when the blockchain connection is unavailable.
func (s *AgentsService) List(ctx context.Context) ([]Agent, error) {
	raw, err := s.client.Request(ctx, http.MethodGet, "/api/agents", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Agents []Agent `json:"agents"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, decodeError(err, raw)
	}
	return out.Agents, nil
}

// Get fetches one agent by its on-chain ID.
func (s *AgentsService) Get(ctx context.Context, agentID int64) (*Agent, error) {
	raw, err := s.client.Request(ctx, http.MethodGet, "/api/agents/"+strconv.FormatInt(agentID, 10), nil)
	if err != nil {
		return nil, err
	}

	var agent Agent
	if err := json.Unmarshal(raw, &agent); err != nil {
		return nil, decodeError(err, raw)
	}
	return &agent, nil
}

// Reputation fetches the aggregated reputation for an agent.
func (s *AgentsService) Reputation(ctx context.Context, agentID int64) (*AgentReputation, error) {
	raw, err := s.client.Request(ctx, http.MethodGet,
		"/api/agents/"+strconv.FormatInt(agentID, 10)+"/reputation", nil)
	if err != nil {
		return nil, err
	}

	var rep AgentReputation
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, decodeError(err, raw)
	}
	rep.AgentID = agentID
	return &rep, nil
}

// Status returns the health of the agent registry service as raw JSON,
// with keys such as connected, contractAddress and totalAgents.
func (s *AgentsService) Status(ctx context.Context) (json.RawMessage, error) {
	return s.client.Request(ctx, http.MethodGet, "/api/agents/status", nil)
}
