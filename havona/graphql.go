package havona

import (
	"context"
	"encoding/json"
	"net/http"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQL posts a query to /graphql and returns the data member of the
// response envelope. A response carrying an errors array fails the call
// even when the HTTP status is 200; it is never returned as an empty
// success.
//
//	data, err := client.GraphQL(ctx, `
//	    query { queryTradeContract(first: 10) { id contractNo status } }
//	`, nil)
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	raw, err := c.Request(ctx, http.MethodPost, "/graphql", graphqlRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return nil, err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{
			Kind:    KindGeneric,
			Message: "malformed GraphQL response",
			Body:    truncate(string(raw), maxErrorBody),
			err:     err,
		}
	}

	if len(resp.Errors) > 0 {
		return nil, newGraphQLError(resp.Errors)
	}

	return resp.Data, nil
}
