// Package graphql serves a graphql-go schema over HTTP.
package graphql

import (
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
)

// NewSchema creates a query-only schema.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is the standard GraphQL-over-HTTP body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Handler executes POSTed queries against schema and answers with the
// standard {data, errors} result.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return ctx.Wrap(func(c *ctx.Context) {
		var req Request
		if !c.DecodeJSON(&req) {
			return
		}
		if req.Query == "" {
			c.Error(http.StatusBadRequest, "Query is required")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})
		c.JSON(http.StatusOK, result)
	})
}
