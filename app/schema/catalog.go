// Package schema defines the read-only GraphQL view of the catalog.
//
//	{ recipes { id name price brew_method { name } ingredients { name quantity } } }
package schema

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/brewhouse/app/services"
	gql "github.com/shashiranjanraj/brewhouse/pkg/graphql"
)

var brewMethodType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BrewMethod",
	Fields: graphql.Fields{
		"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"details": &graphql.Field{Type: graphql.String},
	},
})

var ingredientType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Ingredient",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// recipeIngredientType is an ingredient line; quantity is free-form text.
var recipeIngredientType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RecipeIngredient",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity": &graphql.Field{Type: graphql.String},
	},
})

var recipeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Recipe",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"takeaway":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"image_url":   &graphql.Field{Type: graphql.String},
		"brew_method": &graphql.Field{Type: brewMethodType},
		"ingredients": &graphql.Field{Type: graphql.NewList(recipeIngredientType)},
	},
})

// NewCatalog builds the schema over the catalog service.
func NewCatalog(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"recipes": &graphql.Field{
				Type: graphql.NewList(recipeType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return catalog.ListRecipes(p.Context)
				},
			},
			"recipe": &graphql.Field{
				Type: recipeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					return catalog.GetRecipe(p.Context, uint(id))
				},
			},
			"brew_methods": &graphql.Field{
				Type: graphql.NewList(brewMethodType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return catalog.ListBrewMethods(p.Context)
				},
			},
			"ingredients": &graphql.Field{
				Type: graphql.NewList(ingredientType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return catalog.ListIngredients(p.Context)
				},
			},
		},
	})
	return gql.NewSchema(query)
}
