package controllers

import (
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

// CatalogController serves brew methods, ingredients and recipes. Reads are
// public; writes need an Admin token, enforced by the service.
type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

func (c *CatalogController) ListBrewMethods(cx *ctx.Context) {
	methods, err := c.service.ListBrewMethods(cx.Context())
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Brew methods retrieved", response.Payload{"brew_methods": methods})
}

func (c *CatalogController) CreateBrewMethod(cx *ctx.Context) {
	var in services.BrewMethodInput
	if !cx.DecodeJSON(&in) {
		return
	}
	bm, err := c.service.CreateBrewMethod(cx.Context(), cx.MustPrincipal(), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Created("Brew method created.", response.Payload{"id": bm.ID})
}

func (c *CatalogController) ListIngredients(cx *ctx.Context) {
	ingredients, err := c.service.ListIngredients(cx.Context())
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Ingredients retrieved", response.Payload{"ingredients": ingredients})
}

func (c *CatalogController) CreateIngredient(cx *ctx.Context) {
	var in services.IngredientInput
	if !cx.DecodeJSON(&in) {
		return
	}
	ing, err := c.service.CreateIngredient(cx.Context(), cx.MustPrincipal(), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Created("Ingredient created.", response.Payload{"id": ing.ID})
}

func (c *CatalogController) ListRecipes(cx *ctx.Context) {
	recipes, err := c.service.ListRecipes(cx.Context())
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Recipes retrieved", response.Payload{"recipes": recipes})
}

func (c *CatalogController) ShowRecipe(cx *ctx.Context) {
	id, ok := cx.ParamID("id")
	if !ok {
		return
	}
	recipe, err := c.service.GetRecipe(cx.Context(), id)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Recipe retrieved", response.Payload{"recipe": recipe})
}

func (c *CatalogController) CreateRecipe(cx *ctx.Context) {
	var in services.CreateRecipeInput
	if !cx.DecodeJSON(&in) {
		return
	}
	recipe, err := c.service.CreateRecipe(cx.Context(), cx.MustPrincipal(), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Created("Recipe created.", response.Payload{"recipe": recipe})
}

func (c *CatalogController) UpdateRecipe(cx *ctx.Context) {
	id, ok := cx.ParamID("id")
	if !ok {
		return
	}
	var in services.UpdateRecipeInput
	if !cx.DecodeJSON(&in) {
		return
	}
	recipe, err := c.service.UpdateRecipe(cx.Context(), cx.MustPrincipal(), id, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Recipe updated.", response.Payload{"recipe": recipe})
}

func (c *CatalogController) DeleteRecipe(cx *ctx.Context) {
	id, ok := cx.ParamID("id")
	if !ok {
		return
	}
	if err := c.service.DeleteRecipe(cx.Context(), cx.MustPrincipal(), id); err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Recipe deleted.", nil)
}
