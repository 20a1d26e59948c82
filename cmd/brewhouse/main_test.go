package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/internal/kernel"
	"github.com/shashiranjanraj/brewhouse/pkg/router"
)

func TestPrintRoutes_Sorted(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoutes(&out, []router.RouteInfo{
		{Method: "POST", Path: "/orders", Name: "orders.store"},
		{Method: "GET", Path: "/orders", Name: "orders.index"},
		{Method: "GET", Path: "/healthz", Name: "health"},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], "/healthz")
	assert.Contains(t, lines[3], "orders.index")
	assert.Contains(t, lines[4], "orders.store")
}

func TestPrintRoutes_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoutes(&out, nil))
	assert.Equal(t, "No routes registered.\n", out.String())
}

func TestKernelRouteTable(t *testing.T) {
	k, err := kernel.NewHTTPKernel(kernel.Deps{Config: config.Config{JWTSecret: "x"}})
	require.NoError(t, err)
	defer k.Shutdown()

	names := map[string]bool{}
	for _, ri := range k.Routes() {
		names[ri.Name] = true
	}
	for _, want := range []string{
		"auth.register", "auth.verify", "auth.login",
		"brew_methods.index", "brew_methods.store",
		"ingredients.index", "ingredients.store",
		"recipes.index", "recipes.show", "recipes.store", "recipes.update", "recipes.destroy",
		"orders.index", "orders.show", "orders.store", "orders.update", "orders.destroy",
		"images.upload", "images.show", "graphql", "metrics", "health",
	} {
		assert.True(t, names[want], want)
	}
}
