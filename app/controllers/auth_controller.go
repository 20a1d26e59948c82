package controllers

import (
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST /register.
func (c *AuthController) Register(cx *ctx.Context) {
	var in services.RegisterInput
	if !cx.DecodeJSON(&in) {
		return
	}
	if _, err := c.service.Register(cx.Context(), in); err != nil {
		cx.Fail(err)
		return
	}
	cx.Created("Registered. OTP sent to email.", nil)
}

// Verify handles POST /verify.
func (c *AuthController) Verify(cx *ctx.Context) {
	var in services.VerifyInput
	if !cx.DecodeJSON(&in) {
		return
	}
	if err := c.service.Verify(cx.Context(), in); err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Email verified.", nil)
}

// Login handles POST /login.
func (c *AuthController) Login(cx *ctx.Context) {
	var in services.LoginInput
	if !cx.DecodeJSON(&in) {
		return
	}
	res, err := c.service.Authenticate(cx.Context(), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Login successful", response.Payload{
		"token": res.Token,
		"role":  res.Role,
	})
}
