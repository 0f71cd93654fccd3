// Package controllers translates HTTP requests into service calls and service
// results into JSON envelopes.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/rangershop/app/services"
	"github.com/shashiranjanraj/rangershop/pkg/bind"
	"github.com/shashiranjanraj/rangershop/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Signup registers a new user.
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var body services.RegisterInput
	if !decode(w, r, &body) {
		return
	}

	user, err := c.service.Register(body)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, user)
}

// Login authenticates by email and password and returns the user with an
// access token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !decode(w, r, &body) {
		return
	}

	user, token, err := c.service.Authenticate(body.Email, body.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"user":         user,
		"access_token": token,
	})
}

// Token issues an access token for an order-placing client id.
func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID string `json:"client_id" validate:"required"`
	}
	if !decode(w, r, &body) {
		return
	}

	token, err := c.service.Token(body.ClientID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]string{"access_token": token})
}

// decode binds the JSON body into dest and writes the 422 response itself when
// the body is malformed or fails validation. Returns false when handling
// should stop.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(r, dest)
	if err != nil {
		response.ValidationError(w, map[string]string{"body": err.Error()})
		return false
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}
