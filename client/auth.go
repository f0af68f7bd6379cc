package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/user"
)

const sessionNotSaved = "Signed in, but the session could not be saved."

// LoginResponse is the payload of the login and token refresh calls.
type LoginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

type Auth struct {
	c *Client
}

func (c *Client) Auth() *Auth {
	return &Auth{c: c}
}

// Login authenticates against the API and keeps the issued token in the session.
func (a *Auth) Login(ctx context.Context, email, password string) core.Envelope[LoginResponse] {
	env := do(ctx, a.c, call{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "auth/login",
		body:   user.Login{Email: email, Password: password},
	}, decodeEnvelope[LoginResponse])
	return a.keep(env)
}

// Refresh swaps the session token for a fresh one.
func (a *Auth) Refresh(ctx context.Context) core.Envelope[LoginResponse] {
	env := do(ctx, a.c, call{
		op:     "auth.refresh",
		method: http.MethodPost,
		path:   "auth/token-refresh",
		body:   struct{}{},
	}, decodeEnvelope[LoginResponse])
	return a.keep(env)
}

func (a *Auth) keep(env core.Envelope[LoginResponse]) core.Envelope[LoginResponse] {
	if !env.Success || a.c.session == nil {
		return env
	}
	if err := a.c.session.SetToken(env.Data.Token); err != nil {
		a.c.logger.Error(fmt.Sprintf("auth.session: %v", err), err)
		return core.Fail[LoginResponse](sessionNotSaved)
	}
	return env
}

// Logout forgets the session token. Tokens are stateless, the API is not called.
func (a *Auth) Logout() error {
	if a.c.session == nil {
		return nil
	}
	return a.c.session.Clear()
}

// Me returns the signed in user.
func (a *Auth) Me(ctx context.Context) core.Envelope[user.User] {
	return do(ctx, a.c, call{
		op:     "auth.me",
		method: http.MethodGet,
		path:   "auth/me",
	}, decodeEnvelope[user.User])
}

// RequestPasswordReset asks the API to mail a reset link to email.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) core.Envelope[struct{}] {
	return do(ctx, a.c, call{
		op:     "auth.passwordReset",
		method: http.MethodPost,
		path:   "auth/password-reset",
		body:   user.RequestPasswordReset{Email: email},
	}, decodeEnvelope[struct{}])
}

func (a *Auth) ResetPassword(ctx context.Context, data user.ResetUserPassword) core.Envelope[struct{}] {
	return do(ctx, a.c, call{
		op:     "auth.passwordResetConfirm",
		method: http.MethodPost,
		path:   "auth/password-reset/confirm",
		body:   data,
	}, decodeEnvelope[struct{}])
}
