package auth

import (
	"net/http"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/auth"
	"timeclock/backend/internal/repository/postgres"
	"timeclock/backend/internal/repository/postgres/user"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Controller struct {
	user User
	auth *auth.Auth
}

func NewController(user User, a *auth.Auth) *Controller {
	return &Controller{user: user, auth: a}
}

func (uc Controller) SignIn(c *web.Context) error {
	var data user.SignInRequest

	if err := c.BindFunc(&data, "Email", "Password"); err != nil {
		return c.RespondError(err)
	}

	detail, err := uc.user.GetByEmail(c.Ctx, data.Email)
	if errors.Is(err, postgres.ErrNotFound) {
		return c.RespondError(web.NewRequestError(errors.New("incorrect email or password"), http.StatusUnauthorized))
	}
	if err != nil {
		return c.RespondError(err)
	}

	if detail.Password == nil {
		return c.RespondError(web.NewRequestError(errors.New("incorrect email or password"), http.StatusUnauthorized))
	}

	if err = bcrypt.CompareHashAndPassword([]byte(*detail.Password), []byte(data.Password)); err != nil {
		return c.RespondError(web.NewRequestError(errors.New("incorrect email or password"), http.StatusUnauthorized))
	}

	role := auth.RoleAdmin
	if detail.Role != nil {
		role = *detail.Role
	}

	accessToken, refreshToken, err := uc.auth.GenerateTokens(auth.Claims{
		UserId:    detail.ID,
		CompanyID: detail.CompanyID,
		Role:      role,
	})
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]string{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
		"error": nil,
	}, http.StatusOK)
}

func (uc Controller) RefreshToken(c *web.Context) error {
	var data user.RefreshTokenRequest

	if err := c.BindFunc(&data, "RefreshToken"); err != nil {
		return c.RespondError(err)
	}

	claims, err := uc.auth.ValidateToken(data.RefreshToken)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	// Re-read the account so a deleted admin cannot refresh forever.
	detail, err := uc.user.GetById(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "loading account"), http.StatusUnauthorized))
	}

	role := auth.RoleAdmin
	if detail.Role != nil {
		role = *detail.Role
	}

	accessToken, refreshToken, err := uc.auth.GenerateTokens(auth.Claims{
		UserId:    detail.ID,
		CompanyID: detail.CompanyID,
		Role:      role,
	})
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "generating new tokens"), http.StatusInternalServerError))
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]string{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
		"error": nil,
	}, http.StatusOK)
}
