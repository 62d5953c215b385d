package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"sekolahku/core/user"
)

var errUserNotFoundInCtx = errors.New("user object not found in echo.Context")

type userApi struct {
	service user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := userApi{service: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.userLogin)
	ug.POST("/password-reset", api.userResetPassword)
	ug.POST("/password-reset-confirm", api.userConfirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.userRefreshToken)
	ag.POST("/register", api.userCreate, adminMiddleware())
	ag.GET("", api.userQuery, adminMiddleware())
	ag.DELETE("", api.userDestroyMultiple, adminMiddleware())
	ag.GET("/roles", api.userQueryRoles, adminMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", ctxUserOrAdminMiddleware(api.service))
	dg.GET("", api.userRetrieve)
	dg.PUT("", api.userUpdate)
	dg.DELETE("", api.userDestroy, adminMiddleware())
}

// Handlers

func (api *userApi) userLogin(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, data.Role, api.service)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) userRefreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.service)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) userResetPassword(ctx echo.Context) error {
	data := new(PasswordResetRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.service.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		// hide account existence from the caller
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "If the email exists, a reset link has been sent."})
}

func (api *userApi) userConfirmPasswordReset(ctx echo.Context) error {
	data := new(user.ResetUserPassword)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.service.ResetPassword(ctx.Request().Context(), *data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Password has been reset."})
}

func (api *userApi) userCreate(ctx echo.Context) error {
	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.service); err != nil {
		return err
	}

	usr, err := api.service.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) userQuery(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Orderings = ordering.Orderings

	if filter.IsEmpty() && filter.Orderings == nil {
		users, err := api.service.QueryAll(ctx.Request().Context())
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, users)
	}

	users, err := api.service.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) userRetrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errUserNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) userUpdate(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errUserNotFoundInCtx
	}

	data := new(user.UpdateUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.Role != user.RoleAdmin {
		// non-admins may only touch their own name and password
		if data.IsActive != nil || data.Role != "" || data.Username != "" ||
			data.Email != "" || data.LinkedStudentID.Valid {
			return errHttpForbidden
		}
	}

	if err := data.Validate(usr, api.service); err != nil {
		return err
	}

	usr, err = api.service.Update(ctx.Request().Context(), usr.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) userDestroy(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errUserNotFoundInCtx
	}

	// ctxUser cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if usr.ID == claims.Subject {
		return errHttpForbidden
	}

	if err := api.service.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) userDestroyMultiple(ctx echo.Context) error {
	data := new(DestroyMultipleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxUser cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	for _, id := range data.IDs {
		if id == claims.Subject {
			return errHttpForbidden
		}
	}

	if err := api.service.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) userQueryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.AllRoles)
}

func ctxUserOrAdminMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}

			id := ctx.Param("id")
			if id == claims.Subject || claims.Role == user.RoleAdmin {
				usr, err := svc.GetByID(ctx.Request().Context(), id)
				if err == nil {
					ctx.Set("object", usr)
					return next(ctx)
				} else if errors.Cause(err) != user.ErrNotFound {
					return err
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"required,oneof=student parent teacher admin"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	DestroyMultipleRequest struct {
		IDs []string `json:"ids"`
	}
)

func (r *LoginRequest) Validate() error         { return validateStruct(r) }
func (r *PasswordResetRequest) Validate() error { return validateStruct(r) }
