package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"starter-server/internal/middleware"
	"starter-server/internal/schemas"
	"starter-server/internal/services"
	"starter-server/internal/utils"
)

type AuthHdl interface {
	RegisterUser(c *gin.Context)
	LoginUser(c *gin.Context)
	RequestPasswordReset(c *gin.Context)
	ResetPassword(c *gin.Context)
	ResendVerificationLink(c *gin.Context)
	VerifyEmail(c *gin.Context)
	Me(c *gin.Context)
}

type AuthHandler struct {
	AuthService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) AuthHdl {
	return &AuthHandler{
		AuthService: authService,
	}
}

func (handler *AuthHandler) RegisterUser(c *gin.Context) {
	req := middleware.Payload[schemas.RegistrationRequest](c)

	user, err := handler.AuthService.RegisterUser(c.Request.Context(), services.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewUserDTO(user), http.StatusCreated)
}

func (handler *AuthHandler) LoginUser(c *gin.Context) {
	req := middleware.Payload[schemas.LoginRequest](c)

	accessToken, user, err := handler.AuthService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.AuthDTO{
		AccessToken: accessToken,
		User:        schemas.NewUserDTO(user),
	}, http.StatusOK)
}

func (handler *AuthHandler) RequestPasswordReset(c *gin.Context) {
	req := middleware.Payload[schemas.EmailRequest](c)

	if err := handler.AuthService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.WriteNoContent(c)
}

func (handler *AuthHandler) ResetPassword(c *gin.Context) {
	req := middleware.Payload[schemas.ResetPasswordRequest](c)

	err := handler.AuthService.ResetPassword(c.Request.Context(), services.ResetPasswordParams{
		Email:       req.Email,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.WriteNoContent(c)
}

func (handler *AuthHandler) ResendVerificationLink(c *gin.Context) {
	req := middleware.Payload[schemas.EmailRequest](c)

	if err := handler.AuthService.ResendVerificationLink(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.WriteNoContent(c)
}

func (handler *AuthHandler) VerifyEmail(c *gin.Context) {
	req := middleware.Payload[schemas.VerifyEmailRequest](c)

	if err := handler.AuthService.VerifyEmail(c.Request.Context(), req.Email, req.Token); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.WriteNoContent(c)
}

// Me returns the user resolved by the Authenticate middleware.
func (handler *AuthHandler) Me(c *gin.Context) {
	utils.WriteAndLogResponse(c, schemas.NewUserDTO(middleware.CurrentUser(c)), http.StatusOK)
}

// writeServiceError maps service errors onto the error envelope, anything unknown is a 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		utils.WriteAndLogError(c, schemas.ValidationFailed.WithDetails(map[string]string{
			"email": "Email has already been taken.",
		}), http.StatusUnprocessableEntity, err)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnprocessableEntity, err)
	case errors.Is(err, services.ErrAccountDoesNotExist):
		utils.WriteAndLogError(c, schemas.AccountDoesNotExist, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrInvalidVerificationToken):
		utils.WriteAndLogError(c, schemas.InvalidVerificationToken, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
	default:
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
	}
}
