package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/usecase"
)

// UserHandler gestão de usuários (somente administrador).
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler constrói o handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// CreateEmployee godoc
// @Summary      Cadastrar funcionário
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEmployeeRequest  true  "Dados do funcionário"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/employees [post]
func (h *UserHandler) CreateEmployee(c *fiber.Ctx) error {
	var in dto.CreateEmployeeRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateEmployee(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar usuários
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        role  query  string  false  "administrador ou funcionario"
// @Success      200   {array}   dto.UserResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("role"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdatePassword godoc
// @Summary      Trocar senha
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                     true  "ID do usuário"
// @Param        body  body  dto.UpdatePasswordRequest  true  "Nova senha"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/password [put]
func (h *UserHandler) UpdatePassword(c *fiber.Ctx) error {
	var in dto.UpdatePasswordRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := h.uc.UpdatePassword(c.UserContext(), c.Params("id"), in.Password); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateName godoc
// @Summary      Trocar nome
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID do usuário"
// @Param        body  body  dto.UpdateNameRequest  true  "Novo nome"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/name [put]
func (h *UserHandler) UpdateName(c *fiber.Ctx) error {
	var in dto.UpdateNameRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateName(c.UserContext(), c.Params("id"), in.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetActive godoc
// @Summary      Ativar ou desativar usuário
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID do usuário"
// @Param        body  body  dto.UpdateActiveRequest  true  "active"
// @Success      200   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/active [put]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	var in dto.UpdateActiveRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SetActive(c.UserContext(), GetUserID(c), c.Params("id"), in.Active)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Excluir usuário
// @Tags         users
// @Security     Bearer
// @Param        id  path  string  true  "ID do usuário"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
