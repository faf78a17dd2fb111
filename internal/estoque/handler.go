package estoque

import (
	"errors"

	"tdm-backend/internal/auth"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Não foi possível obter o usuário")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Usuário não encontrado")
	}

	return userID, user.Name, nil
}

// Converte os erros do razão de estoque em respostas HTTP: regra de negócio
// violada vira 422, corrida de atualização vira 409 para o cliente repetir.
func fiberErrDoRazao(err error, fallback string) error {
	var insuf *EstoqueInsuficienteError
	if errors.As(err, &insuf) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, insuf.Error())
	}
	var inval *AjusteInvalidoError
	if errors.As(err, &inval) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, inval.Error())
	}
	if errors.Is(err, ErrConflitoConcorrencia) {
		return fiber.NewError(fiber.StatusConflict, ErrConflitoConcorrencia.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}
