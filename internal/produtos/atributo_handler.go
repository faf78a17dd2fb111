package produtos

import (
	"strings"

	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AtributoResponse struct {
	ID   uint                `json:"id"`
	Nome string              `json:"nome"`
	Tipo models.TipoAtributo `json:"tipo"`
	// Chave usada nos padrões de descrição: {{ chave }}
	Chave string `json:"chave"`
}

type CreateAtributoRequest struct {
	Nome string              `json:"nome"`
	Tipo models.TipoAtributo `json:"tipo"`
}

func atributoToResponse(a *models.Atributo) AtributoResponse {
	return AtributoResponse{
		ID:    a.ID,
		Nome:  a.Nome,
		Tipo:  a.Tipo,
		Chave: sanitizarNome(a.Nome),
	}
}

// GET /api/atributos
func ListAtributosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var atributos []models.Atributo
		if err := database.DB.Order("nome asc").Find(&atributos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os atributos")
		}

		res := make([]AtributoResponse, 0, len(atributos))
		for i := range atributos {
			res = append(res, atributoToResponse(&atributos[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/atributos
func CreateAtributoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAtributoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome do atributo é obrigatório")
		}
		if body.Tipo != models.AtributoNumerico && body.Tipo != models.AtributoTexto {
			return fiber.NewError(fiber.StatusBadRequest, "Tipo do atributo deve ser 'num' ou 'texto'")
		}

		atributo := models.Atributo{Nome: body.Nome, Tipo: body.Tipo}
		if err := database.DB.Create(&atributo).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o atributo")
		}

		return c.Status(fiber.StatusCreated).JSON(atributoToResponse(&atributo))
	}
}

// DELETE /api/atributos/:id
func DeleteAtributoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var atributo models.Atributo
		if err := database.DB.First(&atributo, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Atributo não encontrado")
		}

		var nUsos int64
		database.DB.Model(&models.TemplateAtributo{}).Where("atributo_id = ?", atributo.ID).Count(&nUsos)
		if nUsos > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Atributo está em uso por templates e não pode ser removido")
		}

		if err := database.DB.Delete(&atributo).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o atributo")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
