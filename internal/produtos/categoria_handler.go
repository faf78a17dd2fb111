package produtos

import (
	"fmt"
	"strings"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/auth"
	"tdm-backend/internal/config"
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

type CategoriaResponse struct {
	ID        uint   `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	CreatedAt string `json:"created_at"`
}

type CreateCategoriaRequest struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

type UpdateCategoriaRequest struct {
	Nome      *string `json:"nome"`
	Descricao *string `json:"descricao"`
}

func categoriaToResponse(cat *models.Categoria) CategoriaResponse {
	return CategoriaResponse{
		ID:        cat.ID,
		Nome:      cat.Nome,
		Descricao: cat.Descricao,
		CreatedAt: cat.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/categorias
func ListCategoriasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categorias []models.Categoria
		if err := database.DB.Order("nome asc").Find(&categorias).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as categorias")
		}

		res := make([]CategoriaResponse, 0, len(categorias))
		for i := range categorias {
			res = append(res, categoriaToResponse(&categorias[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/categorias
func CreateCategoriaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoriaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome da categoria é obrigatório")
		}

		var existente models.Categoria
		if err := database.DB.Where("nome = ?", body.Nome).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe uma categoria com este nome")
		}

		cat := models.Categoria{
			Nome:      body.Nome,
			Descricao: strings.TrimSpace(body.Descricao),
		}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a categoria")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "categoria",
				EntityID:    cat.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Categoria de produto criada: %s", cat.Nome),
				After:       categoriaToResponse(&cat),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(categoriaToResponse(&cat))
	}
}

// PUT /api/categorias/:id
func UpdateCategoriaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.Categoria
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Categoria não encontrada")
		}
		antes := categoriaToResponse(&cat)

		var body UpdateCategoriaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Nome != nil {
			nome := strings.TrimSpace(*body.Nome)
			if nome == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome da categoria não pode ficar vazio")
			}
			var existente models.Categoria
			if err := database.DB.Where("nome = ? AND id != ?", nome, cat.ID).First(&existente).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Já existe uma categoria com este nome")
			}
			cat.Nome = nome
		}
		if body.Descricao != nil {
			cat.Descricao = strings.TrimSpace(*body.Descricao)
		}

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a categoria")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "categoria",
				EntityID:    cat.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Categoria de produto atualizada: %s", cat.Nome),
				Before:      antes,
				After:       categoriaToResponse(&cat),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(categoriaToResponse(&cat))
	}
}

// DELETE /api/categorias/:id
func DeleteCategoriaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.Categoria
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Categoria não encontrada")
		}

		var nTemplates int64
		database.DB.Model(&models.ProdutoTemplate{}).Where("categoria_id = ?", cat.ID).Count(&nTemplates)
		if nTemplates > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria tem templates associados, remova os templates primeiro")
		}

		if err := database.DB.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover a categoria")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "categoria",
				EntityID:    cat.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Categoria de produto removida: %s", cat.Nome),
				Before:      categoriaToResponse(&cat),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
