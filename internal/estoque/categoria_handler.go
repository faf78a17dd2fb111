package estoque

import (
	"fmt"
	"strings"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CategoriaItemResponse struct {
	ID        uint   `json:"id"`
	Nome      string `json:"nome"`
	Codigo    string `json:"codigo"`
	ParentID  *uint  `json:"parent_id"`
	CreatedAt string `json:"created_at"`
}

type CreateCategoriaItemRequest struct {
	Nome     string `json:"nome"`
	Codigo   string `json:"codigo"`
	ParentID *uint  `json:"parent_id"`
}

type UpdateCategoriaItemRequest struct {
	Nome     *string `json:"nome"`
	ParentID *uint   `json:"parent_id"`
}

func categoriaItemToResponse(cat *models.CategoriaItem) CategoriaItemResponse {
	return CategoriaItemResponse{
		ID:        cat.ID,
		Nome:      cat.Nome,
		Codigo:    cat.Codigo,
		ParentID:  cat.ParentID,
		CreatedAt: cat.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/categorias-item
func ListCategoriasItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categorias []models.CategoriaItem
		if err := database.DB.Order("nome asc").Find(&categorias).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as categorias")
		}

		res := make([]CategoriaItemResponse, 0, len(categorias))
		for i := range categorias {
			res = append(res, categoriaItemToResponse(&categorias[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/categorias-item
func CreateCategoriaItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoriaItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Nome = strings.TrimSpace(body.Nome)
		body.Codigo = strings.ToUpper(strings.TrimSpace(body.Codigo))
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome da categoria é obrigatório")
		}
		if body.Codigo == "" || len(body.Codigo) > 10 {
			return fiber.NewError(fiber.StatusBadRequest, "Código da categoria deve ter entre 1 e 10 caracteres")
		}

		// O código vira prefixo dos códigos internos, tem de ser único
		var existente models.CategoriaItem
		if err := database.DB.Where("codigo = ?", body.Codigo).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe uma categoria com este código")
		}

		if body.ParentID != nil {
			var parent models.CategoriaItem
			if err := database.DB.First(&parent, "id = ?", *body.ParentID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Categoria pai não encontrada")
			}
		}

		cat := models.CategoriaItem{
			Nome:     body.Nome,
			Codigo:   body.Codigo,
			ParentID: body.ParentID,
		}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a categoria")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "categoria_item",
				EntityID:    cat.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Categoria de item criada: %s (%s)", cat.Nome, cat.Codigo),
				After:       categoriaItemToResponse(&cat),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(categoriaItemToResponse(&cat))
	}
}

// PUT /api/categorias-item/:id
//
// O código nunca muda depois de criado: os códigos internos já gerados
// carregam o prefixo antigo e deixariam de bater com a categoria.
func UpdateCategoriaItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.CategoriaItem
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Categoria não encontrada")
		}
		antes := categoriaItemToResponse(&cat)

		var body UpdateCategoriaItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Nome != nil {
			nome := strings.TrimSpace(*body.Nome)
			if nome == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome da categoria não pode ficar vazio")
			}
			cat.Nome = nome
		}
		if body.ParentID != nil {
			if *body.ParentID == cat.ID {
				return fiber.NewError(fiber.StatusBadRequest, "Categoria não pode ser pai de si mesma")
			}
			var parent models.CategoriaItem
			if err := database.DB.First(&parent, "id = ?", *body.ParentID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Categoria pai não encontrada")
			}
			cat.ParentID = body.ParentID
		}

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a categoria")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "categoria_item",
				EntityID:    cat.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Categoria de item atualizada: %s", cat.Nome),
				Before:      antes,
				After:       categoriaItemToResponse(&cat),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(categoriaItemToResponse(&cat))
	}
}

// DELETE /api/categorias-item/:id
func DeleteCategoriaItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.CategoriaItem
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Categoria não encontrada")
		}

		var nItens int64
		database.DB.Model(&models.ItemEstocavel{}).Where("categoria_id = ?", cat.ID).Count(&nItens)
		if nItens > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria tem itens associados, remova os itens primeiro")
		}

		var nFilhas int64
		database.DB.Model(&models.CategoriaItem{}).Where("parent_id = ?", cat.ID).Count(&nFilhas)
		if nFilhas > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria tem subcategorias, remova as subcategorias primeiro")
		}

		if err := database.DB.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover a categoria")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "categoria_item",
				EntityID:    cat.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Categoria de item removida: %s (%s)", cat.Nome, cat.Codigo),
				Before:      categoriaItemToResponse(&cat),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
