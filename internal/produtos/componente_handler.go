package produtos

import (
	"fmt"
	"strings"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ComponenteInstanciaResponse struct {
	ID                 uint            `json:"id"`
	ItemID             uint            `json:"item_id"`
	CodigoInterno      string          `json:"codigo_interno"`
	ItemNome           string          `json:"item_nome"`
	Unidade            string          `json:"unidade"`
	Quantidade         decimal.Decimal `json:"quantidade"`
	DescricaoDetalhada string          `json:"descricao_detalhada"`
}

type AddComponenteRequest struct {
	ItemID             uint            `json:"item_id"`
	Quantidade         decimal.Decimal `json:"quantidade"`
	DescricaoDetalhada string          `json:"descricao_detalhada"`
}

func componenteToResponse(comp *models.InstanciaComponente) ComponenteInstanciaResponse {
	return ComponenteInstanciaResponse{
		ID:                 comp.ID,
		ItemID:             comp.ItemID,
		CodigoInterno:      comp.Item.CodigoInterno,
		ItemNome:           comp.Item.Nome,
		Unidade:            comp.Item.Unidade,
		Quantidade:         comp.Quantidade,
		DescricaoDetalhada: comp.DescricaoDetalhada,
	}
}

// POST /api/produto-instancias/:id/componentes
func AddComponenteInstanciaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inst models.ProdutoInstancia
		if err := database.DB.First(&inst, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instância não encontrada")
		}

		var body AddComponenteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if !body.Quantidade.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade do componente deve ser positiva")
		}

		var item models.ItemEstocavel
		if err := database.DB.First(&item, "id = ?", body.ItemID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Item estocável não encontrado")
		}

		comp := models.InstanciaComponente{
			InstanciaID:        inst.ID,
			ItemID:             item.ID,
			Quantidade:         body.Quantidade,
			DescricaoDetalhada: strings.TrimSpace(body.DescricaoDetalhada),
		}
		if err := database.DB.Create(&comp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível adicionar o componente")
		}
		comp.Item = item

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "instancia_componente",
				EntityID:    comp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Componente adicionado a %s: %s %s de %s", inst.Codigo, comp.Quantidade, item.Unidade, item.CodigoInterno),
				After:       componenteToResponse(&comp),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(componenteToResponse(&comp))
	}
}

// DELETE /api/produto-instancias/:id/componentes/:compID
func DeleteComponenteInstanciaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var comp models.InstanciaComponente
		err := database.DB.Preload("Item").
			First(&comp, "id = ? AND instancia_id = ?", c.Params("compID"), c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Componente não encontrado nesta instância")
		}

		if err := database.DB.Delete(&comp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o componente")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "instancia_componente",
				EntityID:    comp.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Componente removido: %s de %s", comp.Item.CodigoInterno, c.Params("id")),
				Before:      componenteToResponse(&comp),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
