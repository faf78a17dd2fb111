package estoque

import (
	"fmt"

	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type MovimentoResponse struct {
	ID              uint                 `json:"id"`
	LoteID          uint                 `json:"lote_id"`
	ItemID          uint                 `json:"item_id"`
	CodigoInterno   string               `json:"codigo_interno"`
	Quantidade      decimal.Decimal      `json:"quantidade"`
	ValorAssinado   decimal.Decimal      `json:"valor_assinado"`
	Tipo            models.TipoMovimento `json:"tipo"`
	UserID          uint                 `json:"user_id"`
	UserName        string               `json:"user_name"`
	OrigemConsumoID *uint                `json:"origem_consumo_id"`
	Observacao      string               `json:"observacao"`
	CreatedAt       string               `json:"created_at"`
}

// GET /api/movimentos-estoque?lote_id=...&item_id=...&tipo=SAIDA
func ListMovimentosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.MovimentoEstoque{}).
			Preload("Lote.Item").Preload("User")

		if loteStr := c.Query("lote_id"); loteStr != "" {
			var loteID uint
			if _, err := fmt.Sscan(loteStr, &loteID); err == nil && loteID > 0 {
				dbq = dbq.Where("lote_id = ?", loteID)
			}
		}
		if itemStr := c.Query("item_id"); itemStr != "" {
			var itemID uint
			if _, err := fmt.Sscan(itemStr, &itemID); err == nil && itemID > 0 {
				dbq = dbq.Where("lote_id IN (?)", database.DB.Model(&models.Lote{}).Select("id").Where("item_id = ?", itemID))
			}
		}
		if tipo := c.Query("tipo"); tipo != "" {
			switch models.TipoMovimento(tipo) {
			case models.MovimentoEntrada, models.MovimentoSaida, models.MovimentoAjustePositivo, models.MovimentoAjusteNegativo:
				dbq = dbq.Where("tipo = ?", tipo)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "Tipo de movimento inválido")
			}
		}

		var movimentos []models.MovimentoEstoque
		if err := dbq.Order("created_at DESC, id DESC").Limit(1000).Find(&movimentos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os movimentos")
		}

		res := make([]MovimentoResponse, 0, len(movimentos))
		for i := range movimentos {
			m := &movimentos[i]
			res = append(res, MovimentoResponse{
				ID:              m.ID,
				LoteID:          m.LoteID,
				ItemID:          m.Lote.ItemID,
				CodigoInterno:   m.Lote.Item.CodigoInterno,
				Quantidade:      m.Quantidade,
				ValorAssinado:   m.ValorAssinado(),
				Tipo:            m.Tipo,
				UserID:          m.UserID,
				UserName:        m.User.Name,
				OrigemConsumoID: m.OrigemConsumoID,
				Observacao:      m.Observacao,
				CreatedAt:       m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
