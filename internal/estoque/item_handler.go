package estoque

import (
	"fmt"
	"strings"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemEstocavelResponse struct {
	ID                  uint            `json:"id"`
	CategoriaID         uint            `json:"categoria_id"`
	CategoriaNome       string          `json:"categoria_nome"`
	Nome                string          `json:"nome"`
	Descricao           string          `json:"descricao"`
	CodigoSKUFornecedor string          `json:"codigo_sku_fornecedor"`
	CodigoInterno       string          `json:"codigo_interno"`
	Unidade             string          `json:"unidade"`
	Disponivel          decimal.Decimal `json:"disponivel"`
	CreatedAt           string          `json:"created_at"`
}

type CreateItemEstocavelRequest struct {
	CategoriaID         uint   `json:"categoria_id"`
	Nome                string `json:"nome"`
	Descricao           string `json:"descricao"`
	CodigoSKUFornecedor string `json:"codigo_sku_fornecedor"`
	Unidade             string `json:"unidade"`
}

type UpdateItemEstocavelRequest struct {
	Nome                *string `json:"nome"`
	Descricao           *string `json:"descricao"`
	CodigoSKUFornecedor *string `json:"codigo_sku_fornecedor"`
	Unidade             *string `json:"unidade"`
}

var unidadesValidas = map[string]bool{
	"un": true, "m": true, "m2": true, "m3": true, "kg": true, "L": true,
}

func itemToResponse(item *models.ItemEstocavel, disponivel decimal.Decimal) ItemEstocavelResponse {
	return ItemEstocavelResponse{
		ID:                  item.ID,
		CategoriaID:         item.CategoriaID,
		CategoriaNome:       item.Categoria.Nome,
		Nome:                item.Nome,
		Descricao:           item.Descricao,
		CodigoSKUFornecedor: item.CodigoSKUFornecedor,
		CodigoInterno:       item.CodigoInterno,
		Unidade:             item.Unidade,
		Disponivel:          disponivel,
		CreatedAt:           item.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Soma de quantidade_atual dos lotes por item, numa query só para a listagem.
func disponivelPorItem(db *gorm.DB, itemIDs []uint) (map[uint]decimal.Decimal, error) {
	type linha struct {
		ItemID uint
		Total  decimal.Decimal
	}
	var linhas []linha
	if err := db.Model(&models.Lote{}).
		Select("item_id, COALESCE(SUM(quantidade_atual), 0) AS total").
		Where("item_id IN ?", itemIDs).
		Group("item_id").
		Scan(&linhas).Error; err != nil {
		return nil, err
	}
	totais := make(map[uint]decimal.Decimal, len(linhas))
	for _, l := range linhas {
		totais[l.ItemID] = l.Total
	}
	return totais, nil
}

// Atribui a próxima sequência da categoria e monta o código interno
// (ex: PNL-0001). Corre dentro da transação de criação; o índice único
// (categoria_id, codigo_sequencia) apanha corridas entre duas criações.
func gerarCodigoInterno(tx *gorm.DB, cat *models.CategoriaItem) (uint, string, error) {
	var maxSeq uint
	if err := tx.Model(&models.ItemEstocavel{}).
		Where("categoria_id = ?", cat.ID).
		Select("COALESCE(MAX(codigo_sequencia), 0)").
		Scan(&maxSeq).Error; err != nil {
		return 0, "", err
	}
	seq := maxSeq + 1
	return seq, fmt.Sprintf("%s-%04d", cat.Codigo, seq), nil
}

// GET /api/itens-estocaveis?categoria_id=...&q=...
func ListItensEstocaveisHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Categoria").Model(&models.ItemEstocavel{})

		if catStr := c.Query("categoria_id"); catStr != "" {
			var catID uint
			if _, err := fmt.Sscan(catStr, &catID); err == nil && catID > 0 {
				dbq = dbq.Where("categoria_id = ?", catID)
			}
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("nome LIKE ? OR codigo_interno LIKE ? OR codigo_sku_fornecedor LIKE ?", like, like, like)
		}

		var itens []models.ItemEstocavel
		if err := dbq.Order("codigo_interno asc").Find(&itens).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os itens")
		}

		ids := make([]uint, 0, len(itens))
		for i := range itens {
			ids = append(ids, itens[i].ID)
		}
		totais := map[uint]decimal.Decimal{}
		if len(ids) > 0 {
			var err error
			totais, err = disponivelPorItem(database.DB, ids)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível calcular o estoque disponível")
			}
		}

		res := make([]ItemEstocavelResponse, 0, len(itens))
		for i := range itens {
			res = append(res, itemToResponse(&itens[i], totais[itens[i].ID]))
		}
		return c.JSON(res)
	}
}

// GET /api/itens-estocaveis/:id
func GetItemEstocavelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.ItemEstocavel
		if err := database.DB.Preload("Categoria").First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		disponivel, err := NewLedger(database.DB).Disponivel(item.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível calcular o estoque disponível")
		}

		return c.JSON(itemToResponse(&item, disponivel))
	}
}

// POST /api/itens-estocaveis
func CreateItemEstocavelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemEstocavelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome do item é obrigatório")
		}
		if body.Unidade == "" {
			body.Unidade = "un"
		}
		if !unidadesValidas[body.Unidade] {
			return fiber.NewError(fiber.StatusBadRequest, "Unidade inválida (un, m, m2, m3, kg, L)")
		}

		var cat models.CategoriaItem
		if err := database.DB.First(&cat, "id = ?", body.CategoriaID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria não encontrada")
		}

		var item models.ItemEstocavel
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			seq, codigo, err := gerarCodigoInterno(tx, &cat)
			if err != nil {
				return err
			}
			item = models.ItemEstocavel{
				CategoriaID:         cat.ID,
				Nome:                body.Nome,
				Descricao:           strings.TrimSpace(body.Descricao),
				CodigoSKUFornecedor: strings.TrimSpace(body.CodigoSKUFornecedor),
				CodigoSequencia:     seq,
				CodigoInterno:       codigo,
				Unidade:             body.Unidade,
			}
			return tx.Create(&item).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o item")
		}
		item.Categoria = cat

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item_estocavel",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Item estocável criado: %s %s", item.CodigoInterno, item.Nome),
				After:       itemToResponse(&item, decimal.Zero),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(itemToResponse(&item, decimal.Zero))
	}
}

// PUT /api/itens-estocaveis/:id
//
// Categoria e código interno são imutáveis: o código já pode estar impresso
// em etiquetas e registrado em movimentos antigos.
func UpdateItemEstocavelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.ItemEstocavel
		if err := database.DB.Preload("Categoria").First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}
		antes := itemToResponse(&item, decimal.Zero)

		var body UpdateItemEstocavelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Nome != nil {
			nome := strings.TrimSpace(*body.Nome)
			if nome == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome do item não pode ficar vazio")
			}
			item.Nome = nome
		}
		if body.Descricao != nil {
			item.Descricao = strings.TrimSpace(*body.Descricao)
		}
		if body.CodigoSKUFornecedor != nil {
			item.CodigoSKUFornecedor = strings.TrimSpace(*body.CodigoSKUFornecedor)
		}
		if body.Unidade != nil {
			if !unidadesValidas[*body.Unidade] {
				return fiber.NewError(fiber.StatusBadRequest, "Unidade inválida (un, m, m2, m3, kg, L)")
			}
			item.Unidade = *body.Unidade
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item_estocavel",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Item estocável atualizado: %s", item.CodigoInterno),
				Before:      antes,
				After:       itemToResponse(&item, decimal.Zero),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(itemToResponse(&item, decimal.Zero))
	}
}

// DELETE /api/itens-estocaveis/:id
func DeleteItemEstocavelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.ItemEstocavel
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		// Item com histórico de estoque nunca sai: os lotes e movimentos
		// referenciam o item e o razão deixaria de fechar.
		var nLotes int64
		database.DB.Model(&models.Lote{}).Where("item_id = ?", item.ID).Count(&nLotes)
		if nLotes > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Item tem lotes registrados e não pode ser removido")
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item_estocavel",
				EntityID:    item.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Item estocável removido: %s %s", item.CodigoInterno, item.Nome),
				Before:      itemToResponse(&item, decimal.Zero),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
