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
)

type LoteResponse struct {
	ID                uint            `json:"id"`
	ItemID            uint            `json:"item_id"`
	QuantidadeInicial decimal.Decimal `json:"quantidade_inicial"`
	QuantidadeAtual   decimal.Decimal `json:"quantidade_atual"`
	CustoUnitario     decimal.Decimal `json:"custo_unitario"`
	Esgotado          bool            `json:"esgotado"`
	CreatedAt         string          `json:"created_at"`
}

type RegistrarEntradaRequest struct {
	Quantidade    decimal.Decimal `json:"quantidade"`
	CustoUnitario decimal.Decimal `json:"custo_unitario"`
	Observacao    string          `json:"observacao"`
}

// A contagem física substitui a quantidade registrada; o delta sai da
// diferença entre as duas.
type AjusteContagemRequest struct {
	QuantidadeContada decimal.Decimal `json:"quantidade_contada"`
	CustoUnitario     decimal.Decimal `json:"custo_unitario"`
	Justificativa     string          `json:"justificativa"`
}

func loteToResponse(l *models.Lote) LoteResponse {
	return LoteResponse{
		ID:                l.ID,
		ItemID:            l.ItemID,
		QuantidadeInicial: l.QuantidadeInicial,
		QuantidadeAtual:   l.QuantidadeAtual,
		CustoUnitario:     l.CustoUnitario,
		Esgotado:          l.Esgotado(),
		CreatedAt:         l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/itens-estocaveis/:id/entradas
func RegistrarEntradaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("id")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID do item inválido")
		}

		var item models.ItemEstocavel
		if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		var body RegistrarEntradaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if !body.Quantidade.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade da entrada deve ser positiva")
		}
		if body.CustoUnitario.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Custo unitário não pode ser negativo")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		lote, err := NewLedger(database.DB).RegistrarEntrada(item.ID, body.Quantidade, body.CustoUnitario, userID, strings.TrimSpace(body.Observacao))
		if err != nil {
			return fiberErrDoRazao(err, "Não foi possível registrar a entrada")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "lote",
			EntityID:    lote.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Entrada de %s %s de %s", body.Quantidade, item.Unidade, item.CodigoInterno),
			After:       loteToResponse(lote),
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.Status(fiber.StatusCreated).JSON(loteToResponse(lote))
	}
}

// GET /api/itens-estocaveis/:id/lotes?ativos=true
func ListLotesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("id")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID do item inválido")
		}

		dbq := database.DB.Where("item_id = ?", itemID)
		if c.Query("ativos") == "true" {
			dbq = dbq.Where("quantidade_atual > 0")
		}

		var lotes []models.Lote
		if err := dbq.Order("created_at asc, id asc").Find(&lotes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os lotes")
		}

		res := make([]LoteResponse, 0, len(lotes))
		for i := range lotes {
			res = append(res, loteToResponse(&lotes[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/itens-estocaveis/:id/ajuste
//
// Ajuste de contagem ao nível do item: delta positivo abre um lote novo,
// delta negativo baixa FIFO sobre os lotes ativos.
func AjustarItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("id")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID do item inválido")
		}

		var item models.ItemEstocavel
		if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		var body AjusteContagemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if body.QuantidadeContada.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade contada não pode ser negativa")
		}
		justificativa := strings.TrimSpace(body.Justificativa)
		if justificativa == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Justificativa do ajuste é obrigatória")
		}

		ledger := NewLedger(database.DB)
		disponivel, err := ledger.Disponivel(item.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível calcular o estoque disponível")
		}

		delta := body.QuantidadeContada.Sub(disponivel)
		if delta.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade contada é igual à registrada, nada a ajustar")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		movimentos, err := ledger.AjustarItem(item.ID, delta, body.CustoUnitario, userID, justificativa)
		if err != nil {
			return fiberErrDoRazao(err, "Não foi possível ajustar o item")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "item_estocavel",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Ajuste de contagem de %s: %s -> %s (%s)", item.CodigoInterno, disponivel, body.QuantidadeContada, justificativa),
			Before:      fiber.Map{"disponivel": disponivel},
			After:       fiber.Map{"disponivel": body.QuantidadeContada},
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.JSON(fiber.Map{
			"delta":      delta,
			"movimentos": movimentos,
		})
	}
}

// POST /api/lotes/:id/ajuste
func AjustarLoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		loteID, err := c.ParamsInt("id")
		if err != nil || loteID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID do lote inválido")
		}

		var lote models.Lote
		if err := database.DB.First(&lote, "id = ?", loteID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lote não encontrado")
		}

		var body AjusteContagemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if body.QuantidadeContada.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade contada não pode ser negativa")
		}
		justificativa := strings.TrimSpace(body.Justificativa)
		if justificativa == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Justificativa do ajuste é obrigatória")
		}

		delta := body.QuantidadeContada.Sub(lote.QuantidadeAtual)
		if delta.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade contada é igual à registrada, nada a ajustar")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		movimento, err := NewLedger(database.DB).AjustarLote(lote.ID, delta, userID, justificativa)
		if err != nil {
			return fiberErrDoRazao(err, "Não foi possível ajustar o lote")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "lote",
			EntityID:    lote.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Ajuste de contagem do lote %d: %s -> %s (%s)", lote.ID, lote.QuantidadeAtual, body.QuantidadeContada, justificativa),
			Before:      fiber.Map{"quantidade_atual": lote.QuantidadeAtual},
			After:       fiber.Map{"quantidade_atual": body.QuantidadeContada},
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.JSON(movimento)
	}
}

// GET /api/lotes/:id/conferencia
//
// Confere o lote contra o razão: a soma assinada dos movimentos tem de
// bater com quantidade_atual.
func ConferirLoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		loteID, err := c.ParamsInt("id")
		if err != nil || loteID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID do lote inválido")
		}

		var lote models.Lote
		if err := database.DB.First(&lote, "id = ?", loteID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lote não encontrado")
		}

		saldo, err := NewLedger(database.DB).SaldoPorMovimentos(lote.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível reconstruir o saldo")
		}

		return c.JSON(fiber.Map{
			"lote_id":          lote.ID,
			"quantidade_atual": lote.QuantidadeAtual,
			"saldo_movimentos": saldo,
			"consistente":      saldo.Equal(lote.QuantidadeAtual),
		})
	}
}
