package consumos

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/auth"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/estoque"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
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

func parseData(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

type FichaObraResponse struct {
	ID              uint               `json:"id"`
	RefObra         string             `json:"ref_obra"`
	DataInicio      string             `json:"data_inicio"`
	PrevisaoEntrega string             `json:"previsao_entrega"`
	ResponsavelID   uint               `json:"responsavel_id"`
	Responsavel     string             `json:"responsavel"`
	Status          models.StatusFicha `json:"status"`
	NumConsumos     int                `json:"num_consumos"`
	CustoMaterial   decimal.Decimal    `json:"custo_material"`
	CreatedAt       string             `json:"created_at"`
}

type ItemConsumidoResponse struct {
	ID                 uint            `json:"id"`
	ItemID             uint            `json:"item_id"`
	CodigoInterno      string          `json:"codigo_interno"`
	ItemNome           string          `json:"item_nome"`
	DataConsumo        string          `json:"data_consumo"`
	Quantidade         decimal.Decimal `json:"quantidade"`
	Unidade            string          `json:"unidade"`
	DescricaoDetalhada string          `json:"descricao_detalhada"`
	CustoFIFO          decimal.Decimal `json:"custo_fifo"`
}

type CreateFichaObraRequest struct {
	RefObra         string `json:"ref_obra"`
	DataInicio      string `json:"data_inicio"`
	PrevisaoEntrega string `json:"previsao_entrega"`
	ResponsavelID   *uint  `json:"responsavel_id"`
}

type UpdateFichaObraRequest struct {
	PrevisaoEntrega *string             `json:"previsao_entrega"`
	Status          *models.StatusFicha `json:"status"`
}

type RegistrarConsumoRequest struct {
	ItemID             uint            `json:"item_id"`
	Quantidade         decimal.Decimal `json:"quantidade"`
	DataConsumo        string          `json:"data_consumo"`
	DescricaoDetalhada string          `json:"descricao_detalhada"`
}

var statusValidos = map[models.StatusFicha]bool{
	models.FichaPlanejada:   true,
	models.FichaEmAndamento: true,
	models.FichaConcluida:   true,
	models.FichaCancelada:   true,
}

func fichaToResponse(f *models.FichaConsumoObra) FichaObraResponse {
	custo := decimal.Zero
	for i := range f.ItensConsumidos {
		custo = custo.Add(f.ItensConsumidos[i].CustoFIFO)
	}
	return FichaObraResponse{
		ID:              f.ID,
		RefObra:         f.RefObra,
		DataInicio:      f.DataInicio.Format("2006-01-02"),
		PrevisaoEntrega: f.PrevisaoEntrega.Format("2006-01-02"),
		ResponsavelID:   f.ResponsavelID,
		Responsavel:     f.Responsavel.Name,
		Status:          f.Status,
		NumConsumos:     len(f.ItensConsumidos),
		CustoMaterial:   custo,
		CreatedAt:       f.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func consumoToResponse(ic *models.ItemConsumido) ItemConsumidoResponse {
	return ItemConsumidoResponse{
		ID:                 ic.ID,
		ItemID:             ic.ItemID,
		CodigoInterno:      ic.Item.CodigoInterno,
		ItemNome:           ic.Item.Nome,
		DataConsumo:        ic.DataConsumo.Format("2006-01-02"),
		Quantidade:         ic.Quantidade,
		Unidade:            ic.Unidade,
		DescricaoDetalhada: ic.DescricaoDetalhada,
		CustoFIFO:          ic.CustoFIFO,
	}
}

// GET /api/fichas-obra?status=em_andamento
func ListFichasObraHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Responsavel").Preload("ItensConsumidos")
		if st := c.Query("status"); st != "" {
			if !statusValidos[models.StatusFicha(st)] {
				return fiber.NewError(fiber.StatusBadRequest, "Status inválido")
			}
			dbq = dbq.Where("status = ?", st)
		}

		var fichas []models.FichaConsumoObra
		if err := dbq.Order("data_inicio DESC").Find(&fichas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as fichas de obra")
		}

		res := make([]FichaObraResponse, 0, len(fichas))
		for i := range fichas {
			res = append(res, fichaToResponse(&fichas[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/fichas-obra/:id
func GetFichaObraHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ficha models.FichaConsumoObra
		err := database.DB.Preload("Responsavel").
			Preload("ItensConsumidos.Item").
			First(&ficha, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ficha de obra não encontrada")
		}

		consumos := make([]ItemConsumidoResponse, 0, len(ficha.ItensConsumidos))
		for i := range ficha.ItensConsumidos {
			consumos = append(consumos, consumoToResponse(&ficha.ItensConsumidos[i]))
		}

		return c.JSON(fiber.Map{
			"ficha":    fichaToResponse(&ficha),
			"consumos": consumos,
		})
	}
}

// POST /api/fichas-obra
func CreateFichaObraHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFichaObraRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.RefObra = strings.TrimSpace(body.RefObra)
		if body.RefObra == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Referência da obra é obrigatória")
		}

		dataInicio, err := parseData(body.DataInicio)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Data de início inválida (use AAAA-MM-DD)")
		}
		previsao, err := parseData(body.PrevisaoEntrega)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Previsão de entrega inválida (use AAAA-MM-DD)")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		responsavelID := userID
		if body.ResponsavelID != nil {
			var resp models.User
			if err := database.DB.First(&resp, "id = ?", *body.ResponsavelID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Responsável não encontrado")
			}
			responsavelID = resp.ID
		}

		var existente models.FichaConsumoObra
		if err := database.DB.Where("ref_obra = ?", body.RefObra).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe uma ficha para esta obra")
		}

		ficha := models.FichaConsumoObra{
			RefObra:         body.RefObra,
			DataInicio:      dataInicio,
			PrevisaoEntrega: previsao,
			ResponsavelID:   responsavelID,
			Status:          models.FichaPlanejada,
		}
		if err := database.DB.Create(&ficha).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a ficha de obra")
		}
		database.DB.Preload("Responsavel").First(&ficha, ficha.ID)

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "ficha_obra",
			EntityID:    ficha.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Ficha de obra criada: %s", ficha.RefObra),
			After:       fichaToResponse(&ficha),
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.Status(fiber.StatusCreated).JSON(fichaToResponse(&ficha))
	}
}

// PUT /api/fichas-obra/:id
func UpdateFichaObraHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ficha models.FichaConsumoObra
		if err := database.DB.Preload("Responsavel").Preload("ItensConsumidos").First(&ficha, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ficha de obra não encontrada")
		}
		antes := fichaToResponse(&ficha)

		var body UpdateFichaObraRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.PrevisaoEntrega != nil {
			previsao, err := parseData(*body.PrevisaoEntrega)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Previsão de entrega inválida (use AAAA-MM-DD)")
			}
			ficha.PrevisaoEntrega = previsao
		}
		if body.Status != nil {
			if !statusValidos[*body.Status] {
				return fiber.NewError(fiber.StatusBadRequest, "Status inválido")
			}
			ficha.Status = *body.Status
		}

		if err := database.DB.Save(&ficha).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a ficha")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "ficha_obra",
				EntityID:    ficha.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Ficha de obra atualizada: %s", ficha.RefObra),
				Before:      antes,
				After:       fichaToResponse(&ficha),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(fichaToResponse(&ficha))
	}
}

// POST /api/fichas-obra/:id/consumos
func RegistrarConsumoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fichaID, err := c.ParamsInt("id")
		if err != nil || fichaID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID da ficha inválido")
		}

		var body RegistrarConsumoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		var dataConsumo time.Time
		if body.DataConsumo != "" {
			dataConsumo, err = parseData(body.DataConsumo)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Data do consumo inválida (use AAAA-MM-DD)")
			}
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		consumo, err := RegistrarConsumo(database.DB, uint(fichaID), body.ItemID, body.Quantidade,
			dataConsumo, strings.TrimSpace(body.DescricaoDetalhada), userID)
		if err != nil {
			var insuf *estoque.EstoqueInsuficienteError
			if errors.As(err, &insuf) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, insuf.Error())
			}
			if errors.Is(err, estoque.ErrConflitoConcorrencia) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "item_consumido",
			EntityID:    consumo.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Consumo registrado: %s %s de %s", consumo.Quantidade, consumo.Unidade, consumo.Item.CodigoInterno),
			After:       consumoToResponse(consumo),
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.Status(fiber.StatusCreated).JSON(consumoToResponse(consumo))
	}
}

// DELETE /api/fichas-obra/:id/consumos/:consumoID
//
// Remove só o registro da ficha. Os movimentos de estoque da baixa ficam:
// o material saiu fisicamente do armazém e o razão tem de continuar a
// fechar com os lotes.
func DeleteConsumoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var consumo models.ItemConsumido
		err := database.DB.Preload("Item").
			First(&consumo, "id = ? AND ficha_obra_id = ?", c.Params("consumoID"), c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Consumo não encontrado nesta ficha")
		}

		if err := database.DB.Delete(&consumo).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o consumo")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item_consumido",
				EntityID:    consumo.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Consumo removido da ficha (estoque não reposto): %s %s de %s", consumo.Quantidade, consumo.Unidade, consumo.Item.CodigoInterno),
				Before:      consumoToResponse(&consumo),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
