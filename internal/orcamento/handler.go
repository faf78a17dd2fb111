package orcamento

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/auth"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"
	"tdm-backend/internal/produtos"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
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

type OrcamentoResponse struct {
	ID              uint   `json:"id"`
	CodigoLegado    string `json:"codigo_legado"`
	Versao          uint   `json:"versao"`
	VersaoBase      uint   `json:"versao_base"`
	NomeCliente     string `json:"nome_cliente"`
	TipoCliente     string `json:"tipo_cliente"`
	CodigoCliente   string `json:"codigo_cliente"`
	CodigoAgente    string `json:"codigo_agente"`
	DataSolicitacao string `json:"data_solicitacao"`
	NumItens        int    `json:"num_itens"`
	CreatedAt       string `json:"created_at"`
}

type ItemOrcamentoResponse struct {
	ID            uint            `json:"id"`
	InstanciaID   uint            `json:"instancia_id"`
	Codigo        string          `json:"codigo"`
	Descricao     string          `json:"descricao"`
	Unidade       string          `json:"unidade"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Total         decimal.Decimal `json:"total"`
}

type LinhaAgrupadaResponse struct {
	Codigo   string                 `json:"codigo"` // 1, 1.1, 1.1.1
	Nivel    string                 `json:"nivel"`  // categoria, template, item
	Nome     string                 `json:"nome"`
	Item     *ItemOrcamentoResponse `json:"item,omitempty"`
	Subtotal *decimal.Decimal       `json:"subtotal,omitempty"`
}

type OrcamentoDetalheResponse struct {
	OrcamentoResponse
	Linhas     []LinhaAgrupadaResponse `json:"linhas"`
	TotalGeral decimal.Decimal         `json:"total_geral"`
}

type CreateOrcamentoRequest struct {
	CodigoLegado string `json:"codigo_legado"`
}

type UpdateOrcamentoRequest struct {
	NomeCliente     *string `json:"nome_cliente"`
	DataSolicitacao *string `json:"data_solicitacao"`
}

type AddItemRequest struct {
	TemplateID    uint                          `json:"template_id"`
	Atributos     []produtos.ValorAtributoInput `json:"atributos"`
	Quantidade    int                           `json:"quantidade"`
	PrecoUnitario decimal.Decimal               `json:"preco_unitario"`
}

type UpdateItemRequest struct {
	Quantidade    *int             `json:"quantidade"`
	PrecoUnitario *decimal.Decimal `json:"preco_unitario"`
}

func orcamentoToResponse(o *models.Orcamento) OrcamentoResponse {
	data := ""
	if o.DataSolicitacao != nil {
		data = o.DataSolicitacao.Format("2006-01-02")
	}
	return OrcamentoResponse{
		ID:              o.ID,
		CodigoLegado:    o.CodigoLegado,
		Versao:          o.Versao,
		VersaoBase:      o.VersaoBase,
		NomeCliente:     o.NomeCliente,
		TipoCliente:     o.TipoCliente,
		CodigoCliente:   o.CodigoCliente,
		CodigoAgente:    o.CodigoAgente,
		DataSolicitacao: data,
		NumItens:        len(o.Itens),
		CreatedAt:       o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func carregarOrcamento(id string) (*models.Orcamento, error) {
	var orc models.Orcamento
	err := database.DB.
		Preload("Itens.Instancia.Template.Categoria").
		Preload("Itens.Instancia.Atributos.TemplateAtributo.Atributo").
		Preload("Itens.Instancia.Componentes.Item").
		First(&orc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &orc, nil
}

// Achata a visão agrupada numa lista de linhas numeradas, pronta para a
// tabela do frontend com o mesmo aspeto do Excel exportado.
func visaoParaLinhas(visao *VisaoAgrupada) []LinhaAgrupadaResponse {
	var linhas []LinhaAgrupadaResponse
	for iCat, cat := range visao.Categorias {
		sub := cat.Subtotal
		linhas = append(linhas, LinhaAgrupadaResponse{
			Codigo:   fmt.Sprintf("%d", iCat+1),
			Nivel:    "categoria",
			Nome:     cat.Nome,
			Subtotal: &sub,
		})
		for iTpl, tpl := range cat.Templates {
			subTpl := tpl.Subtotal
			linhas = append(linhas, LinhaAgrupadaResponse{
				Codigo:   fmt.Sprintf("%d.%d", iCat+1, iTpl+1),
				Nivel:    "template",
				Nome:     tpl.Nome,
				Subtotal: &subTpl,
			})
			for iLin, ln := range tpl.Linhas {
				item := ItemOrcamentoResponse{
					ID:            ln.Item.ID,
					InstanciaID:   ln.Item.InstanciaID,
					Codigo:        ln.Item.Instancia.Codigo,
					Descricao:     ln.Descricao,
					Unidade:       tpl.Unidade,
					Quantidade:    ln.Item.Quantidade,
					PrecoUnitario: ln.Item.PrecoUnitario,
					Total:         ln.Total,
				}
				linhas = append(linhas, LinhaAgrupadaResponse{
					Codigo: fmt.Sprintf("%d.%d.%d", iCat+1, iTpl+1, iLin+1),
					Nivel:  "item",
					Nome:   ln.Descricao,
					Item:   &item,
				})
			}
		}
	}
	return linhas
}

// GET /api/orcamentos?codigo=...
func ListOrcamentosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Itens").Model(&models.Orcamento{})
		if cod := strings.TrimSpace(c.Query("codigo")); cod != "" {
			dbq = dbq.Where("codigo_legado LIKE ?", "%"+cod+"%")
		}

		var orcamentos []models.Orcamento
		if err := dbq.Order("created_at DESC").Limit(500).Find(&orcamentos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os orçamentos")
		}

		res := make([]OrcamentoResponse, 0, len(orcamentos))
		for i := range orcamentos {
			res = append(res, orcamentoToResponse(&orcamentos[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/orcamentos/:id
func GetOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orc, err := carregarOrcamento(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}

		visao := Agrupar(orc.Itens)
		return c.JSON(OrcamentoDetalheResponse{
			OrcamentoResponse: orcamentoToResponse(orc),
			Linhas:            visaoParaLinhas(visao),
			TotalGeral:        visao.TotalGeral,
		})
	}
}

// POST /api/orcamentos
func CreateOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrcamentoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		codigo := strings.TrimSpace(body.CodigoLegado)
		dados, err := ParseCodigoLegado(codigo)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var existente models.Orcamento
		if err := database.DB.Where("codigo_legado = ? AND versao = ?", codigo, dados.Versao).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Um orçamento com o código '%s' e versão %d já existe", codigo, dados.Versao))
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		data := dados.DataSolicitacao
		orc := models.Orcamento{
			CodigoLegado:    codigo,
			Versao:          dados.Versao,
			VersaoBase:      dados.Versao,
			UserID:          userID,
			NomeCliente:     dados.NomeCliente,
			TipoCliente:     dados.TipoCliente,
			CodigoCliente:   dados.CodigoCliente,
			CodigoAgente:    dados.CodigoAgente,
			DataSolicitacao: &data,
		}
		if err := database.DB.Create(&orc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o orçamento")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "orcamento",
			EntityID:    orc.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Orçamento criado: %s", orc.CodigoLegado),
			After:       orcamentoToResponse(&orc),
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.Status(fiber.StatusCreated).JSON(orcamentoToResponse(&orc))
	}
}

// PUT /api/orcamentos/:id
//
// O código legado e a versão são imutáveis; o que se corrige aqui são os
// dados do cliente, que o código só traz de forma abreviada.
func UpdateOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orc models.Orcamento
		if err := database.DB.First(&orc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}
		antes := orcamentoToResponse(&orc)

		var body UpdateOrcamentoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.NomeCliente != nil {
			nome := strings.TrimSpace(*body.NomeCliente)
			if nome == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome do cliente não pode ficar vazio")
			}
			orc.NomeCliente = nome
		}
		if body.DataSolicitacao != nil {
			data, err := time.Parse("2006-01-02", *body.DataSolicitacao)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Data de solicitação inválida (use AAAA-MM-DD)")
			}
			orc.DataSolicitacao = &data
		}

		if err := database.DB.Save(&orc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o orçamento")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "orcamento",
				EntityID:    orc.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Orçamento atualizado: %s", orc.CodigoLegado),
				Before:      antes,
				After:       orcamentoToResponse(&orc),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(orcamentoToResponse(&orc))
	}
}

// DELETE /api/orcamentos/:id
func DeleteOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orc, err := carregarOrcamento(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for i := range orc.Itens {
				item := &orc.Itens[i]
				if err := tx.Where("instancia_id = ?", item.InstanciaID).Delete(&models.InstanciaAtributo{}).Error; err != nil {
					return err
				}
				if err := tx.Where("instancia_id = ?", item.InstanciaID).Delete(&models.InstanciaComponente{}).Error; err != nil {
					return err
				}
				if err := tx.Delete(&models.ItemOrcamento{}, item.ID).Error; err != nil {
					return err
				}
				if err := tx.Delete(&models.ProdutoInstancia{}, item.InstanciaID).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&models.Orcamento{}, orc.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o orçamento")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "orcamento",
				EntityID:    orc.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Orçamento excluído: %s", orc.CodigoLegado),
				Before:      orcamentoToResponse(orc),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/orcamentos/:id/itens
//
// Cria a instância do produto e o item numa transação só; a instância nasce
// ligada a este orçamento e recebe o código <template>-<orcamento>-<n>.
func AddItemOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orc, err := carregarOrcamento(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}

		var body AddItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if body.Quantidade < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade deve ser pelo menos 1")
		}
		if body.PrecoUnitario.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Preço unitário não pode ser negativo")
		}

		var tpl models.ProdutoTemplate
		if err := database.DB.First(&tpl, "id = ?", body.TemplateID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Template não encontrado")
		}

		var item models.ItemOrcamento
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			codigo := fmt.Sprintf("%s-%d-%d", tpl.Nome, orc.ID, len(orc.Itens)+1)
			inst, err := produtos.CriarInstancia(tx, body.TemplateID, body.Atributos, codigo)
			if err != nil {
				return err
			}
			item = models.ItemOrcamento{
				OrcamentoID:   orc.ID,
				InstanciaID:   inst.ID,
				Quantidade:    body.Quantidade,
				PrecoUnitario: body.PrecoUnitario,
			}
			return tx.Create(&item).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item_orcamento",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Item adicionado ao orçamento %s: %s x%d", orc.CodigoLegado, tpl.Nome, item.Quantidade),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":             item.ID,
			"instancia_id":   item.InstanciaID,
			"quantidade":     item.Quantidade,
			"preco_unitario": item.PrecoUnitario,
			"total":          item.Total(),
		})
	}
}

// PUT /api/orcamentos/:id/itens/:itemID
func UpdateItemOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.ItemOrcamento
		if err := database.DB.First(&item, "id = ? AND orcamento_id = ?", c.Params("itemID"), c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado neste orçamento")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Quantidade != nil {
			if *body.Quantidade < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "Quantidade deve ser pelo menos 1")
			}
			item.Quantidade = *body.Quantidade
		}
		if body.PrecoUnitario != nil {
			if body.PrecoUnitario.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Preço unitário não pode ser negativo")
			}
			item.PrecoUnitario = *body.PrecoUnitario
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o item")
		}

		return c.JSON(fiber.Map{
			"id":             item.ID,
			"quantidade":     item.Quantidade,
			"preco_unitario": item.PrecoUnitario,
			"total":          item.Total(),
		})
	}
}

// DELETE /api/orcamentos/:id/itens/:itemID
func DeleteItemOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.ItemOrcamento
		if err := database.DB.First(&item, "id = ? AND orcamento_id = ?", c.Params("itemID"), c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado neste orçamento")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
			// A instância pertence ao item; sai com ele
			if err := tx.Where("instancia_id = ?", item.InstanciaID).Delete(&models.InstanciaAtributo{}).Error; err != nil {
				return err
			}
			if err := tx.Where("instancia_id = ?", item.InstanciaID).Delete(&models.InstanciaComponente{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.ProdutoInstancia{}, item.InstanciaID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o item")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/orcamentos/:id/versoes
//
// Clona o orçamento, os itens e as instâncias de produto numa nova versão
// independente. As versões partilham o código legado base; só o sufixo _V
// muda.
func VersionarOrcamentoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		original, err := carregarOrcamento(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		novaVersao := original.Versao + 1
		novoCodigo := CodigoParaVersao(original.CodigoLegado, novaVersao)

		var existente models.Orcamento
		if err := database.DB.Where("codigo_legado = ? AND versao = ?", novoCodigo, novaVersao).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("A versão %d do orçamento '%s' já existe", novaVersao, original.CodigoLegado))
		}

		var novo models.Orcamento
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			novo = models.Orcamento{
				CodigoLegado:    novoCodigo,
				Versao:          novaVersao,
				VersaoBase:      original.VersaoBase,
				UserID:          userID,
				NomeCliente:     original.NomeCliente,
				TipoCliente:     original.TipoCliente,
				CodigoCliente:   original.CodigoCliente,
				CodigoAgente:    original.CodigoAgente,
				DataSolicitacao: original.DataSolicitacao,
			}
			if err := tx.Create(&novo).Error; err != nil {
				return err
			}

			for i := range original.Itens {
				itemOriginal := &original.Itens[i]
				instOriginal := &itemOriginal.Instancia

				novaInst := models.ProdutoInstancia{
					TemplateID: instOriginal.TemplateID,
					Codigo:     fmt.Sprintf("%s-%d-%d", instOriginal.Template.Nome, novo.ID, itemOriginal.ID),
				}
				if err := tx.Create(&novaInst).Error; err != nil {
					return err
				}
				for j := range instOriginal.Atributos {
					ia := &instOriginal.Atributos[j]
					clone := models.InstanciaAtributo{
						InstanciaID:        novaInst.ID,
						TemplateAtributoID: ia.TemplateAtributoID,
						ValorTexto:         ia.ValorTexto,
						ValorNum:           ia.ValorNum,
					}
					if err := tx.Create(&clone).Error; err != nil {
						return err
					}
				}
				for j := range instOriginal.Componentes {
					ic := &instOriginal.Componentes[j]
					clone := models.InstanciaComponente{
						InstanciaID:        novaInst.ID,
						ItemID:             ic.ItemID,
						Quantidade:         ic.Quantidade,
						DescricaoDetalhada: ic.DescricaoDetalhada,
					}
					if err := tx.Create(&clone).Error; err != nil {
						return err
					}
				}

				novoItem := models.ItemOrcamento{
					OrcamentoID:   novo.ID,
					InstanciaID:   novaInst.ID,
					Quantidade:    itemOriginal.Quantidade,
					PrecoUnitario: itemOriginal.PrecoUnitario,
				}
				if err := tx.Create(&novoItem).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a nova versão")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "orcamento",
			EntityID:    novo.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Versão %d criada a partir de %s", novaVersao, original.CodigoLegado),
			After:       orcamentoToResponse(&novo),
		}); logErr != nil {
			config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
		}

		return c.Status(fiber.StatusCreated).JSON(orcamentoToResponse(&novo))
	}
}

// GET /api/orcamentos/:id/excel
func ExportOrcamentoExcelHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orc, err := carregarOrcamento(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}

		buf, err := ExportarOrcamentoExcel(cfg.ExcelTemplateDir, orc, Agrupar(orc.Itens))
		if err != nil {
			if errors.Is(err, ErrModeloNaoEncontrado) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			config.Log.WithError(err).Error("falha na exportação do orçamento")
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao exportar o orçamento para Excel")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="orcamento_%s.xlsx"`, orc.CodigoLegado))
		return c.Send(buf.Bytes())
	}
}

// GET /api/orcamentos/:id/ficha-producao
func ExportFichaProducaoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orc, err := carregarOrcamento(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orçamento não encontrado")
		}

		buf, err := ExportarFichaProducaoExcel(cfg.ExcelTemplateDir, orc, Agrupar(orc.Itens))
		if err != nil {
			if errors.Is(err, ErrModeloNaoEncontrado) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			config.Log.WithError(err).Error("falha na exportação da ficha de produção")
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao exportar a ficha de produção")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="ficha_producao_%s.xlsx"`, orc.CodigoLegado))
		return c.Send(buf.Bytes())
	}
}
