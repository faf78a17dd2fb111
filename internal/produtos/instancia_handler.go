package produtos

import (
	"fmt"
	"strings"

	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ValorAtributoInput struct {
	TemplateAtributoID uint             `json:"template_atributo_id"`
	ValorTexto         string           `json:"valor_texto"`
	ValorNum           *decimal.Decimal `json:"valor_num"`
}

type InstanciaAtributoResponse struct {
	TemplateAtributoID uint                `json:"template_atributo_id"`
	Nome               string              `json:"nome"`
	Tipo               models.TipoAtributo `json:"tipo"`
	ValorTexto         string              `json:"valor_texto,omitempty"`
	ValorNum           *decimal.Decimal    `json:"valor_num,omitempty"`
}

type ProdutoInstanciaResponse struct {
	ID           uint                          `json:"id"`
	TemplateID   uint                          `json:"template_id"`
	TemplateNome string                        `json:"template_nome"`
	Codigo       string                        `json:"codigo"`
	Descricao    string                        `json:"descricao"`
	Atributos    []InstanciaAtributoResponse   `json:"atributos"`
	Componentes  []ComponenteInstanciaResponse `json:"componentes"`
	CreatedAt    string                        `json:"created_at"`
}

type CreateProdutoInstanciaRequest struct {
	TemplateID uint                 `json:"template_id"`
	Atributos  []ValorAtributoInput `json:"atributos"`
}

type UpdateProdutoInstanciaRequest struct {
	Atributos []ValorAtributoInput `json:"atributos"`
}

func instanciaToResponse(inst *models.ProdutoInstancia) ProdutoInstanciaResponse {
	attrs := make([]InstanciaAtributoResponse, 0, len(inst.Atributos))
	for i := range inst.Atributos {
		ia := &inst.Atributos[i]
		attrs = append(attrs, InstanciaAtributoResponse{
			TemplateAtributoID: ia.TemplateAtributoID,
			Nome:               ia.TemplateAtributo.Atributo.Nome,
			Tipo:               ia.TemplateAtributo.Atributo.Tipo,
			ValorTexto:         ia.ValorTexto,
			ValorNum:           ia.ValorNum,
		})
	}
	comps := make([]ComponenteInstanciaResponse, 0, len(inst.Componentes))
	for i := range inst.Componentes {
		comps = append(comps, componenteToResponse(&inst.Componentes[i]))
	}
	return ProdutoInstanciaResponse{
		ID:           inst.ID,
		TemplateID:   inst.TemplateID,
		TemplateNome: inst.Template.Nome,
		Codigo:       inst.Codigo,
		Descricao:    DescricaoInstancia(inst),
		Atributos:    attrs,
		Componentes:  comps,
		CreatedAt:    inst.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func carregarInstancia(db *gorm.DB, id uint) (*models.ProdutoInstancia, error) {
	var inst models.ProdutoInstancia
	err := db.Preload("Template.Categoria").
		Preload("Atributos.TemplateAtributo.Atributo").
		Preload("Componentes.Item").
		First(&inst, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// Valida os valores contra os atributos do template: obrigatórios presentes
// e tipo do valor compatível com o tipo do atributo.
func validarValores(tpl *models.ProdutoTemplate, valores []ValorAtributoInput) error {
	porID := make(map[uint]*models.TemplateAtributo, len(tpl.Atributos))
	for i := range tpl.Atributos {
		porID[tpl.Atributos[i].ID] = &tpl.Atributos[i]
	}

	fornecidos := map[uint]bool{}
	for _, v := range valores {
		ta, ok := porID[v.TemplateAtributoID]
		if !ok {
			return fmt.Errorf("atributo %d não pertence ao template", v.TemplateAtributoID)
		}
		switch ta.Atributo.Tipo {
		case models.AtributoNumerico:
			if v.ValorNum == nil {
				return fmt.Errorf("atributo '%s' exige valor numérico", ta.Atributo.Nome)
			}
		case models.AtributoTexto:
			if strings.TrimSpace(v.ValorTexto) == "" {
				return fmt.Errorf("atributo '%s' exige valor de texto", ta.Atributo.Nome)
			}
		}
		fornecidos[v.TemplateAtributoID] = true
	}

	for i := range tpl.Atributos {
		ta := &tpl.Atributos[i]
		if ta.Obrigatorio && !fornecidos[ta.ID] {
			return fmt.Errorf("atributo obrigatório '%s' em falta", ta.Atributo.Nome)
		}
	}
	return nil
}

// CriarInstancia cria a instância com os seus valores dentro da transação
// dada. Usada pelo handler direto e pelo fluxo de adicionar item ao orçamento.
// Código vazio gera "<template>-<id>".
func CriarInstancia(tx *gorm.DB, templateID uint, valores []ValorAtributoInput, codigo string) (*models.ProdutoInstancia, error) {
	var tpl models.ProdutoTemplate
	if err := tx.Preload("Atributos.Atributo").First(&tpl, "id = ?", templateID).Error; err != nil {
		return nil, fmt.Errorf("template %d não encontrado", templateID)
	}

	if err := validarValores(&tpl, valores); err != nil {
		return nil, err
	}

	inst := models.ProdutoInstancia{
		TemplateID: tpl.ID,
		Codigo:     codigo,
	}
	if err := tx.Create(&inst).Error; err != nil {
		return nil, err
	}

	if inst.Codigo == "" {
		inst.Codigo = fmt.Sprintf("%s-%d", tpl.Nome, inst.ID)
		if err := tx.Model(&inst).Update("codigo", inst.Codigo).Error; err != nil {
			return nil, err
		}
	}

	for _, v := range valores {
		ia := models.InstanciaAtributo{
			InstanciaID:        inst.ID,
			TemplateAtributoID: v.TemplateAtributoID,
			ValorTexto:         strings.TrimSpace(v.ValorTexto),
			ValorNum:           v.ValorNum,
		}
		if err := tx.Create(&ia).Error; err != nil {
			return nil, err
		}
	}

	return &inst, nil
}

// GET /api/produto-instancias?template_id=...
func ListProdutoInstanciasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Template.Categoria").
			Preload("Atributos.TemplateAtributo.Atributo")

		if tplStr := c.Query("template_id"); tplStr != "" {
			var tplID uint
			if _, err := fmt.Sscan(tplStr, &tplID); err == nil && tplID > 0 {
				dbq = dbq.Where("template_id = ?", tplID)
			}
		}

		var instancias []models.ProdutoInstancia
		if err := dbq.Order("id desc").Limit(500).Find(&instancias).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as instâncias")
		}

		res := make([]ProdutoInstanciaResponse, 0, len(instancias))
		for i := range instancias {
			res = append(res, instanciaToResponse(&instancias[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/produto-instancias/:id
func GetProdutoInstanciaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID da instância inválido")
		}

		inst, err := carregarInstancia(database.DB, uint(id))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instância não encontrada")
		}
		return c.JSON(instanciaToResponse(inst))
	}
}

// POST /api/produto-instancias
func CreateProdutoInstanciaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProdutoInstanciaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		var inst *models.ProdutoInstancia
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			inst, err = CriarInstancia(tx, body.TemplateID, body.Atributos, "")
			return err
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		completo, err := carregarInstancia(database.DB, inst.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível carregar a instância criada")
		}
		return c.Status(fiber.StatusCreated).JSON(instanciaToResponse(completo))
	}
}

// PUT /api/produto-instancias/:id
func UpdateProdutoInstanciaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID da instância inválido")
		}

		inst, err := carregarInstancia(database.DB, uint(id))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instância não encontrada")
		}

		var body UpdateProdutoInstanciaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		var tpl models.ProdutoTemplate
		if err := database.DB.Preload("Atributos.Atributo").First(&tpl, "id = ?", inst.TemplateID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível carregar o template")
		}
		if err := validarValores(&tpl, body.Atributos); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("instancia_id = ?", inst.ID).Delete(&models.InstanciaAtributo{}).Error; err != nil {
				return err
			}
			for _, v := range body.Atributos {
				ia := models.InstanciaAtributo{
					InstanciaID:        inst.ID,
					TemplateAtributoID: v.TemplateAtributoID,
					ValorTexto:         strings.TrimSpace(v.ValorTexto),
					ValorNum:           v.ValorNum,
				}
				if err := tx.Create(&ia).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a instância")
		}

		completo, err := carregarInstancia(database.DB, inst.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível carregar a instância")
		}
		return c.JSON(instanciaToResponse(completo))
	}
}

// DELETE /api/produto-instancias/:id
func DeleteProdutoInstanciaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID da instância inválido")
		}

		var inst models.ProdutoInstancia
		if err := database.DB.First(&inst, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instância não encontrada")
		}

		var nItens int64
		database.DB.Model(&models.ItemOrcamento{}).Where("instancia_id = ?", inst.ID).Count(&nItens)
		if nItens > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Instância está em uso por orçamentos e não pode ser removida")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("instancia_id = ?", inst.ID).Delete(&models.InstanciaAtributo{}).Error; err != nil {
				return err
			}
			if err := tx.Where("instancia_id = ?", inst.ID).Delete(&models.InstanciaComponente{}).Error; err != nil {
				return err
			}
			return tx.Delete(&inst).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover a instância")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
