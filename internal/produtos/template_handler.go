package produtos

import (
	"fmt"
	"strings"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TemplateAtributoResponse struct {
	ID          uint                `json:"id"`
	AtributoID  uint                `json:"atributo_id"`
	Nome        string              `json:"nome"`
	Tipo        models.TipoAtributo `json:"tipo"`
	Chave       string              `json:"chave"`
	Obrigatorio bool                `json:"obrigatorio"`
	Ordem       int                 `json:"ordem"`
}

type ProdutoTemplateResponse struct {
	ID              uint                       `json:"id"`
	CategoriaID     uint                       `json:"categoria_id"`
	CategoriaNome   string                     `json:"categoria_nome"`
	Nome            string                     `json:"nome"`
	PadraoDescricao string                     `json:"padrao_descricao"`
	Unidade         string                     `json:"unidade"`
	Atributos       []TemplateAtributoResponse `json:"atributos"`
	CreatedAt       string                     `json:"created_at"`
}

type TemplateAtributoInput struct {
	AtributoID  uint `json:"atributo_id"`
	Obrigatorio bool `json:"obrigatorio"`
	Ordem       int  `json:"ordem"`
}

type CreateProdutoTemplateRequest struct {
	CategoriaID     uint                    `json:"categoria_id"`
	Nome            string                  `json:"nome"`
	PadraoDescricao string                  `json:"padrao_descricao"`
	Unidade         string                  `json:"unidade"`
	Atributos       []TemplateAtributoInput `json:"atributos"`
}

type UpdateProdutoTemplateRequest struct {
	Nome            *string                  `json:"nome"`
	PadraoDescricao *string                  `json:"padrao_descricao"`
	Unidade         *string                  `json:"unidade"`
	Atributos       *[]TemplateAtributoInput `json:"atributos"`
}

func templateToResponse(t *models.ProdutoTemplate) ProdutoTemplateResponse {
	attrs := make([]TemplateAtributoResponse, 0, len(t.Atributos))
	for i := range t.Atributos {
		ta := &t.Atributos[i]
		attrs = append(attrs, TemplateAtributoResponse{
			ID:          ta.ID,
			AtributoID:  ta.AtributoID,
			Nome:        ta.Atributo.Nome,
			Tipo:        ta.Atributo.Tipo,
			Chave:       sanitizarNome(ta.Atributo.Nome),
			Obrigatorio: ta.Obrigatorio,
			Ordem:       ta.Ordem,
		})
	}
	return ProdutoTemplateResponse{
		ID:              t.ID,
		CategoriaID:     t.CategoriaID,
		CategoriaNome:   t.Categoria.Nome,
		Nome:            t.Nome,
		PadraoDescricao: t.PadraoDescricao,
		Unidade:         t.Unidade,
		Atributos:       attrs,
		CreatedAt:       t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// O padrão só pode referenciar atributos ligados ao template, senão o
// placeholder renderia sempre vazio.
func validarPadrao(tx *gorm.DB, padrao string, atributos []TemplateAtributoInput) error {
	if !strings.Contains(padrao, "{{") {
		return nil
	}
	p, err := CompilarPadrao(padrao)
	if err != nil {
		return fmt.Errorf("padrão de descrição inválido: %w", err)
	}

	chaves := map[string]bool{}
	for _, in := range atributos {
		var attr models.Atributo
		if err := tx.First(&attr, "id = ?", in.AtributoID).Error; err != nil {
			return fmt.Errorf("atributo %d não encontrado", in.AtributoID)
		}
		chaves[sanitizarNome(attr.Nome)] = true
	}
	for _, s := range p.segmentos {
		if s.placeholder != "" && !chaves[s.placeholder] {
			return fmt.Errorf("o padrão referencia '%s', que não é atributo do template", s.placeholder)
		}
	}
	return nil
}

// GET /api/produto-templates?categoria_id=...
func ListProdutoTemplatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Categoria").Preload("Atributos", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordem asc")
		}).Preload("Atributos.Atributo")

		if catStr := c.Query("categoria_id"); catStr != "" {
			var catID uint
			if _, err := fmt.Sscan(catStr, &catID); err == nil && catID > 0 {
				dbq = dbq.Where("categoria_id = ?", catID)
			}
		}

		var templates []models.ProdutoTemplate
		if err := dbq.Order("nome asc").Find(&templates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os templates")
		}

		res := make([]ProdutoTemplateResponse, 0, len(templates))
		for i := range templates {
			res = append(res, templateToResponse(&templates[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/produto-templates/:id
func GetProdutoTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tpl models.ProdutoTemplate
		if err := database.DB.Preload("Categoria").Preload("Atributos", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordem asc")
		}).Preload("Atributos.Atributo").First(&tpl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Template não encontrado")
		}

		return c.JSON(templateToResponse(&tpl))
	}
}

// POST /api/produto-templates
func CreateProdutoTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProdutoTemplateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome do template é obrigatório")
		}

		var cat models.Categoria
		if err := database.DB.First(&cat, "id = ?", body.CategoriaID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria não encontrada")
		}

		if err := validarPadrao(database.DB, body.PadraoDescricao, body.Atributos); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var tpl models.ProdutoTemplate
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			tpl = models.ProdutoTemplate{
				CategoriaID:     cat.ID,
				Nome:            body.Nome,
				PadraoDescricao: strings.TrimSpace(body.PadraoDescricao),
				Unidade:         strings.TrimSpace(body.Unidade),
			}
			if err := tx.Create(&tpl).Error; err != nil {
				return err
			}
			for _, in := range body.Atributos {
				ta := models.TemplateAtributo{
					TemplateID:  tpl.ID,
					AtributoID:  in.AtributoID,
					Obrigatorio: in.Obrigatorio,
					Ordem:       in.Ordem,
				}
				if err := tx.Create(&ta).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o template")
		}

		database.DB.Preload("Categoria").Preload("Atributos.Atributo").First(&tpl, tpl.ID)

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "produto_template",
				EntityID:    tpl.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Template de produto criado: %s / %s", cat.Nome, tpl.Nome),
				After:       templateToResponse(&tpl),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(templateToResponse(&tpl))
	}
}

// PUT /api/produto-templates/:id
func UpdateProdutoTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tpl models.ProdutoTemplate
		if err := database.DB.Preload("Categoria").Preload("Atributos.Atributo").First(&tpl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Template não encontrado")
		}
		antes := templateToResponse(&tpl)

		var body UpdateProdutoTemplateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Nome != nil {
			nome := strings.TrimSpace(*body.Nome)
			if nome == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome do template não pode ficar vazio")
			}
			tpl.Nome = nome
		}
		if body.Unidade != nil {
			tpl.Unidade = strings.TrimSpace(*body.Unidade)
		}
		if body.PadraoDescricao != nil {
			tpl.PadraoDescricao = strings.TrimSpace(*body.PadraoDescricao)
		}

		// Redefinir os atributos apaga os antigos; proibido depois de
		// existirem instâncias com valores atribuídos.
		if body.Atributos != nil {
			var nInstancias int64
			database.DB.Model(&models.ProdutoInstancia{}).Where("template_id = ?", tpl.ID).Count(&nInstancias)
			if nInstancias > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Template já tem instâncias, os atributos não podem ser redefinidos")
			}
		}

		novosAtributos := body.Atributos
		padraoFinal := tpl.PadraoDescricao
		atributosParaValidar := make([]TemplateAtributoInput, 0)
		if novosAtributos != nil {
			atributosParaValidar = *novosAtributos
		} else {
			for _, ta := range tpl.Atributos {
				atributosParaValidar = append(atributosParaValidar, TemplateAtributoInput{AtributoID: ta.AtributoID})
			}
		}
		if err := validarPadrao(database.DB, padraoFinal, atributosParaValidar); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&tpl).Error; err != nil {
				return err
			}
			if novosAtributos != nil {
				if err := tx.Where("template_id = ?", tpl.ID).Delete(&models.TemplateAtributo{}).Error; err != nil {
					return err
				}
				for _, in := range *novosAtributos {
					ta := models.TemplateAtributo{
						TemplateID:  tpl.ID,
						AtributoID:  in.AtributoID,
						Obrigatorio: in.Obrigatorio,
						Ordem:       in.Ordem,
					}
					if err := tx.Create(&ta).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o template")
		}

		database.DB.Preload("Categoria").Preload("Atributos.Atributo").First(&tpl, tpl.ID)

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "produto_template",
				EntityID:    tpl.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Template de produto atualizado: %s", tpl.Nome),
				Before:      antes,
				After:       templateToResponse(&tpl),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(templateToResponse(&tpl))
	}
}

// DELETE /api/produto-templates/:id
func DeleteProdutoTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tpl models.ProdutoTemplate
		if err := database.DB.First(&tpl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Template não encontrado")
		}

		var nInstancias int64
		database.DB.Model(&models.ProdutoInstancia{}).Where("template_id = ?", tpl.ID).Count(&nInstancias)
		if nInstancias > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Template tem instâncias associadas e não pode ser removido")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("template_id = ?", tpl.ID).Delete(&models.TemplateAtributo{}).Error; err != nil {
				return err
			}
			return tx.Delete(&tpl).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o template")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "produto_template",
				EntityID:    tpl.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Template de produto removido: %s", tpl.Nome),
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
