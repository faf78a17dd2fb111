package consumos

import (
	"fmt"
	"strings"
	"time"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PostoTrabalhoResponse struct {
	ID        uint            `json:"id"`
	Nome      string          `json:"nome"`
	CustoHora decimal.Decimal `json:"custo_hora"`
}

type OperadorResponse struct {
	ID   uint   `json:"id"`
	Nome string `json:"nome"`
}

type SessaoTrabalhoResponse struct {
	ID         uint    `json:"id"`
	PostoID    uint    `json:"posto_id"`
	Posto      string  `json:"posto"`
	OperadorID uint    `json:"operador_id"`
	Operador   string  `json:"operador"`
	RefObra    *string `json:"ref_obra"`
	Operacao   string  `json:"operacao"`
	HoraInicio string  `json:"hora_inicio"`
	HoraSaida  *string `json:"hora_saida"`
}

type PostoTrabalhoRequest struct {
	Nome      string           `json:"nome"`
	CustoHora *decimal.Decimal `json:"custo_hora"`
}

type IniciarSessaoRequest struct {
	PostoID     uint   `json:"posto_id"`
	OperadorID  uint   `json:"operador_id"`
	FichaObraID *uint  `json:"ficha_obra_id"`
	Operacao    string `json:"operacao"`
	HoraInicio  string `json:"hora_inicio"`
}

func sessaoToResponse(s *models.SessaoTrabalho) SessaoTrabalhoResponse {
	res := SessaoTrabalhoResponse{
		ID:         s.ID,
		PostoID:    s.PostoTrabalhoID,
		Posto:      s.PostoTrabalho.Nome,
		OperadorID: s.OperadorID,
		Operador:   s.Operador.Nome,
		Operacao:   s.Operacao,
		HoraInicio: s.HoraInicio.Format("2006-01-02 15:04"),
	}
	if s.FichaObra != nil {
		res.RefObra = &s.FichaObra.RefObra
	}
	if s.HoraSaida != nil {
		saida := s.HoraSaida.Format("2006-01-02 15:04")
		res.HoraSaida = &saida
	}
	return res
}

// GET /api/postos-trabalho
func ListPostosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var postos []models.PostoTrabalho
		if err := database.DB.Order("nome").Find(&postos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os postos de trabalho")
		}
		res := make([]PostoTrabalhoResponse, 0, len(postos))
		for _, p := range postos {
			res = append(res, PostoTrabalhoResponse{ID: p.ID, Nome: p.Nome, CustoHora: p.CustoHora})
		}
		return c.JSON(res)
	}
}

// POST /api/postos-trabalho
func CreatePostoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PostoTrabalhoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome do posto é obrigatório")
		}
		if body.CustoHora == nil || body.CustoHora.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Custo por hora deve ser zero ou positivo")
		}

		var existente models.PostoTrabalho
		if err := database.DB.Where("nome = ?", body.Nome).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe um posto com este nome")
		}

		posto := models.PostoTrabalho{Nome: body.Nome, CustoHora: *body.CustoHora}
		if err := database.DB.Create(&posto).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o posto de trabalho")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "posto_trabalho",
				EntityID:    posto.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Posto de trabalho criado: %s", posto.Nome),
				After:       posto,
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(PostoTrabalhoResponse{ID: posto.ID, Nome: posto.Nome, CustoHora: posto.CustoHora})
	}
}

// PUT /api/postos-trabalho/:id
func UpdatePostoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var posto models.PostoTrabalho
		if err := database.DB.First(&posto, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Posto de trabalho não encontrado")
		}
		antes := posto

		var body PostoTrabalhoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if nome := strings.TrimSpace(body.Nome); nome != "" && nome != posto.Nome {
			var outro models.PostoTrabalho
			if err := database.DB.Where("nome = ? AND id <> ?", nome, posto.ID).First(&outro).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Já existe um posto com este nome")
			}
			posto.Nome = nome
		}
		if body.CustoHora != nil {
			if body.CustoHora.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Custo por hora deve ser zero ou positivo")
			}
			posto.CustoHora = *body.CustoHora
		}

		if err := database.DB.Save(&posto).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o posto")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "posto_trabalho",
				EntityID:    posto.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Posto de trabalho atualizado: %s", posto.Nome),
				Before:      antes,
				After:       posto,
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.JSON(PostoTrabalhoResponse{ID: posto.ID, Nome: posto.Nome, CustoHora: posto.CustoHora})
	}
}

// DELETE /api/postos-trabalho/:id
func DeletePostoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var posto models.PostoTrabalho
		if err := database.DB.First(&posto, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Posto de trabalho não encontrado")
		}

		var numSessoes int64
		database.DB.Model(&models.SessaoTrabalho{}).Where("posto_trabalho_id = ?", posto.ID).Count(&numSessoes)
		if numSessoes > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Posto tem sessões de trabalho registradas e não pode ser removido")
		}

		if err := database.DB.Delete(&posto).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o posto")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "posto_trabalho",
				EntityID:    posto.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Posto de trabalho removido: %s", posto.Nome),
				Before:      posto,
			}); logErr != nil {
				config.Log.WithError(logErr).Warn("falha ao gravar log de auditoria")
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/operadores
func ListOperadoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var operadores []models.Operador
		if err := database.DB.Order("nome").Find(&operadores).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os operadores")
		}
		res := make([]OperadorResponse, 0, len(operadores))
		for _, o := range operadores {
			res = append(res, OperadorResponse{ID: o.ID, Nome: o.Nome})
		}
		return c.JSON(res)
	}
}

// POST /api/operadores
func CreateOperadorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Nome string `json:"nome"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome do operador é obrigatório")
		}

		var existente models.Operador
		if err := database.DB.Where("nome = ?", body.Nome).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe um operador com este nome")
		}

		operador := models.Operador{Nome: body.Nome}
		if err := database.DB.Create(&operador).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o operador")
		}

		return c.Status(fiber.StatusCreated).JSON(OperadorResponse{ID: operador.ID, Nome: operador.Nome})
	}
}

// DELETE /api/operadores/:id
func DeleteOperadorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var operador models.Operador
		if err := database.DB.First(&operador, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Operador não encontrado")
		}

		var numSessoes int64
		database.DB.Model(&models.SessaoTrabalho{}).Where("operador_id = ?", operador.ID).Count(&numSessoes)
		if numSessoes > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Operador tem sessões de trabalho registradas e não pode ser removido")
		}

		if err := database.DB.Delete(&operador).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover o operador")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/sessoes-trabalho?posto_id=&abertas=true
func ListSessoesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("PostoTrabalho").Preload("Operador").Preload("FichaObra")
		if postoID := c.Query("posto_id"); postoID != "" {
			dbq = dbq.Where("posto_trabalho_id = ?", postoID)
		}
		if c.Query("abertas") == "true" {
			dbq = dbq.Where("hora_saida IS NULL")
		}

		var sessoes []models.SessaoTrabalho
		if err := dbq.Order("hora_inicio DESC").Limit(500).Find(&sessoes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as sessões de trabalho")
		}

		res := make([]SessaoTrabalhoResponse, 0, len(sessoes))
		for i := range sessoes {
			res = append(res, sessaoToResponse(&sessoes[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/sessoes-trabalho
func IniciarSessaoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body IniciarSessaoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		body.Operacao = strings.TrimSpace(body.Operacao)
		if body.Operacao == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Operação é obrigatória")
		}

		var posto models.PostoTrabalho
		if err := database.DB.First(&posto, "id = ?", body.PostoID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Posto de trabalho não encontrado")
		}
		var operador models.Operador
		if err := database.DB.First(&operador, "id = ?", body.OperadorID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Operador não encontrado")
		}
		if body.FichaObraID != nil {
			var ficha models.FichaConsumoObra
			if err := database.DB.First(&ficha, "id = ?", *body.FichaObraID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Ficha de obra não encontrada")
			}
		}

		horaInicio := time.Now()
		if body.HoraInicio != "" {
			var err error
			horaInicio, err = time.Parse("2006-01-02 15:04", body.HoraInicio)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Hora de início inválida (use AAAA-MM-DD HH:MM)")
			}
		}

		// Um operador não pode estar em dois postos ao mesmo tempo.
		var aberta int64
		database.DB.Model(&models.SessaoTrabalho{}).
			Where("operador_id = ? AND hora_saida IS NULL", operador.ID).Count(&aberta)
		if aberta > 0 {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Operador já tem uma sessão aberta")
		}

		sessao := models.SessaoTrabalho{
			PostoTrabalhoID: posto.ID,
			OperadorID:      operador.ID,
			FichaObraID:     body.FichaObraID,
			Operacao:        body.Operacao,
			HoraInicio:      horaInicio,
		}
		if err := database.DB.Create(&sessao).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível iniciar a sessão")
		}
		database.DB.Preload("PostoTrabalho").Preload("Operador").Preload("FichaObra").First(&sessao, sessao.ID)

		return c.Status(fiber.StatusCreated).JSON(sessaoToResponse(&sessao))
	}
}

// PUT /api/sessoes-trabalho/:id/fechar
func FecharSessaoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sessao models.SessaoTrabalho
		err := database.DB.Preload("PostoTrabalho").Preload("Operador").Preload("FichaObra").
			First(&sessao, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sessão de trabalho não encontrada")
		}
		if sessao.HoraSaida != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Sessão já está fechada")
		}

		var body struct {
			HoraSaida string `json:"hora_saida"`
		}
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		horaSaida := time.Now()
		if body.HoraSaida != "" {
			horaSaida, err = time.Parse("2006-01-02 15:04", body.HoraSaida)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Hora de saída inválida (use AAAA-MM-DD HH:MM)")
			}
		}
		if !horaSaida.After(sessao.HoraInicio) {
			return fiber.NewError(fiber.StatusBadRequest, "Hora de saída deve ser posterior à hora de início")
		}

		sessao.HoraSaida = &horaSaida
		if err := database.DB.Save(&sessao).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível fechar a sessão")
		}

		return c.JSON(sessaoToResponse(&sessao))
	}
}
