package consumos

import (
	"errors"
	"fmt"
	"time"

	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func filtrarConsumos(c *fiber.Ctx) ([]models.ItemConsumido, FiltrosRelatorio, error) {
	dbq := database.DB.Preload("Item")
	var filtros FiltrosRelatorio

	if fichaID := c.Query("ficha_obra_id"); fichaID != "" {
		var ficha models.FichaConsumoObra
		if err := database.DB.First(&ficha, "id = ?", fichaID).Error; err != nil {
			return nil, filtros, fiber.NewError(fiber.StatusBadRequest, "Ficha de obra não encontrada")
		}
		dbq = dbq.Where("ficha_obra_id = ?", ficha.ID)
		filtros.RefObra = ficha.RefObra
	}
	if itemID := c.Query("item_id"); itemID != "" {
		dbq = dbq.Where("item_id = ?", itemID)
	}
	if inicio := c.Query("data_inicio"); inicio != "" {
		d, err := parseData(inicio)
		if err != nil {
			return nil, filtros, fiber.NewError(fiber.StatusBadRequest, "Data de início inválida (use AAAA-MM-DD)")
		}
		dbq = dbq.Where("data_consumo >= ?", d)
		filtros.DataInicio = inicio
	}
	if fim := c.Query("data_fim"); fim != "" {
		d, err := parseData(fim)
		if err != nil {
			return nil, filtros, fiber.NewError(fiber.StatusBadRequest, "Data de fim inválida (use AAAA-MM-DD)")
		}
		dbq = dbq.Where("data_consumo < ?", d.AddDate(0, 0, 1))
		filtros.DataFim = fim
	}

	var itens []models.ItemConsumido
	if err := dbq.Order("data_consumo").Find(&itens).Error; err != nil {
		return nil, filtros, fiber.NewError(fiber.StatusInternalServerError, "Não foi possível consultar os consumos")
	}
	return itens, filtros, nil
}

func filtrarSessoes(c *fiber.Ctx) ([]models.SessaoTrabalho, FiltrosRelatorio, error) {
	dbq := database.DB.Preload("PostoTrabalho").Preload("Operador").Preload("FichaObra")
	var filtros FiltrosRelatorio

	if postoID := c.Query("posto_id"); postoID != "" {
		var posto models.PostoTrabalho
		if err := database.DB.First(&posto, "id = ?", postoID).Error; err != nil {
			return nil, filtros, fiber.NewError(fiber.StatusBadRequest, "Posto de trabalho não encontrado")
		}
		dbq = dbq.Where("posto_trabalho_id = ?", posto.ID)
		filtros.Posto = posto.Nome
	}
	if data := c.Query("data"); data != "" {
		d, err := parseData(data)
		if err != nil {
			return nil, filtros, fiber.NewError(fiber.StatusBadRequest, "Data inválida (use AAAA-MM-DD)")
		}
		dbq = dbq.Where("hora_inicio >= ? AND hora_inicio < ?", d, d.AddDate(0, 0, 1))
		filtros.DataInicio = data
	}

	var sessoes []models.SessaoTrabalho
	if err := dbq.Order("hora_inicio").Find(&sessoes).Error; err != nil {
		return nil, filtros, fiber.NewError(fiber.StatusInternalServerError, "Não foi possível consultar as sessões")
	}
	return sessoes, filtros, nil
}

func enviarExcel(c *fiber.Ctx, nome string, buf []byte) error {
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	return c.Send(buf)
}

// GET /api/relatorios/consumo-material
func RelatorioConsumoMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itens, _, err := filtrarConsumos(c)
		if err != nil {
			return err
		}
		return c.JSON(AgregarConsumos(itens))
	}
}

// GET /api/relatorios/consumo-material/excel
func ExportConsumoMaterialExcelHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		itens, filtros, err := filtrarConsumos(c)
		if err != nil {
			return err
		}

		buf, err := ExportarConsumoMaterialExcel(cfg.ExcelTemplateDir, AgregarConsumos(itens), filtros)
		if err != nil {
			if errors.Is(err, ErrModeloNaoEncontrado) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			config.Log.WithError(err).Error("falha ao gerar relatório de consumo de material")
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o relatório")
		}

		nome := fmt.Sprintf("consumo_material_%s.xlsx", time.Now().Format("20060102"))
		return enviarExcel(c, nome, buf.Bytes())
	}
}

// GET /api/relatorios/utilizacao-maquina
func RelatorioUtilizacaoMaquinaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessoes, _, err := filtrarSessoes(c)
		if err != nil {
			return err
		}

		res := make([]SessaoTrabalhoResponse, 0, len(sessoes))
		for i := range sessoes {
			res = append(res, sessaoToResponse(&sessoes[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/relatorios/utilizacao-maquina/excel
func ExportUtilizacaoMaquinaExcelHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessoes, filtros, err := filtrarSessoes(c)
		if err != nil {
			return err
		}

		buf, err := ExportarUtilizacaoMaquinaExcel(cfg.ExcelTemplateDir, sessoes, filtros)
		if err != nil {
			if errors.Is(err, ErrModeloNaoEncontrado) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			config.Log.WithError(err).Error("falha ao gerar relatório de utilização de máquina")
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o relatório")
		}

		nome := fmt.Sprintf("utilizacao_maquina_%s.xlsx", time.Now().Format("20060102"))
		return enviarExcel(c, nome, buf.Bytes())
	}
}

// GET /api/relatorios/kpis
func KPIsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessoes, _, err := filtrarSessoes(c)
		if err != nil {
			return err
		}
		itens, _, err := filtrarConsumos(c)
		if err != nil {
			return err
		}

		custoMaterial := decimal.Zero
		for i := range itens {
			custoMaterial = custoMaterial.Add(itens[i].CustoFIFO)
		}

		resumo := CalcularKPIs(sessoes)
		return c.JSON(fiber.Map{
			"horas_totais":       resumo.HorasTotais,
			"custo_mao_de_obra":  resumo.CustoMaoDeObra,
			"custo_material":     custoMaterial,
			"custo_total":        resumo.CustoMaoDeObra.Add(custoMaterial),
			"por_posto":          resumo.PorPosto,
			"por_operador":       resumo.PorOperador,
			"media_por_operacao": resumo.MediaPorOperacao,
		})
	}
}
