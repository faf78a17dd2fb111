package consumos

import (
	"testing"
	"time"

	"tdm-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consumoTeste(itemID uint, nome, codigo, descricao, unidade, qtd, custo string) models.ItemConsumido {
	return models.ItemConsumido{
		ItemID:             itemID,
		Item:               models.ItemEstocavel{Nome: nome, CodigoInterno: codigo},
		DescricaoDetalhada: descricao,
		Unidade:            unidade,
		Quantidade:         dec(qtd),
		CustoFIFO:          dec(custo),
	}
}

func TestAgregarConsumosAgrupaPorItemEDescricao(t *testing.T) {
	itens := []models.ItemConsumido{
		consumoTeste(1, "Dobradiça 35mm", "FER-0001", "HTD-H1000, Cor: Branco", "un", "4", "6"),
		consumoTeste(2, "Painel MDF 19mm", "PNL-0001", "", "un", "2", "50"),
		consumoTeste(1, "Dobradiça 35mm", "FER-0001", "HTD-H1000, Cor: Branco", "un", "6", "9"),
		consumoTeste(1, "Dobradiça 35mm", "FER-0001", "HTD-H1000, Cor: Preto", "un", "2", "3"),
	}

	agregados := AgregarConsumos(itens)
	require.Len(t, agregados, 3)

	// Ordenado por nome do item; descrições diferentes não se misturam.
	assert.Equal(t, "Dobradiça 35mm", agregados[0].ItemNome)
	assert.Equal(t, "HTD-H1000, Cor: Branco", agregados[0].DescricaoDetalhada)
	assert.True(t, agregados[0].TotalQuantidade.Equal(dec("10")))
	assert.True(t, agregados[0].CustoTotal.Equal(dec("15")))

	assert.Equal(t, "HTD-H1000, Cor: Preto", agregados[1].DescricaoDetalhada)
	assert.True(t, agregados[1].TotalQuantidade.Equal(dec("2")))

	assert.Equal(t, "Painel MDF 19mm", agregados[2].ItemNome)
	assert.True(t, agregados[2].CustoTotal.Equal(dec("50")))
}

func TestAgregarConsumosVazio(t *testing.T) {
	assert.Empty(t, AgregarConsumos(nil))
}

func sessaoTeste(postoID uint, posto models.PostoTrabalho, operadorID uint, operador, operacao string, inicio time.Time, minutos int) models.SessaoTrabalho {
	saida := inicio.Add(time.Duration(minutos) * time.Minute)
	posto.ID = postoID
	return models.SessaoTrabalho{
		PostoTrabalhoID: postoID,
		PostoTrabalho:   posto,
		OperadorID:      operadorID,
		Operador:        models.Operador{ID: operadorID, Nome: operador},
		Operacao:        operacao,
		HoraInicio:      inicio,
		HoraSaida:       &saida,
	}
}

func TestCalcularKPIs(t *testing.T) {
	inicio := time.Date(2025, 6, 25, 8, 0, 0, 0, time.UTC)
	serra := models.PostoTrabalho{Nome: "Serra de Bancada", CustoHora: dec("18.50")}
	cnc := models.PostoTrabalho{Nome: "CNC 1", CustoHora: dec("32")}

	sessoes := []models.SessaoTrabalho{
		sessaoTeste(1, serra, 1, "Carlos", "Corte de painéis", inicio, 120),
		sessaoTeste(1, serra, 2, "Rui", "Corte de painéis", inicio, 60),
		sessaoTeste(2, cnc, 1, "Carlos", "Furação", inicio, 30),
	}
	// Sessão ainda aberta não conta.
	aberta := sessaoTeste(2, cnc, 2, "Rui", "Furação", inicio, 0)
	aberta.HoraSaida = nil
	sessoes = append(sessoes, aberta)

	resumo := CalcularKPIs(sessoes)

	assert.InDelta(t, 3.5, resumo.HorasTotais, 0.001)

	// 3h x 18.50 + 0.5h x 32 = 55.50 + 16.00
	assert.True(t, resumo.CustoMaoDeObra.Equal(dec("71.50")), "custo obtido %s", resumo.CustoMaoDeObra)

	require.Len(t, resumo.PorPosto, 2)
	assert.Equal(t, "Serra de Bancada", resumo.PorPosto[0].Nome)
	assert.InDelta(t, 3.0, resumo.PorPosto[0].Horas, 0.001)
	assert.True(t, resumo.PorPosto[0].Custo.Equal(dec("55.50")))
	assert.Equal(t, "CNC 1", resumo.PorPosto[1].Nome)
	assert.True(t, resumo.PorPosto[1].Custo.Equal(dec("16")))

	require.Len(t, resumo.PorOperador, 2)
	assert.Equal(t, "Carlos", resumo.PorOperador[0].Nome)
	assert.InDelta(t, 2.5, resumo.PorOperador[0].Horas, 0.001)

	require.Len(t, resumo.MediaPorOperacao, 2)
	assert.Equal(t, "Corte de painéis", resumo.MediaPorOperacao[0].Operacao)
	assert.InDelta(t, 90.0, resumo.MediaPorOperacao[0].MediaMinutos, 0.001)
	assert.Equal(t, 2, resumo.MediaPorOperacao[0].Execucoes)
	assert.Equal(t, 1, resumo.MediaPorOperacao[1].Execucoes)
}

func TestCalcularKPIsSemSessoesFechadas(t *testing.T) {
	inicio := time.Now()
	aberta := models.SessaoTrabalho{HoraInicio: inicio}

	resumo := CalcularKPIs([]models.SessaoTrabalho{aberta})
	assert.Zero(t, resumo.HorasTotais)
	assert.True(t, resumo.CustoMaoDeObra.IsZero())
	assert.Empty(t, resumo.PorPosto)
}
