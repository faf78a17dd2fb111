package estoque

import (
	"testing"

	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestItem(t *testing.T, db *gorm.DB) models.ItemEstocavel {
	t.Helper()
	cat := models.CategoriaItem{Nome: "Painéis de Madeira", Codigo: "PNL"}
	require.NoError(t, db.Create(&cat).Error)
	item := models.ItemEstocavel{
		CategoriaID:     cat.ID,
		Nome:            "Painel MDF Hidrófugo 19mm",
		CodigoSequencia: 1,
		CodigoInterno:   "PNL-0001",
		Unidade:         "un",
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConsumirFIFO(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	l1, err := ledger.RegistrarEntrada(item.ID, dec("5"), dec("2"), 1, "")
	require.NoError(t, err)
	l2, err := ledger.RegistrarEntrada(item.ID, dec("5"), dec("3"), 1, "")
	require.NoError(t, err)

	parcelas, err := ledger.Consumir(item.ID, dec("7"), 1, nil)
	require.NoError(t, err)
	require.Len(t, parcelas, 2)

	require.Equal(t, l1.ID, parcelas[0].Lote.ID)
	require.True(t, parcelas[0].Quantidade.Equal(dec("5")), "primeira parcela deve esgotar o lote mais antigo")
	require.Equal(t, l2.ID, parcelas[1].Lote.ID)
	require.True(t, parcelas[1].Quantidade.Equal(dec("2")))

	// 5×2 + 2×3 = 16
	require.True(t, CustoConsumo(parcelas).Equal(dec("16")))

	var depois1, depois2 models.Lote
	require.NoError(t, db.First(&depois1, l1.ID).Error)
	require.NoError(t, db.First(&depois2, l2.ID).Error)
	require.True(t, depois1.QuantidadeAtual.IsZero())
	require.True(t, depois2.QuantidadeAtual.Equal(dec("3")))
	require.True(t, depois1.Esgotado())

	var saidas []models.MovimentoEstoque
	require.NoError(t, db.Where("tipo = ?", models.MovimentoSaida).Order("id ASC").Find(&saidas).Error)
	require.Len(t, saidas, 2)
	require.Equal(t, l1.ID, saidas[0].LoteID)
	require.Equal(t, l2.ID, saidas[1].LoteID)
}

func TestConsumirEstoqueInsuficiente(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	_, err := ledger.RegistrarEntrada(item.ID, dec("3"), dec("1.5"), 1, "")
	require.NoError(t, err)
	_, err = ledger.RegistrarEntrada(item.ID, dec("2"), dec("1.8"), 1, "")
	require.NoError(t, err)

	_, err = ledger.Consumir(item.ID, dec("6"), 1, nil)
	var insuf *EstoqueInsuficienteError
	require.ErrorAs(t, err, &insuf)
	require.True(t, insuf.Disponivel.Equal(dec("5")))
	require.True(t, insuf.Solicitada.Equal(dec("6")))

	// Rejeição atômica: nenhum movimento de saída e lotes intactos
	var saidas int64
	require.NoError(t, db.Model(&models.MovimentoEstoque{}).
		Where("tipo = ?", models.MovimentoSaida).Count(&saidas).Error)
	require.Zero(t, saidas)

	disponivel, err := ledger.Disponivel(item.ID)
	require.NoError(t, err)
	require.True(t, disponivel.Equal(dec("5")))
}

func TestConsumirQuantidadeInvalida(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	_, err := ledger.Consumir(item.ID, dec("0"), 1, nil)
	require.Error(t, err)
	_, err = ledger.Consumir(item.ID, dec("-1"), 1, nil)
	require.Error(t, err)
}

func TestAjustarLoteNegativoExcessivo(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	lote, err := ledger.RegistrarEntrada(item.ID, dec("4"), dec("2"), 1, "")
	require.NoError(t, err)

	_, err = ledger.AjustarLote(lote.ID, dec("-10"), 1, "contagem errada")
	var inval *AjusteInvalidoError
	require.ErrorAs(t, err, &inval)
	require.Equal(t, lote.ID, inval.LoteID)

	var depois models.Lote
	require.NoError(t, db.First(&depois, lote.ID).Error)
	require.True(t, depois.QuantidadeAtual.Equal(dec("4")))

	var ajustes int64
	require.NoError(t, db.Model(&models.MovimentoEstoque{}).
		Where("tipo IN ?", []models.TipoMovimento{models.MovimentoAjustePositivo, models.MovimentoAjusteNegativo}).
		Count(&ajustes).Error)
	require.Zero(t, ajustes)
}

func TestAjustarLoteEsgotadoNaoReabre(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	lote, err := ledger.RegistrarEntrada(item.ID, dec("2"), dec("1"), 1, "")
	require.NoError(t, err)
	_, err = ledger.Consumir(item.ID, dec("2"), 1, nil)
	require.NoError(t, err)

	_, err = ledger.AjustarLote(lote.ID, dec("1"), 1, "tentativa de reabrir")
	var inval *AjusteInvalidoError
	require.ErrorAs(t, err, &inval)
}

func TestAjustarItem(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	// Positivo cria lote novo
	movs, err := ledger.AjustarItem(item.ID, dec("10"), dec("0"), 1, "contagem física")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	require.Equal(t, models.MovimentoAjustePositivo, movs[0].Tipo)

	var lotes []models.Lote
	require.NoError(t, db.Where("item_id = ?", item.ID).Find(&lotes).Error)
	require.Len(t, lotes, 1)
	require.True(t, lotes[0].QuantidadeAtual.Equal(dec("10")))

	// Negativo baixa FIFO
	movs, err = ledger.AjustarItem(item.ID, dec("-4"), decimal.Zero, 1, "quebra")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	require.Equal(t, models.MovimentoAjusteNegativo, movs[0].Tipo)
	require.True(t, movs[0].Quantidade.Equal(dec("4")))

	disponivel, err := ledger.Disponivel(item.ID)
	require.NoError(t, err)
	require.True(t, disponivel.Equal(dec("6")))

	// Negativo além do disponível falha sem gravar nada
	_, err = ledger.AjustarItem(item.ID, dec("-7"), decimal.Zero, 1, "erro de contagem")
	var inval *AjusteInvalidoError
	require.ErrorAs(t, err, &inval)

	disponivel, err = ledger.Disponivel(item.ID)
	require.NoError(t, err)
	require.True(t, disponivel.Equal(dec("6")))
}

func TestSaldoPorMovimentosReconstroiQuantidade(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	item := newTestItem(t, db)

	lote, err := ledger.RegistrarEntrada(item.ID, dec("12.5"), dec("3.25"), 1, "")
	require.NoError(t, err)

	_, err = ledger.Consumir(item.ID, dec("4.5"), 1, nil)
	require.NoError(t, err)
	_, err = ledger.AjustarLote(lote.ID, dec("-0.5"), 1, "perda")
	require.NoError(t, err)
	_, err = ledger.AjustarLote(lote.ID, dec("2"), 1, "devolução à prateleira")
	require.NoError(t, err)

	var depois models.Lote
	require.NoError(t, db.First(&depois, lote.ID).Error)

	saldo, err := ledger.SaldoPorMovimentos(lote.ID)
	require.NoError(t, err)
	require.True(t, saldo.Equal(depois.QuantidadeAtual),
		"replay dos movimentos deve reconstruir a quantidade atual: %s != %s", saldo, depois.QuantidadeAtual)
	require.True(t, depois.QuantidadeAtual.Equal(dec("9.5")))
}
