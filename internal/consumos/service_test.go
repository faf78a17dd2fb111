package consumos

import (
	"testing"
	"time"

	"tdm-backend/internal/database"
	"tdm-backend/internal/estoque"
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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestFicha(t *testing.T, db *gorm.DB, status models.StatusFicha) models.FichaConsumoObra {
	t.Helper()
	user := models.User{Name: "Carlos", Email: "carlos@tdm.pt", PasswordHash: "x", Role: models.RoleProducao}
	require.NoError(t, db.Create(&user).Error)
	ficha := models.FichaConsumoObra{
		RefObra:         "EP107-250625.80-ELLA_V1",
		DataInicio:      time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
		PrevisaoEntrega: time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC),
		ResponsavelID:   user.ID,
		Status:          status,
	}
	require.NoError(t, db.Create(&ficha).Error)
	return ficha
}

func newTestItemComEstoque(t *testing.T, db *gorm.DB, quantidade, custo string) models.ItemEstocavel {
	t.Helper()
	cat := models.CategoriaItem{Nome: "Ferragens", Codigo: "FER"}
	require.NoError(t, db.Create(&cat).Error)
	item := models.ItemEstocavel{
		CategoriaID:     cat.ID,
		Nome:            "Dobradiça 35mm",
		CodigoSequencia: 1,
		CodigoInterno:   "FER-0001",
		Unidade:         "un",
	}
	require.NoError(t, db.Create(&item).Error)
	_, err := estoque.NewLedger(db).RegistrarEntrada(item.ID, dec(quantidade), dec(custo), 1, "")
	require.NoError(t, err)
	return item
}

func TestRegistrarConsumoApuraCustoFIFO(t *testing.T) {
	db := newTestDB(t)
	ficha := newTestFicha(t, db, models.FichaEmAndamento)
	item := newTestItemComEstoque(t, db, "10", "1.50")

	consumo, err := RegistrarConsumo(db, ficha.ID, item.ID, dec("4"), time.Time{}, "HTD-H1000, Cor: Branco", 1)
	require.NoError(t, err)

	require.Equal(t, ficha.ID, consumo.FichaObraID)
	require.Equal(t, "un", consumo.Unidade)
	require.True(t, consumo.CustoFIFO.Equal(dec("6")), "custo FIFO: 4 x 1.50, obtido %s", consumo.CustoFIFO)
	require.False(t, consumo.DataConsumo.IsZero())

	var salvo models.ItemConsumido
	require.NoError(t, db.First(&salvo, consumo.ID).Error)
	require.True(t, salvo.CustoFIFO.Equal(dec("6")))

	disponivel, err := estoque.NewLedger(db).Disponivel(item.ID)
	require.NoError(t, err)
	require.True(t, disponivel.Equal(dec("6")))

	var mov models.MovimentoEstoque
	require.NoError(t, db.Where("tipo = ?", models.MovimentoSaida).First(&mov).Error)
	require.NotNil(t, mov.OrigemConsumoID)
	require.Equal(t, consumo.ID, *mov.OrigemConsumoID)
}

func TestRegistrarConsumoEstoqueInsuficienteNaoGravaNada(t *testing.T) {
	db := newTestDB(t)
	ficha := newTestFicha(t, db, models.FichaEmAndamento)
	item := newTestItemComEstoque(t, db, "3", "2")

	_, err := RegistrarConsumo(db, ficha.ID, item.ID, dec("5"), time.Time{}, "", 1)
	var insuf *estoque.EstoqueInsuficienteError
	require.ErrorAs(t, err, &insuf)

	var numConsumos int64
	db.Model(&models.ItemConsumido{}).Count(&numConsumos)
	require.Zero(t, numConsumos, "consumo não pode ficar gravado quando a baixa falha")

	var numSaidas int64
	db.Model(&models.MovimentoEstoque{}).Where("tipo = ?", models.MovimentoSaida).Count(&numSaidas)
	require.Zero(t, numSaidas)

	disponivel, err := estoque.NewLedger(db).Disponivel(item.ID)
	require.NoError(t, err)
	require.True(t, disponivel.Equal(dec("3")))
}

func TestRegistrarConsumoFichaFechadaRejeita(t *testing.T) {
	db := newTestDB(t)
	item := newTestItemComEstoque(t, db, "10", "1")

	for _, status := range []models.StatusFicha{models.FichaConcluida, models.FichaCancelada} {
		ficha := models.FichaConsumoObra{
			RefObra:         "EP200-250101.80-ELLA_V1-" + string(status),
			DataInicio:      time.Now(),
			PrevisaoEntrega: time.Now(),
			ResponsavelID:   1,
			Status:          status,
		}
		require.NoError(t, db.Create(&ficha).Error)

		_, err := RegistrarConsumo(db, ficha.ID, item.ID, dec("1"), time.Time{}, "", 1)
		require.Error(t, err)
		require.Contains(t, err.Error(), string(status))
	}
}

func TestRegistrarConsumoQuantidadeInvalida(t *testing.T) {
	db := newTestDB(t)
	ficha := newTestFicha(t, db, models.FichaPlanejada)
	item := newTestItemComEstoque(t, db, "10", "1")

	_, err := RegistrarConsumo(db, ficha.ID, item.ID, dec("0"), time.Time{}, "", 1)
	require.Error(t, err)
	_, err = RegistrarConsumo(db, ficha.ID, item.ID, dec("-2"), time.Time{}, "", 1)
	require.Error(t, err)
}
