package consumos

import (
	"fmt"
	"time"

	"tdm-backend/internal/estoque"
	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegistrarConsumo cria o item consumido da ficha e dispara a baixa FIFO no
// estoque na mesma transação. Estoque insuficiente aborta tudo: nem o item
// consumido nem qualquer movimento ficam gravados. O custo FIFO apurado na
// baixa fica registrado no item para os relatórios.
func RegistrarConsumo(db *gorm.DB, fichaID, itemID uint, quantidade decimal.Decimal, dataConsumo time.Time, descricaoDetalhada string, userID uint) (*models.ItemConsumido, error) {
	if !quantidade.IsPositive() {
		return nil, fmt.Errorf("quantidade do consumo deve ser positiva")
	}

	var ficha models.FichaConsumoObra
	if err := db.First(&ficha, "id = ?", fichaID).Error; err != nil {
		return nil, fmt.Errorf("ficha de obra %d não encontrada", fichaID)
	}
	if ficha.Status == models.FichaConcluida || ficha.Status == models.FichaCancelada {
		return nil, fmt.Errorf("ficha '%s' está %s e não aceita consumos", ficha.RefObra, ficha.Status)
	}

	var item models.ItemEstocavel
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, fmt.Errorf("item estocável %d não encontrado", itemID)
	}

	if dataConsumo.IsZero() {
		dataConsumo = time.Now()
	}

	var consumo models.ItemConsumido
	err := db.Transaction(func(tx *gorm.DB) error {
		consumo = models.ItemConsumido{
			FichaObraID:        ficha.ID,
			ItemID:             item.ID,
			DataConsumo:        dataConsumo,
			Quantidade:         quantidade,
			Unidade:            item.Unidade,
			DescricaoDetalhada: descricaoDetalhada,
			CustoFIFO:          decimal.Zero,
		}
		if err := tx.Create(&consumo).Error; err != nil {
			return err
		}

		parcelas, err := estoque.NewLedger(tx).Consumir(item.ID, quantidade, userID, &consumo.ID)
		if err != nil {
			return err
		}

		consumo.CustoFIFO = estoque.CustoConsumo(parcelas)
		return tx.Model(&consumo).Update("custo_fifo", consumo.CustoFIFO).Error
	})
	if err != nil {
		return nil, err
	}

	consumo.Item = item
	return &consumo, nil
}
