package estoque

import (
	"fmt"

	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger: operações de estoque sobre lotes e movimentos. Recebe o *gorm.DB
// explicitamente para as suítes de teste poderem injetar um banco em memória.
//
// Toda operação roda numa única transação: ou todos os movimentos da operação
// são gravados, ou nenhum. A escrita em cada lote é guardada pela quantidade
// lida (UPDATE condicional); se nenhuma linha for afetada, outra transação
// mexeu no lote e a operação inteira falha com ErrConflitoConcorrencia.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// ParcelaConsumo: quanto foi retirado de cada lote num consumo.
type ParcelaConsumo struct {
	Lote       models.Lote
	Quantidade decimal.Decimal
}

// CustoConsumo: valorização FIFO do consumo, soma de quantidade × custo
// unitário de cada lote tocado.
func CustoConsumo(parcelas []ParcelaConsumo) decimal.Decimal {
	total := decimal.Zero
	for _, p := range parcelas {
		total = total.Add(p.Quantidade.Mul(p.Lote.CustoUnitario))
	}
	return total
}

// Disponivel: soma da quantidade atual de todos os lotes do item.
func (l *Ledger) Disponivel(itemID uint) (decimal.Decimal, error) {
	var lotes []models.Lote
	if err := l.db.Where("item_id = ? AND quantidade_atual > 0", itemID).Find(&lotes).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, lt := range lotes {
		total = total.Add(lt.QuantidadeAtual)
	}
	return total, nil
}

// RegistrarEntrada: cria um lote com a quantidade e o custo de compra e grava
// o movimento de entrada correspondente.
func (l *Ledger) RegistrarEntrada(itemID uint, quantidade, custoUnitario decimal.Decimal, userID uint, observacao string) (*models.Lote, error) {
	if !quantidade.IsPositive() {
		return nil, fmt.Errorf("quantidade da entrada deve ser positiva")
	}
	if custoUnitario.IsNegative() {
		return nil, fmt.Errorf("custo unitário não pode ser negativo")
	}

	lote := models.Lote{
		ItemID:            itemID,
		QuantidadeInicial: quantidade,
		QuantidadeAtual:   quantidade,
		CustoUnitario:     custoUnitario,
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lote).Error; err != nil {
			return err
		}
		mov := models.MovimentoEstoque{
			LoteID:     lote.ID,
			Quantidade: quantidade,
			Tipo:       models.MovimentoEntrada,
			UserID:     userID,
			Observacao: observacao,
		}
		return tx.Create(&mov).Error
	})
	if err != nil {
		return nil, err
	}
	return &lote, nil
}

// Consumir: baixa FIFO de uma quantidade de um item. Percorre os lotes com
// quantidade disponível do mais antigo para o mais novo, retirando de cada um
// até satisfazer o pedido, e grava um movimento de saída por lote tocado.
//
// Estoque insuficiente rejeita o consumo inteiro (EstoqueInsuficienteError,
// nada é gravado). O comportamento parcial não é suportado; quem quiser
// consumir "o que houver" consulta Disponivel antes.
func (l *Ledger) Consumir(itemID uint, quantidade decimal.Decimal, userID uint, origemConsumoID *uint) ([]ParcelaConsumo, error) {
	if !quantidade.IsPositive() {
		return nil, fmt.Errorf("quantidade do consumo deve ser positiva")
	}

	var parcelas []ParcelaConsumo
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var retiradas []ParcelaConsumo
		var err error
		retiradas, err = retirarFIFO(tx, itemID, quantidade, func(disponivel decimal.Decimal) error {
			return &EstoqueInsuficienteError{ItemID: itemID, Disponivel: disponivel, Solicitada: quantidade}
		})
		if err != nil {
			return err
		}
		for _, p := range retiradas {
			mov := models.MovimentoEstoque{
				LoteID:          p.Lote.ID,
				Quantidade:      p.Quantidade,
				Tipo:            models.MovimentoSaida,
				UserID:          userID,
				OrigemConsumoID: origemConsumoID,
			}
			if err := tx.Create(&mov).Error; err != nil {
				return err
			}
		}
		parcelas = retiradas
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parcelas, nil
}

// AjustarItem: ajuste de contagem ao nível do item. Delta positivo cria um
// lote novo (lotes esgotados nunca são reabertos) com movimento de ajuste
// positivo; delta negativo baixa FIFO com movimentos de ajuste negativo.
// Delta negativo maior que o disponível falha com AjusteInvalidoError e nada
// é gravado.
func (l *Ledger) AjustarItem(itemID uint, delta, custoUnitario decimal.Decimal, userID uint, justificativa string) ([]models.MovimentoEstoque, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("delta do ajuste não pode ser zero")
	}

	var movimentos []models.MovimentoEstoque
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if delta.IsPositive() {
			lote := models.Lote{
				ItemID:            itemID,
				QuantidadeInicial: delta,
				QuantidadeAtual:   delta,
				CustoUnitario:     custoUnitario,
			}
			if err := tx.Create(&lote).Error; err != nil {
				return err
			}
			mov := models.MovimentoEstoque{
				LoteID:     lote.ID,
				Quantidade: delta,
				Tipo:       models.MovimentoAjustePositivo,
				UserID:     userID,
				Observacao: justificativa,
			}
			if err := tx.Create(&mov).Error; err != nil {
				return err
			}
			movimentos = append(movimentos, mov)
			return nil
		}

		magnitude := delta.Neg()
		retiradas, err := retirarFIFO(tx, itemID, magnitude, func(disponivel decimal.Decimal) error {
			return &AjusteInvalidoError{ItemID: itemID, Disponivel: disponivel, Delta: delta}
		})
		if err != nil {
			return err
		}
		for _, p := range retiradas {
			mov := models.MovimentoEstoque{
				LoteID:     p.Lote.ID,
				Quantidade: p.Quantidade,
				Tipo:       models.MovimentoAjusteNegativo,
				UserID:     userID,
				Observacao: justificativa,
			}
			if err := tx.Create(&mov).Error; err != nil {
				return err
			}
			movimentos = append(movimentos, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movimentos, nil
}

// AjustarLote: ajuste dirigido a um lote específico. Delta negativo não pode
// levar a quantidade abaixo de zero; delta positivo só é aceito em lote ainda
// aberto (um lote esgotado nunca volta a receber quantidade; registre uma
// nova entrada ou um ajuste ao nível do item).
func (l *Ledger) AjustarLote(loteID uint, delta decimal.Decimal, userID uint, justificativa string) (*models.MovimentoEstoque, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("delta do ajuste não pode ser zero")
	}

	var movimento models.MovimentoEstoque
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var lote models.Lote
		if err := tx.First(&lote, "id = ?", loteID).Error; err != nil {
			return err
		}

		nova := lote.QuantidadeAtual.Add(delta)
		if nova.IsNegative() {
			return &AjusteInvalidoError{LoteID: lote.ID, ItemID: lote.ItemID, Disponivel: lote.QuantidadeAtual, Delta: delta}
		}
		if delta.IsPositive() && lote.Esgotado() {
			return &AjusteInvalidoError{LoteID: lote.ID, ItemID: lote.ItemID, Disponivel: lote.QuantidadeAtual, Delta: delta}
		}

		res := tx.Model(&models.Lote{}).
			Where("id = ? AND quantidade_atual = ?", lote.ID, lote.QuantidadeAtual).
			Update("quantidade_atual", nova)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflitoConcorrencia
		}

		tipo := models.MovimentoAjustePositivo
		magnitude := delta
		if delta.IsNegative() {
			tipo = models.MovimentoAjusteNegativo
			magnitude = delta.Neg()
		}
		movimento = models.MovimentoEstoque{
			LoteID:     lote.ID,
			Quantidade: magnitude,
			Tipo:       tipo,
			UserID:     userID,
			Observacao: justificativa,
		}
		return tx.Create(&movimento).Error
	})
	if err != nil {
		return nil, err
	}
	return &movimento, nil
}

// SaldoPorMovimentos: reconstrói a quantidade atual de um lote pela soma
// assinada dos seus movimentos. Usado na verificação de consistência do razão.
func (l *Ledger) SaldoPorMovimentos(loteID uint) (decimal.Decimal, error) {
	var movimentos []models.MovimentoEstoque
	if err := l.db.Where("lote_id = ?", loteID).Order("id ASC").Find(&movimentos).Error; err != nil {
		return decimal.Zero, err
	}
	saldo := decimal.Zero
	for i := range movimentos {
		saldo = saldo.Add(movimentos[i].ValorAssinado())
	}
	return saldo, nil
}

// retirarFIFO: baixa uma quantidade dos lotes abertos do item, do mais antigo
// para o mais novo, com UPDATE condicional por lote. insuficiente() produz o
// erro a devolver quando o total disponível não cobre o pedido.
func retirarFIFO(tx *gorm.DB, itemID uint, quantidade decimal.Decimal, insuficiente func(disponivel decimal.Decimal) error) ([]ParcelaConsumo, error) {
	var lotes []models.Lote
	if err := tx.Where("item_id = ? AND quantidade_atual > 0", itemID).
		Order("created_at ASC, id ASC").
		Find(&lotes).Error; err != nil {
		return nil, err
	}

	disponivel := decimal.Zero
	for _, lt := range lotes {
		disponivel = disponivel.Add(lt.QuantidadeAtual)
	}
	if disponivel.LessThan(quantidade) {
		return nil, insuficiente(disponivel)
	}

	var parcelas []ParcelaConsumo
	restante := quantidade
	for i := range lotes {
		if !restante.IsPositive() {
			break
		}
		lote := lotes[i]
		tomar := decimal.Min(lote.QuantidadeAtual, restante)
		nova := lote.QuantidadeAtual.Sub(tomar)

		res := tx.Model(&models.Lote{}).
			Where("id = ? AND quantidade_atual = ?", lote.ID, lote.QuantidadeAtual).
			Update("quantidade_atual", nova)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrConflitoConcorrencia
		}

		lote.QuantidadeAtual = nova
		parcelas = append(parcelas, ParcelaConsumo{Lote: lote, Quantidade: tomar})
		restante = restante.Sub(tomar)
	}
	return parcelas, nil
}
