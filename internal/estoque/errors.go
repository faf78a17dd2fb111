package estoque

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrConflitoConcorrencia: outra transação alterou o lote entre a leitura e a
// escrita guardada. O chamador deve repetir a operação.
var ErrConflitoConcorrencia = errors.New("conflito de concorrência ao atualizar o lote")

// EstoqueInsuficienteError: o consumo pedido excede o total disponível nos
// lotes do item. Nenhum movimento é persistido.
type EstoqueInsuficienteError struct {
	ItemID     uint
	Disponivel decimal.Decimal
	Solicitada decimal.Decimal
}

func (e *EstoqueInsuficienteError) Error() string {
	return fmt.Sprintf("estoque insuficiente para o item %d: disponível %s, solicitado %s",
		e.ItemID, e.Disponivel.String(), e.Solicitada.String())
}

// AjusteInvalidoError: o ajuste negativo pedido levaria a quantidade abaixo de zero.
type AjusteInvalidoError struct {
	LoteID     uint
	ItemID     uint
	Disponivel decimal.Decimal
	Delta      decimal.Decimal
}

func (e *AjusteInvalidoError) Error() string {
	if e.LoteID != 0 {
		return fmt.Sprintf("ajuste inválido no lote %d: disponível %s, delta %s",
			e.LoteID, e.Disponivel.String(), e.Delta.String())
	}
	return fmt.Sprintf("ajuste inválido no item %d: disponível %s, delta %s",
		e.ItemID, e.Disponivel.String(), e.Delta.String())
}
