package orcamento

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodigoLegado(t *testing.T) {
	dados, err := ParseCodigoLegado("EP107-250625.80-ELLA_V2")
	require.NoError(t, err)

	assert.Equal(t, "EP", dados.TipoCliente)
	assert.Equal(t, "107", dados.CodigoCliente)
	assert.Equal(t, "Cliente 107", dados.NomeCliente)
	assert.Equal(t, "80-ELLA", dados.CodigoAgente)
	assert.Equal(t, uint(2), dados.Versao)
	assert.Equal(t, time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), dados.DataSolicitacao)
}

func TestParseCodigoLegadoParticular(t *testing.T) {
	dados, err := ParseCodigoLegado("PC33-010124.5-JM_V1")
	require.NoError(t, err)

	assert.Equal(t, "PC", dados.TipoCliente)
	assert.Equal(t, "5-JM", dados.CodigoAgente)
	assert.Equal(t, uint(1), dados.Versao)
}

func TestParseCodigoLegadoInvalido(t *testing.T) {
	casos := []string{
		"",
		"XX107-250625.80-ELLA_V2", // tipo de cliente desconhecido
		"EP107-2506.80-ELLA_V2",   // data curta
		"EP107-250625.80-ella_V2", // iniciais minúsculas
		"EP107-250625.80-ELLA",    // sem versão
		"EP107-250625.80-ELLA_V0", // versão zero
		"EP107-321325.80-ELLA_V1", // dia/mês impossíveis
	}
	for _, c := range casos {
		_, err := ParseCodigoLegado(c)
		assert.Error(t, err, "codigo %q devia ser rejeitado", c)
	}
}

func TestCodigoParaVersao(t *testing.T) {
	assert.Equal(t, "EP107-250625.80-ELLA_V3", CodigoParaVersao("EP107-250625.80-ELLA_V2", 3))
	assert.Equal(t, "PC33-010124.5-JM_V10", CodigoParaVersao("PC33-010124.5-JM_V9", 10))
}
