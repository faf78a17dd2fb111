package orcamento

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Código legado dos orçamentos, herdado do fluxo comercial antigo:
// EP107-250625.80-ELLA_V2 = cliente empresa 107, pedido de 25/06/25,
// agente 80-ELLA, versão 2.
var padraoCodigoLegado = regexp.MustCompile(`^(EP|PC)(\d+)-(\d{6})\.(\d+)-([A-Z]+)_V(\d+)$`)

var padraoSufixoVersao = regexp.MustCompile(`_V\d+`)

type DadosCodigoLegado struct {
	TipoCliente     string // EP = empresa, PC = particular
	CodigoCliente   string
	NomeCliente     string
	CodigoAgente    string
	DataSolicitacao time.Time
	Versao          uint
}

// ParseCodigoLegado decompõe o código legado nos dados do cliente e versão.
func ParseCodigoLegado(codigo string) (*DadosCodigoLegado, error) {
	m := padraoCodigoLegado.FindStringSubmatch(codigo)
	if m == nil {
		return nil, fmt.Errorf("formato do código legado inválido, use o formato EP107-250625.80-ELLA_V2")
	}

	data, err := time.Parse("020106", m[3])
	if err != nil {
		return nil, fmt.Errorf("data do código legado inválida: %w", err)
	}
	versao, err := strconv.ParseUint(m[6], 10, 32)
	if err != nil || versao == 0 {
		return nil, fmt.Errorf("versão do código legado inválida")
	}

	return &DadosCodigoLegado{
		TipoCliente:     m[1],
		CodigoCliente:   m[2],
		NomeCliente:     "Cliente " + m[2],
		CodigoAgente:    m[4] + "-" + m[5],
		DataSolicitacao: data,
		Versao:          uint(versao),
	}, nil
}

// CodigoParaVersao devolve o código legado com o sufixo de versão trocado.
func CodigoParaVersao(codigo string, versao uint) string {
	return padraoSufixoVersao.ReplaceAllString(codigo, fmt.Sprintf("_V%d", versao))
}
