package produtos

import (
	"testing"

	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizarNome(t *testing.T) {
	assert.Equal(t, "altura", sanitizarNome("Altura"))
	assert.Equal(t, "altura_da_porta", sanitizarNome("Altura da Porta"))
	assert.Equal(t, "acabamento", sanitizarNome("Acabamento"))
	assert.Equal(t, "no_de_dobradicas", sanitizarNome("Nº de Dobradiças"))
	assert.Equal(t, "espessura_mm", sanitizarNome("  Espessura (mm)  "))
}

func TestCompilarPadraoRender(t *testing.T) {
	p, err := CompilarPadrao("Porta {{ Acabamento }} ({{ altura }}x{{ largura }})mm")
	require.NoError(t, err)

	out := p.Render(map[string]string{
		"acabamento": "Carvalho",
		"altura":     "1900",
		"largura":    "800",
	})
	assert.Equal(t, "Porta Carvalho (1900x800)mm", out)

	// Placeholder sem valor rende vazio
	out = p.Render(map[string]string{"altura": "1900"})
	assert.Equal(t, "Porta  (1900x)mm", out)
}

func TestCompilarPadraoInvalido(t *testing.T) {
	_, err := CompilarPadrao("Porta {{ acabamento")
	require.Error(t, err)

	_, err = CompilarPadrao("Porta {{ }} lisa")
	require.Error(t, err)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func instanciaTeste(padrao string) *models.ProdutoInstancia {
	altura := dec("1900.0000")
	largura := dec("800")
	return &models.ProdutoInstancia{
		Template: models.ProdutoTemplate{
			Nome:            "Porta de Interior",
			PadraoDescricao: padrao,
		},
		Atributos: []models.InstanciaAtributo{
			{
				TemplateAtributo: models.TemplateAtributo{
					Atributo: models.Atributo{Nome: "Acabamento", Tipo: models.AtributoTexto},
				},
				ValorTexto: "Carvalho Lacado",
			},
			{
				TemplateAtributo: models.TemplateAtributo{
					Atributo: models.Atributo{Nome: "Altura", Tipo: models.AtributoNumerico},
				},
				ValorNum: &altura,
			},
			{
				TemplateAtributo: models.TemplateAtributo{
					Atributo: models.Atributo{Nome: "Largura", Tipo: models.AtributoNumerico},
				},
				ValorNum: &largura,
			},
		},
	}
}

func TestDescricaoInstanciaComPadrao(t *testing.T) {
	inst := instanciaTeste("Porta {{ acabamento }} ({{ altura }}x{{ largura }})mm")
	assert.Equal(t, "Porta Carvalho Lacado (1900x800)mm", DescricaoInstancia(inst))
}

func TestDescricaoInstanciaSemPadrao(t *testing.T) {
	inst := instanciaTeste("")
	assert.Equal(t, "Carvalho Lacado (1900x800)mm", DescricaoInstancia(inst))
}

func TestDescricaoInstanciaPadraoInvalidoCaiNoFallback(t *testing.T) {
	inst := instanciaTeste("Porta {{ acabamento")
	assert.Equal(t, "Carvalho Lacado (1900x800)mm", DescricaoInstancia(inst))
}

func TestDescricaoInstanciaValorNaoInteiro(t *testing.T) {
	inst := instanciaTeste("")
	meia := dec("12.5")
	inst.Atributos = append(inst.Atributos, models.InstanciaAtributo{
		TemplateAtributo: models.TemplateAtributo{
			Atributo: models.Atributo{Nome: "Espessura", Tipo: models.AtributoNumerico},
		},
		ValorNum: &meia,
	})
	assert.Equal(t, "Carvalho Lacado (1900x800x12.5)mm", DescricaoInstancia(inst))
}
