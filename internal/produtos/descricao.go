package produtos

import (
	"fmt"
	"strings"

	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Padrões de descrição: "Porta {{ acabamento }} ({{ altura }}x{{ largura }})mm"
// é compilado numa lista de segmentos literais e placeholders, resolvidos
// contra os valores dos atributos na hora de gerar a descrição.

type segmento struct {
	literal     string
	placeholder string // nome sanitizado do atributo; vazio em literais
}

type PadraoDescricao struct {
	segmentos []segmento
}

// Normaliza o nome de um atributo para chave de placeholder: minúsculas,
// acentos removidos, sequências não alfanuméricas viram "_".
// "Altura da Porta" -> "altura_da_porta".
func sanitizarNome(nome string) string {
	s := strings.ToLower(nome)
	subst := strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ü", "u",
		"ç", "c",
		"º", "o", "ª", "a",
	)
	s = subst.Replace(s)

	var b strings.Builder
	ultimoSub := false
	for _, r := range s {
		alfanum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alfanum {
			b.WriteRune(r)
			ultimoSub = false
		} else if !ultimoSub {
			b.WriteByte('_')
			ultimoSub = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// CompilarPadrao transforma o texto do padrão numa sequência de segmentos.
// Placeholder não fechado é erro de configuração do template.
func CompilarPadrao(texto string) (*PadraoDescricao, error) {
	var segs []segmento
	resto := texto
	for {
		abre := strings.Index(resto, "{{")
		if abre < 0 {
			if resto != "" {
				segs = append(segs, segmento{literal: resto})
			}
			break
		}
		if abre > 0 {
			segs = append(segs, segmento{literal: resto[:abre]})
		}
		fecha := strings.Index(resto[abre:], "}}")
		if fecha < 0 {
			return nil, fmt.Errorf("placeholder sem fecho em %q", texto)
		}
		nome := strings.TrimSpace(resto[abre+2 : abre+fecha])
		if nome == "" {
			return nil, fmt.Errorf("placeholder vazio em %q", texto)
		}
		segs = append(segs, segmento{placeholder: sanitizarNome(nome)})
		resto = resto[abre+fecha+2:]
	}
	return &PadraoDescricao{segmentos: segs}, nil
}

// Render resolve os placeholders contra o mapa de valores. Placeholder sem
// valor correspondente rende vazio, como nos templates antigos.
func (p *PadraoDescricao) Render(valores map[string]string) string {
	var b strings.Builder
	for _, s := range p.segmentos {
		if s.placeholder == "" {
			b.WriteString(s.literal)
		} else {
			b.WriteString(valores[s.placeholder])
		}
	}
	return b.String()
}

// Valores inteiros perdem a parte decimal na descrição: "1900.0000" -> "1900".
func formatarValorNum(v decimal.Decimal) string {
	if v.Equal(v.Truncate(0)) {
		return v.Truncate(0).String()
	}
	return v.String()
}

// DescricaoInstancia gera a descrição legível de uma instância. Com padrão
// definido no template, renderiza-o contra os atributos; sem padrão (ou com
// padrão inválido), junta os atributos de texto e anexa os numéricos como
// dimensões: "Carvalho Lacado (1900x800)mm".
func DescricaoInstancia(inst *models.ProdutoInstancia) string {
	valores := make(map[string]string, len(inst.Atributos))
	var textos []string
	var numeros []string
	for i := range inst.Atributos {
		ia := &inst.Atributos[i]
		attr := ia.TemplateAtributo.Atributo
		switch attr.Tipo {
		case models.AtributoNumerico:
			if ia.ValorNum != nil {
				v := formatarValorNum(*ia.ValorNum)
				valores[sanitizarNome(attr.Nome)] = v
				numeros = append(numeros, v)
			}
		case models.AtributoTexto:
			if ia.ValorTexto != "" {
				valores[sanitizarNome(attr.Nome)] = ia.ValorTexto
				textos = append(textos, ia.ValorTexto)
			}
		}
	}

	padrao := inst.Template.PadraoDescricao
	if strings.Contains(padrao, "{{") {
		if p, err := CompilarPadrao(padrao); err == nil {
			return strings.TrimSpace(p.Render(valores))
		}
	}

	descricao := strings.Join(textos, " ")
	if len(numeros) > 0 {
		descricao += fmt.Sprintf(" (%s)mm", strings.Join(numeros, "x"))
	}
	return strings.TrimSpace(descricao)
}
