package orcamento

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tdm-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// Os ficheiros de exportação partem de modelos .xlsx com cabeçalho e três
// linhas modelo (9 = categoria, 10 = template, 11 = instância). Cada linha
// inserida copia o estilo da linha modelo correspondente; uma célula modelo
// sem estilo cai num formato numérico padrão para não corromper as colunas
// de valores. No fim as linhas modelo são removidas e as cláusulas anexadas
// com as regiões unidas deslocadas.

var ErrModeloNaoEncontrado = errors.New("modelo de exportação não encontrado")

const (
	linhaModeloCategoria = 9
	linhaModeloTemplate  = 10
	linhaModeloInstancia = 11
	numColunas           = 7
	primeiraLinhaDados   = 9
)

type estilosLinha [numColunas]int

func abrirModelo(dir, nome string) (*excelize.File, error) {
	caminho := filepath.Join(dir, nome)
	if _, err := os.Stat(caminho); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModeloNaoEncontrado, caminho)
	}
	f, err := excelize.OpenFile(caminho)
	if err != nil {
		return nil, fmt.Errorf("não foi possível abrir o modelo %s: %w", nome, err)
	}
	return f, nil
}

// Captura os estilos de uma linha modelo. Célula sem estilo (id 0) recebe o
// formato numérico padrão em vez de propagar o estilo vazio.
func capturarEstilos(f *excelize.File, sheet string, linha int, padraoNumerico int) (estilosLinha, error) {
	var estilos estilosLinha
	for col := 1; col <= numColunas; col++ {
		cell, err := excelize.CoordinatesToCellName(col, linha)
		if err != nil {
			return estilos, err
		}
		id, err := f.GetCellStyle(sheet, cell)
		if err != nil {
			return estilos, err
		}
		if id == 0 {
			id = padraoNumerico
		}
		estilos[col-1] = id
	}
	return estilos, nil
}

func aplicarEstilos(f *excelize.File, sheet string, linha int, estilos estilosLinha) error {
	for col := 1; col <= numColunas; col++ {
		cell, err := excelize.CoordinatesToCellName(col, linha)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, estilos[col-1]); err != nil {
			return err
		}
	}
	return nil
}

func inserirLinha(f *excelize.File, sheet string, linha int, estilos estilosLinha) error {
	if err := f.InsertRows(sheet, linha, 1); err != nil {
		return err
	}
	return aplicarEstilos(f, sheet, linha, estilos)
}

func setCelula(f *excelize.File, sheet string, col, linha int, valor interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, linha)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, valor)
}

func escreverCabecalho(f *excelize.File, sheet string, orc *models.Orcamento) error {
	if err := f.SetCellValue(sheet, "B3", orc.NomeCliente); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "B4", "Obra: "+orc.CodigoLegado); err != nil {
		return err
	}
	return f.SetCellValue(sheet, "B5", orc.CodigoLegado)
}

// Anexa o conteúdo do modelo de cláusulas a partir de linhaInicial,
// deslocando as regiões unidas pelo mesmo offset. Os estilos das cláusulas
// são recriados no ficheiro de destino (ids de estilo não atravessam
// ficheiros).
func anexarClausulas(destino *excelize.File, sheetDestino, dir string, linhaInicial int) error {
	clausulas, err := abrirModelo(dir, "modelo_clausulas.xlsx")
	if err != nil {
		return err
	}
	defer clausulas.Close()

	sheetClausulas := clausulas.GetSheetName(0)
	linhas, err := clausulas.GetRows(sheetClausulas)
	if err != nil {
		return err
	}

	offset := linhaInicial - 1
	estilosCopiados := map[int]int{}

	for r, linha := range linhas {
		for c, valor := range linha {
			cellOrigem, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			cellDestino, err := excelize.CoordinatesToCellName(c+1, r+1+offset)
			if err != nil {
				return err
			}
			if valor != "" {
				if err := destino.SetCellValue(sheetDestino, cellDestino, valor); err != nil {
					return err
				}
			}

			idOrigem, err := clausulas.GetCellStyle(sheetClausulas, cellOrigem)
			if err != nil {
				return err
			}
			if idOrigem == 0 {
				continue
			}
			idDestino, ok := estilosCopiados[idOrigem]
			if !ok {
				estilo, err := clausulas.GetStyle(idOrigem)
				if err != nil {
					return err
				}
				idDestino, err = destino.NewStyle(estilo)
				if err != nil {
					return err
				}
				estilosCopiados[idOrigem] = idDestino
			}
			if err := destino.SetCellStyle(sheetDestino, cellDestino, cellDestino, idDestino); err != nil {
				return err
			}
		}
	}

	unidas, err := clausulas.GetMergeCells(sheetClausulas)
	if err != nil {
		return err
	}
	for _, u := range unidas {
		colIni, linIni, err := excelize.CellNameToCoordinates(u.GetStartAxis())
		if err != nil {
			return err
		}
		colFim, linFim, err := excelize.CellNameToCoordinates(u.GetEndAxis())
		if err != nil {
			return err
		}
		inicio, err := excelize.CoordinatesToCellName(colIni, linIni+offset)
		if err != nil {
			return err
		}
		fim, err := excelize.CoordinatesToCellName(colFim, linFim+offset)
		if err != nil {
			return err
		}
		if err := destino.MergeCell(sheetDestino, inicio, fim); err != nil {
			return err
		}
	}
	return nil
}

// ExportarOrcamentoExcel gera o .xlsx do orçamento a partir de modelo.xlsx:
// cabeçalho com os dados do cliente, linhas hierárquicas numeradas
// (1, 1.1, 1.1.1) e as cláusulas contratuais no fim.
func ExportarOrcamentoExcel(dirModelos string, orc *models.Orcamento, visao *VisaoAgrupada) (*bytes.Buffer, error) {
	f, err := abrirModelo(dirModelos, "modelo.xlsx")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := escreverCabecalho(f, sheet, orc); err != nil {
		return nil, err
	}

	padraoNumerico, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	estilosCategoria, err := capturarEstilos(f, sheet, linhaModeloCategoria, padraoNumerico)
	if err != nil {
		return nil, err
	}
	estilosTemplate, err := capturarEstilos(f, sheet, linhaModeloTemplate, padraoNumerico)
	if err != nil {
		return nil, err
	}
	estilosInstancia, err := capturarEstilos(f, sheet, linhaModeloInstancia, padraoNumerico)
	if err != nil {
		return nil, err
	}

	linha := primeiraLinhaDados
	for iCat, cat := range visao.Categorias {
		if err := inserirLinha(f, sheet, linha, estilosCategoria); err != nil {
			return nil, err
		}
		if err := setCelula(f, sheet, 1, linha, fmt.Sprintf("%d", iCat+1)); err != nil {
			return nil, err
		}
		if err := setCelula(f, sheet, 2, linha, cat.Nome); err != nil {
			return nil, err
		}
		linha++

		for iTpl, tpl := range cat.Templates {
			if err := inserirLinha(f, sheet, linha, estilosTemplate); err != nil {
				return nil, err
			}
			if err := setCelula(f, sheet, 1, linha, fmt.Sprintf("%d.%d", iCat+1, iTpl+1)); err != nil {
				return nil, err
			}
			if err := setCelula(f, sheet, 2, linha, tpl.Nome); err != nil {
				return nil, err
			}
			linha++

			for iLin, ln := range tpl.Linhas {
				if err := inserirLinha(f, sheet, linha, estilosInstancia); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 1, linha, fmt.Sprintf("%d.%d.%d", iCat+1, iTpl+1, iLin+1)); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 2, linha, ln.Descricao); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 3, linha, tpl.Unidade); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 4, linha, ln.Item.Quantidade); err != nil {
					return nil, err
				}
				preco, _ := ln.Item.PrecoUnitario.Float64()
				if err := setCelula(f, sheet, 5, linha, preco); err != nil {
					return nil, err
				}
				total, _ := ln.Total.Float64()
				if err := setCelula(f, sheet, 6, linha, total); err != nil {
					return nil, err
				}
				linha++
			}
		}
	}

	// As linhas modelo ficaram empurradas para baixo do conteúdo inserido
	for i := 0; i < 3; i++ {
		if err := f.RemoveRow(sheet, linha); err != nil {
			return nil, err
		}
	}

	if err := anexarClausulas(f, sheet, dirModelos, linha); err != nil {
		return nil, err
	}

	totalGeral, _ := visao.TotalGeral.Float64()
	if err := setCelula(f, sheet, 7, linha, totalGeral); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// ExportarFichaProducaoExcel gera a ficha de produção: a mesma hierarquia do
// orçamento, sem valores monetários, a partir de modelo_ficha_producao.xlsx.
func ExportarFichaProducaoExcel(dirModelos string, orc *models.Orcamento, visao *VisaoAgrupada) (*bytes.Buffer, error) {
	f, err := abrirModelo(dirModelos, "modelo_ficha_producao.xlsx")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := escreverCabecalho(f, sheet, orc); err != nil {
		return nil, err
	}

	padraoNumerico, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	estilosCategoria, err := capturarEstilos(f, sheet, linhaModeloCategoria, padraoNumerico)
	if err != nil {
		return nil, err
	}
	estilosTemplate, err := capturarEstilos(f, sheet, linhaModeloTemplate, padraoNumerico)
	if err != nil {
		return nil, err
	}
	estilosInstancia, err := capturarEstilos(f, sheet, linhaModeloInstancia, padraoNumerico)
	if err != nil {
		return nil, err
	}
	estiloComponentes, err := estiloComQuebra(f, estilosTemplate[1])
	if err != nil {
		return nil, err
	}

	linha := primeiraLinhaDados
	for iCat, cat := range visao.Categorias {
		if err := inserirLinha(f, sheet, linha, estilosCategoria); err != nil {
			return nil, err
		}
		if err := setCelula(f, sheet, 1, linha, fmt.Sprintf("%d", iCat+1)); err != nil {
			return nil, err
		}
		if err := setCelula(f, sheet, 2, linha, cat.Nome); err != nil {
			return nil, err
		}
		linha++

		for iTpl, tpl := range cat.Templates {
			if err := inserirLinha(f, sheet, linha, estilosTemplate); err != nil {
				return nil, err
			}
			if err := setCelula(f, sheet, 1, linha, fmt.Sprintf("%d.%d", iCat+1, iTpl+1)); err != nil {
				return nil, err
			}
			// A linha do template lista os materiais de estoque agregados de
			// todas as instâncias, já multiplicados pelas quantidades do
			// orçamento. Sem componentes cadastrados fica só o nome.
			comps := ComponentesAgregados(tpl.Linhas)
			if len(comps) > 0 {
				cel, err := excelize.CoordinatesToCellName(2, linha)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(sheet, cel, textoComponentes(comps)); err != nil {
					return nil, err
				}
				if err := f.SetCellStyle(sheet, cel, cel, estiloComponentes); err != nil {
					return nil, err
				}
			} else if err := setCelula(f, sheet, 2, linha, tpl.Nome); err != nil {
				return nil, err
			}
			linha++

			for iLin, ln := range tpl.Linhas {
				if err := inserirLinha(f, sheet, linha, estilosInstancia); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 1, linha, fmt.Sprintf("%d.%d.%d", iCat+1, iTpl+1, iLin+1)); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 2, linha, ln.Descricao); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 3, linha, tpl.Unidade); err != nil {
					return nil, err
				}
				if err := setCelula(f, sheet, 4, linha, ln.Item.Quantidade); err != nil {
					return nil, err
				}
				linha++
			}
		}
	}

	for i := 0; i < 3; i++ {
		if err := f.RemoveRow(sheet, linha); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}

// textoComponentes monta o bloco de texto multilinha da coluna de descrição.
func textoComponentes(comps []ComponenteAgregado) string {
	var b strings.Builder
	b.WriteString("Componentes:")
	for _, c := range comps {
		fmt.Fprintf(&b, "\n- %s: %s %s", c.Nome, c.Quantidade.StringFixed(2), c.Unidade)
		if c.Descricao != "" {
			b.WriteString(" - " + c.Descricao)
		}
	}
	return b.String()
}

// estiloComQuebra deriva do estilo dado uma variante com quebra de linha na
// célula, para o bloco de componentes não estourar a largura da coluna.
func estiloComQuebra(f *excelize.File, base int) (int, error) {
	st, err := f.GetStyle(base)
	if err != nil {
		return 0, err
	}
	if st.Alignment == nil {
		st.Alignment = &excelize.Alignment{}
	}
	st.Alignment.WrapText = true
	return f.NewStyle(st)
}
