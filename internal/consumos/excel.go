package consumos

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tdm-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

var ErrModeloNaoEncontrado = errors.New("modelo de exportação não encontrado")

// FiltrosRelatorio: valores dos filtros aplicados, escritos no cabeçalho do
// relatório exportado.
type FiltrosRelatorio struct {
	RefObra    string
	DataInicio string
	DataFim    string
	Posto      string
}

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

func ouNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// ExportarConsumoMaterialExcel gera o relatório de consumo de material a
// partir de modelo_consumo_material.xlsx: uma linha agregada por material,
// com linha em branco entre cada uma, como na ficha em papel.
func ExportarConsumoMaterialExcel(dirModelos string, agregados []ConsumoAgregado, filtros FiltrosRelatorio) (*bytes.Buffer, error) {
	f, err := abrirModelo(dirModelos, "modelo_consumo_material.xlsx")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "B4", ouNA(filtros.RefObra)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "B5", ouNA(filtros.DataInicio)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "B6", ouNA(filtros.DataFim)); err != nil {
		return nil, err
	}

	if err := f.MergeCell(sheet, "A8", "C8"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A8", "Materiais/Componentes"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "D8", "QTD"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "E8", "Tipo Un"); err != nil {
		return nil, err
	}

	linha := 9
	for _, agg := range agregados {
		inicio, err := excelize.CoordinatesToCellName(1, linha)
		if err != nil {
			return nil, err
		}
		fim, err := excelize.CoordinatesToCellName(3, linha)
		if err != nil {
			return nil, err
		}
		if err := f.MergeCell(sheet, inicio, fim); err != nil {
			return nil, err
		}

		display := agg.ItemNome
		if agg.DescricaoDetalhada != "" {
			display += " - " + agg.DescricaoDetalhada
		}
		if err := f.SetCellValue(sheet, inicio, display); err != nil {
			return nil, err
		}

		qtd, _ := agg.TotalQuantidade.Float64()
		cellQtd, err := excelize.CoordinatesToCellName(4, linha)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cellQtd, qtd); err != nil {
			return nil, err
		}
		cellUn, err := excelize.CoordinatesToCellName(5, linha)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cellUn, agg.Unidade); err != nil {
			return nil, err
		}

		// Salta uma linha entre materiais
		linha += 2
	}

	return f.WriteToBuffer()
}

// ExportarUtilizacaoMaquinaExcel gera o relatório de utilização dos postos a
// partir de modelo_ficha_postos_maquinas.xlsx, uma linha por sessão.
func ExportarUtilizacaoMaquinaExcel(dirModelos string, sessoes []models.SessaoTrabalho, filtros FiltrosRelatorio) (*bytes.Buffer, error) {
	f, err := abrirModelo(dirModelos, "modelo_ficha_postos_maquinas.xlsx")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "B4", ouNA(filtros.Posto)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "B5", ouNA(filtros.DataInicio)); err != nil {
		return nil, err
	}

	linha := 8
	for i := range sessoes {
		s := &sessoes[i]

		refObra := "N/A"
		if s.FichaObra != nil {
			refObra = s.FichaObra.RefObra
		}
		saida := "--"
		if s.HoraSaida != nil {
			saida = s.HoraSaida.Format("15:04")
		}

		valores := []interface{}{
			s.Operador.Nome,
			refObra,
			s.Operacao,
			s.HoraInicio.Format("15:04"),
			saida,
		}
		for col, v := range valores {
			cell, err := excelize.CoordinatesToCellName(col+1, linha)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		linha++
	}

	return f.WriteToBuffer()
}
