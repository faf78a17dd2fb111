package orcamento

import (
	"bytes"
	"path/filepath"
	"testing"

	"tdm-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Monta um modelo mínimo com as três linhas modelo estilizadas e um rodapé,
// como o modelo.xlsx real.
func criarModeloTeste(t *testing.T, dir, nome string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "ORÇAMENTO"))

	negrito, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	italico, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	require.NoError(t, err)
	monetario, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)

	require.NoError(t, f.SetCellStyle(sheet, "A9", "G9", negrito))
	require.NoError(t, f.SetCellStyle(sheet, "A10", "G10", italico))
	require.NoError(t, f.SetCellStyle(sheet, "A11", "G11", monetario))

	require.NoError(t, f.SetCellValue(sheet, "A12", "Rodapé"))

	require.NoError(t, f.SaveAs(filepath.Join(dir, nome)))
	require.NoError(t, f.Close())
}

func criarClausulasTeste(t *testing.T, dir string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "Cláusulas Gerais"))
	require.NoError(t, f.MergeCell(sheet, "A1", "C1"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "1. Validade do orçamento: 30 dias."))
	require.NoError(t, f.SetCellValue(sheet, "A3", "2. Prazo de entrega a combinar."))

	require.NoError(t, f.SaveAs(filepath.Join(dir, "modelo_clausulas.xlsx")))
	require.NoError(t, f.Close())
}

// 2 categorias, 3 templates, 5 instâncias para o cenário de exportação.
func visaoTeste() (*models.Orcamento, *VisaoAgrupada) {
	orc := &models.Orcamento{
		CodigoLegado: "EP107-250625.80-ELLA_V2",
		NomeCliente:  "Cliente 107",
	}
	itens := []models.ItemOrcamento{
		itemTeste(1, 1, 10, "Portas", "Porta de Interior", 2, "120.00"),
		itemTeste(2, 1, 10, "Portas", "Porta de Interior", 1, "150.00"),
		itemTeste(3, 1, 11, "Portas", "Porta Corta-Fogo", 1, "480.50"),
		itemTeste(4, 2, 20, "Armários", "Armário Embutido", 3, "300.00"),
		itemTeste(5, 2, 20, "Armários", "Armário Embutido", 1, "750.00"),
	}
	return orc, Agrupar(itens)
}

func TestExportarOrcamentoExcel(t *testing.T) {
	dir := t.TempDir()
	criarModeloTeste(t, dir, "modelo.xlsx")
	criarClausulasTeste(t, dir)

	orc, visao := visaoTeste()
	buf, err := ExportarOrcamentoExcel(dir, orc, visao)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	get := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	// Cabeçalho
	assert.Equal(t, "Cliente 107", get("B3"))
	assert.Equal(t, "Obra: EP107-250625.80-ELLA_V2", get("B4"))
	assert.Equal(t, "EP107-250625.80-ELLA_V2", get("B5"))

	// 2 categorias + 3 templates + 5 instâncias = 10 linhas inseridas a
	// partir da linha 9; o rodapé que estava na 12 fica por baixo delas.
	assert.Equal(t, "1", get("A9"))
	assert.Equal(t, "Portas", get("B9"))
	assert.Equal(t, "1.1", get("A10"))
	assert.Equal(t, "Porta de Interior", get("B10"))
	assert.Equal(t, "1.1.1", get("A11"))
	assert.Equal(t, "1.1.2", get("A12"))
	assert.Equal(t, "1.2", get("A13"))
	assert.Equal(t, "1.2.1", get("A14"))
	assert.Equal(t, "2", get("A15"))
	assert.Equal(t, "Armários", get("B15"))
	assert.Equal(t, "2.1", get("A16"))
	assert.Equal(t, "2.1.1", get("A17"))
	assert.Equal(t, "2.1.2", get("A18"))

	// As linhas modelo foram removidas: a linha 19 já é das cláusulas
	assert.NotEqual(t, "Rodapé", get("A19"))
}

func TestExportarOrcamentoExcelEstilos(t *testing.T) {
	dir := t.TempDir()
	criarModeloTeste(t, dir, "modelo.xlsx")
	criarClausulasTeste(t, dir)

	orc, visao := visaoTeste()
	buf, err := ExportarOrcamentoExcel(dir, orc, visao)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	estiloDe := func(cell string) *excelize.Style {
		id, err := f.GetCellStyle(sheet, cell)
		require.NoError(t, err)
		st, err := f.GetStyle(id)
		require.NoError(t, err)
		return st
	}

	// Linhas de categoria herdam o negrito da linha modelo 9
	require.NotNil(t, estiloDe("A9").Font)
	assert.True(t, estiloDe("A9").Font.Bold)
	require.NotNil(t, estiloDe("A15").Font)
	assert.True(t, estiloDe("A15").Font.Bold)

	// Linhas de template herdam o itálico da linha modelo 10
	require.NotNil(t, estiloDe("A10").Font)
	assert.True(t, estiloDe("A10").Font.Italic)

	// Linhas de instância herdam o formato numérico da linha modelo 11
	assert.Equal(t, 4, estiloDe("E11").NumFmt)
}

// Modelo com a linha de instância sem estilo nenhum, para exercer o formato
// numérico de recurso das células modelo não estilizadas.
func criarModeloSemEstiloInstancia(t *testing.T, dir, nome string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "ORÇAMENTO"))

	negrito, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	italico, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	require.NoError(t, err)

	require.NoError(t, f.SetCellStyle(sheet, "A9", "G9", negrito))
	require.NoError(t, f.SetCellStyle(sheet, "A10", "G10", italico))

	require.NoError(t, f.SetCellValue(sheet, "A12", "Rodapé"))

	require.NoError(t, f.SaveAs(filepath.Join(dir, nome)))
	require.NoError(t, f.Close())
}

func TestExportarOrcamentoExcelEstiloEmFalta(t *testing.T) {
	dir := t.TempDir()
	criarModeloSemEstiloInstancia(t, dir, "modelo.xlsx")
	criarClausulasTeste(t, dir)

	orc, visao := visaoTeste()
	buf, err := ExportarOrcamentoExcel(dir, orc, visao)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	// A coluna de preço da linha de instância cai no formato numérico padrão
	id, err := f.GetCellStyle(sheet, "E11")
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	assert.Equal(t, 4, st.NumFmt)
}

func TestExportarOrcamentoExcelClausulas(t *testing.T) {
	dir := t.TempDir()
	criarModeloTeste(t, dir, "modelo.xlsx")
	criarClausulasTeste(t, dir)

	orc, visao := visaoTeste()
	buf, err := ExportarOrcamentoExcel(dir, orc, visao)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	// 10 linhas inseridas: cláusulas começam na linha 19
	v, err := f.GetCellValue(sheet, "A19")
	require.NoError(t, err)
	assert.Equal(t, "Cláusulas Gerais", v)

	// Região unida A1:C1 das cláusulas deslocada 18 linhas para baixo
	unidas, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	encontrada := false
	for _, u := range unidas {
		if u.GetStartAxis() == "A19" && u.GetEndAxis() == "C19" {
			encontrada = true
		}
	}
	assert.True(t, encontrada, "região unida das cláusulas não foi deslocada")

	// Total geral na coluna G da primeira linha das cláusulas
	total, err := f.GetCellValue(sheet, "G19")
	require.NoError(t, err)
	assert.Equal(t, "2520.5", total)
}

func TestExportarOrcamentoExcelModeloEmFalta(t *testing.T) {
	orc, visao := visaoTeste()
	_, err := ExportarOrcamentoExcel(t.TempDir(), orc, visao)
	require.ErrorIs(t, err, ErrModeloNaoEncontrado)
}

func TestExportarFichaProducaoExcel(t *testing.T) {
	dir := t.TempDir()
	criarModeloTeste(t, dir, "modelo_ficha_producao.xlsx")

	orc, visao := visaoTeste()
	buf, err := ExportarFichaProducaoExcel(dir, orc, visao)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	v, err := f.GetCellValue(sheet, "A9")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// Sem valores monetários na ficha de produção
	preco, err := f.GetCellValue(sheet, "E11")
	require.NoError(t, err)
	assert.Empty(t, preco)
}

func TestExportarFichaProducaoExcelComponentes(t *testing.T) {
	dir := t.TempDir()
	criarModeloTeste(t, dir, "modelo_ficha_producao.xlsx")

	porta1 := itemTeste(1, 1, 10, "Portas", "Porta de Interior", 2, "120.00")
	porta1 = comComponente(porta1, "Dobradiça 35mm", "un", "2", "HTD-H1000, Cor: Branco")
	porta1 = comComponente(porta1, "Puxador Inox", "un", "1", "")
	porta2 := itemTeste(2, 1, 10, "Portas", "Porta de Interior", 1, "150.00")
	porta2 = comComponente(porta2, "Dobradiça 35mm", "un", "2", "HTD-H1000, Cor: Branco")
	fogo := itemTeste(3, 1, 11, "Portas", "Porta Corta-Fogo", 1, "480.50")

	orc := &models.Orcamento{CodigoLegado: "EP107-250625.80-ELLA_V2", NomeCliente: "Cliente 107"}
	visao := Agrupar([]models.ItemOrcamento{porta1, porta2, fogo})

	buf, err := ExportarFichaProducaoExcel(dir, orc, visao)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	// Linha 10 é o template das portas de interior: lista os materiais
	// agregados sobre as 3 portas (2 + 1)
	bloco, err := f.GetCellValue(sheet, "B10")
	require.NoError(t, err)
	assert.Equal(t, "Componentes:\n- Dobradiça 35mm: 6.00 un - HTD-H1000, Cor: Branco\n- Puxador Inox: 2.00 un", bloco)

	// A célula do bloco quebra linha para não estourar a coluna
	id, err := f.GetCellStyle(sheet, "B10")
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, st.Alignment)
	assert.True(t, st.Alignment.WrapText)

	// Template sem componentes cadastrados mantém o nome
	nome, err := f.GetCellValue(sheet, "B13")
	require.NoError(t, err)
	assert.Equal(t, "Porta Corta-Fogo", nome)
}
