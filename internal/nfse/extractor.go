// Package nfse turns sanitized NFSe text into flat spreadsheet rows.
package nfse

import (
	"strings"

	"nfseconv/internal/domain"
	"nfseconv/internal/narrative"
	"nfseconv/internal/sanitizer"
)

// Extractor reads the invoices of one NFSe layout. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	schema Schema
}

// Stats describes one extraction run.
type Stats = domain.ExtractStats

// New creates an Extractor reading documents laid out per schema.
func New(schema Schema) *Extractor {
	return &Extractor{schema: schema}
}

// Schema returns the layout the extractor reads.
func (x *Extractor) Schema() Schema {
	return x.schema
}

// Columns returns the fixed column set of every row the extractor produces.
func (x *Extractor) Columns(includeNarrative bool) []string {
	return Columns(includeNarrative)
}

// ExtractDocument sanitizes raw bytes and extracts their rows.
func (x *Extractor) ExtractDocument(raw []byte, includeNarrative bool) ([]domain.FieldRow, error) {
	return x.Extract(sanitizer.Sanitize(raw), includeNarrative)
}

// ExtractDocumentWithStats is ExtractDocument plus record counts.
func (x *Extractor) ExtractDocumentWithStats(raw []byte, includeNarrative bool) ([]domain.FieldRow, Stats, error) {
	return x.ExtractWithStats(sanitizer.Sanitize(raw), includeNarrative)
}

// Extract returns one row per CompNfse record of text, in document order.
// Records without InfNfse are skipped. A *ParseError is returned when text
// is not well-formed.
func (x *Extractor) Extract(text string, includeNarrative bool) ([]domain.FieldRow, error) {
	rows, _, err := x.ExtractWithStats(text, includeNarrative)
	return rows, err
}

// ExtractWithStats is Extract plus record counts.
func (x *Extractor) ExtractWithStats(text string, includeNarrative bool) ([]domain.FieldRow, Stats, error) {
	root, err := parseTree(text)
	if err != nil {
		return nil, Stats{}, newParseError(err)
	}

	var (
		stats   Stats
		columns = Columns(includeNarrative)
		rows    []domain.FieldRow
	)
	for _, rec := range newNode(root, x.schema.Namespace).FindAll("//CompNfse") {
		stats.Records++
		info := rec.Find("//InfNfse")
		if !info.Exists() {
			stats.Skipped++
			continue
		}
		rows = append(rows, domain.NewFieldRow(columns, recordValues(info, includeNarrative)))
	}
	return rows, stats, nil
}

func recordValues(info Node, includeNarrative bool) map[string]string {
	v := map[string]string{
		ColNumero:            info.Text("Numero"),
		ColCodigoVerificacao: info.Text("CodigoVerificacao"),
		ColDataEmissao:       info.Text("DataEmissao"),
		ColNfseBaseCalculo:   info.Text("ValoresNfse/BaseCalculo"),
		ColNfseAliquota:      info.Text("ValoresNfse/Aliquota"),
		ColNfseValorIss:      info.Text("ValoresNfse/ValorIss"),
	}

	decl := info.Find("//DeclaracaoPrestacaoServico/InfDeclaracaoPrestacaoServico")
	v[ColCompetencia] = decl.Text("Competencia")
	v[ColOptanteSimplesNacional] = decl.Text("OptanteSimplesNacional")

	serv := decl.Find("//Servico")
	valores := serv.Find("Valores")
	v[ColValorServicos] = valores.Text("ValorServicos")
	v[ColValorDeducoes] = valores.Text("ValorDeducoes")
	v[ColValorPis] = valores.Text("ValorPis")
	v[ColValorCofins] = valores.Text("ValorCofins")
	v[ColValorInss] = valores.Text("ValorInss")
	v[ColValorIr] = valores.Text("ValorIr")
	v[ColValorCsll] = valores.Text("ValorCsll")
	v[ColValorIss] = valores.Text("ValorIss")
	v[ColAliquota] = valores.Text("Aliquota")
	v[ColIssRetido] = serv.Text("IssRetido")
	v[ColCodigoTributacaoMunicipio] = serv.Text("CodigoTributacaoMunicipio")
	v[ColCodigoMunicipio] = serv.Text("CodigoMunicipio")
	v[ColExigibilidadeISS] = serv.Text("ExigibilidadeISS")
	v[ColMunicipioIncidencia] = serv.Text("MunicipioIncidencia")

	disc := serv.Find("Discriminacao").Raw()
	mined := narrative.Mine(disc)
	v[ColTipoServico] = mined.TipoServico
	v[ColPeriodo] = mined.Periodo
	v[ColCentroCusto] = mined.CentroCusto
	v[ColCNO] = mined.CNO
	v[ColBaseCalculoINSS] = mined.BaseCalculoINSS
	v[ColRetencaoINSS] = mined.RetencaoINSS
	v[ColPercentualINSS] = mined.PercentualINSS
	v[ColBaseCalculoISS] = mined.BaseCalculoISS
	v[ColRetencaoISS] = mined.RetencaoISS
	v[ColPercentualISS] = mined.PercentualISS
	if includeNarrative {
		v[ColDiscriminacao] = disc
	}

	prest := decl.Find("//Prestador")
	v[ColPrestadorCNPJ] = firstNonEmpty(prest.Text("CpfCnpj/Cnpj"), prest.Text("CpfCnpj/Cpf"))
	v[ColPrestadorIM] = prest.Text("InscricaoMunicipal")

	tom := decl.Find("//Tomador")
	v[ColTomadorCNPJ] = firstNonEmpty(
		tom.Text("IdentificacaoTomador/CpfCnpj/Cnpj"),
		tom.Text("IdentificacaoTomador/CpfCnpj/Cpf"),
	)
	v[ColTomadorRazaoSocial] = tom.Text("RazaoSocial")
	v[ColTomadorEndereco] = joinAddress(tom.Find("Endereco"))
	v[ColTomadorCEP] = tom.Text("Endereco/Cep")
	v[ColTomadorCodigoMunicipio] = tom.Text("Endereco/CodigoMunicipio")

	return v
}

// joinAddress joins the non-empty street, number, complement and
// neighborhood of an Endereco element with ", ".
func joinAddress(addr Node) string {
	var parts []string
	for _, p := range []string{"Endereco", "Numero", "Complemento", "Bairro"} {
		if s := addr.Text(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
