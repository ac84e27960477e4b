package nfse

// Output column names. The narrative column is only present on request.
const (
	ColNumero                    = "Numero"
	ColCodigoVerificacao         = "CodigoVerificacao"
	ColDataEmissao               = "DataEmissao"
	ColCompetencia               = "Competencia"
	ColValorServicos             = "ValorServicos"
	ColValorDeducoes             = "ValorDeducoes"
	ColValorPis                  = "ValorPis"
	ColValorCofins               = "ValorCofins"
	ColValorInss                 = "ValorInss"
	ColValorIr                   = "ValorIr"
	ColValorCsll                 = "ValorCsll"
	ColValorIss                  = "ValorIss"
	ColAliquota                  = "Aliquota"
	ColIssRetido                 = "IssRetido"
	ColCodigoTributacaoMunicipio = "CodigoTributacaoMunicipio"
	ColTipoServico               = "Tipo de serviço"
	ColPeriodo                   = "Período"
	ColCentroCusto               = "Centro de custo"
	ColCNO                       = "CNO"
	ColBaseCalculoINSS           = "Base de cálculo do INSS"
	ColRetencaoINSS              = "Retenção de INSS"
	ColPercentualINSS            = "Retenção de INSS (%)"
	ColBaseCalculoISS            = "Base de cálculo de ISS"
	ColRetencaoISS               = "Retenção de ISS"
	ColPercentualISS             = "Retenção de ISS (%)"
	ColCodigoMunicipio           = "CodigoMunicipio"
	ColExigibilidadeISS          = "ExigibilidadeISS"
	ColMunicipioIncidencia       = "MunicipioIncidencia"
	ColPrestadorCNPJ             = "Prestador_CNPJ"
	ColPrestadorIM               = "Prestador_IM"
	ColTomadorCNPJ               = "Tomador_CNPJ"
	ColTomadorRazaoSocial        = "Tomador_RazaoSocial"
	ColTomadorEndereco           = "Tomador_Endereco"
	ColTomadorCEP                = "Tomador_CEP"
	ColTomadorCodigoMunicipio    = "Tomador_CodigoMunicipio"
	ColOptanteSimplesNacional    = "OptanteSimplesNacional"
	ColNfseBaseCalculo           = "ValoresNfse_BaseCalculo"
	ColNfseAliquota              = "ValoresNfse_Aliquota"
	ColNfseValorIss              = "ValoresNfse_ValorIss"
	ColDiscriminacao             = "Discriminação"
)

var baseColumns = []string{
	ColNumero, ColCodigoVerificacao, ColDataEmissao, ColCompetencia,
	ColValorServicos, ColValorDeducoes, ColValorPis, ColValorCofins, ColValorInss,
	ColValorIr, ColValorCsll, ColValorIss, ColAliquota, ColIssRetido, ColCodigoTributacaoMunicipio,
	ColTipoServico, ColPeriodo, ColCentroCusto, ColCNO,
	ColBaseCalculoINSS, ColRetencaoINSS, ColPercentualINSS,
	ColBaseCalculoISS, ColRetencaoISS, ColPercentualISS,
	ColCodigoMunicipio, ColExigibilidadeISS, ColMunicipioIncidencia,
	ColPrestadorCNPJ, ColPrestadorIM,
	ColTomadorCNPJ, ColTomadorRazaoSocial, ColTomadorEndereco, ColTomadorCEP, ColTomadorCodigoMunicipio,
	ColOptanteSimplesNacional,
	ColNfseBaseCalculo, ColNfseAliquota, ColNfseValorIss,
}

// Columns returns the ordered output columns.
func Columns(includeNarrative bool) []string {
	n := len(baseColumns)
	out := make([]string, n, n+1)
	copy(out, baseColumns)
	if includeNarrative {
		out = append(out, ColDiscriminacao)
	}
	return out
}
