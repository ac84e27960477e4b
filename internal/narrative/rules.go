package narrative

import (
	"regexp"
	"strings"
)

// amountPattern is a Brazilian currency amount such as "R$ 1.234,56".
const amountPattern = `R\$\s*[0-9.\s]*,\d{2}`

var (
	amountRe  = regexp.MustCompile(amountPattern)
	percentRe = regexp.MustCompile(`(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)
	percentWS = regexp.MustCompile(`\s*%$`)

	baseISSRe       = regexp.MustCompile(`(?im)BASE\s+D[EOA]\s*C[AÁ]LCULO\s+D[EOA]\s+ISS(?:QN)?.*?(` + amountPattern + `)`)
	retencaoISSRe   = regexp.MustCompile(`(?i)RETEN[ÇC][AÃ]O\s*D[EO]\s*ISS(?:QN)?`)
	issRetidoRe     = regexp.MustCompile(`(?i)\bISS(?:QN)?\b.*RETID`)
	baseINSSRe      = regexp.MustCompile(`(?im)BASE\s+D[EOA]\s*C[AÁ]LCULO\s+D[EOA]\s+INSS.*?(` + amountPattern + `)`)
	retencaoINSSRe  = regexp.MustCompile(`(?i)RETEN[ÇC][AÃ]O\s*D[EO]?\s*INSS`)
	retencaoINSSAmt = regexp.MustCompile(`(?im)RETEN[ÇC][AÃ]O\s*D[EO]?\s*INSS.*?(` + amountPattern + `)`)
	periodoRe       = regexp.MustCompile(`(?im)PER[IÍ]ODO[:\s]+(.+)$`)
	centroCustoRe   = regexp.MustCompile(`(?im)CENTRO\s+DE\s+CUSTO[:\s]+(.+)$`)
	cnoRe           = regexp.MustCompile(`(?im)\bCNO[:\s]*([^\s].+)$`)
)

// Rule extracts one value from a narrative. Find reports false on a miss.
type Rule struct {
	Name string
	Find func(t Text) (string, bool)
}

// LineRule selects a line of a narrative.
type LineRule struct {
	Name  string
	Match func(line string) bool
}

// Apply runs rules in order and returns the first hit.
func Apply(rules []Rule, t Text) string {
	for _, r := range rules {
		if v, ok := r.Find(t); ok {
			return v
		}
	}
	return ""
}

// FindLine returns the first line matched by the first rule that matches
// any line. A later rule is only consulted when every earlier rule missed
// on all lines.
func FindLine(rules []LineRule, t Text) (string, bool) {
	for _, r := range rules {
		for _, ln := range t.Lines {
			if r.Match(ln) {
				return ln, true
			}
		}
	}
	return "", false
}

// BaseCalculoISSRules find the ISS calculation base.
var BaseCalculoISSRules = []Rule{
	{Name: "base-calculo-iss", Find: firstGroup(baseISSRe)},
}

// ISSWithholdingLineRules locate the line stating the withheld ISS.
var ISSWithholdingLineRules = []LineRule{
	{Name: "retencao-de-iss", Match: retencaoISSRe.MatchString},
	{Name: "iss-retido", Match: issRetidoRe.MatchString},
}

// TipoServicoRules take the first line as the service type.
var TipoServicoRules = []Rule{
	{Name: "first-line", Find: func(t Text) (string, bool) {
		if len(t.Lines) == 0 {
			return "", false
		}
		return t.Lines[0], true
	}},
}

// PeriodoRules find the billing period.
var PeriodoRules = []Rule{
	{Name: "periodo", Find: firstGroup(periodoRe)},
}

// CentroCustoRules find the cost center.
var CentroCustoRules = []Rule{
	{Name: "centro-de-custo", Find: firstGroup(centroCustoRe)},
}

// CNORules find the CNO (construction work registration).
var CNORules = []Rule{
	{Name: "cno", Find: firstGroup(cnoRe)},
}

// BaseCalculoINSSRules find the INSS calculation base.
var BaseCalculoINSSRules = []Rule{
	{Name: "base-calculo-inss", Find: firstGroup(baseINSSRe)},
}

// RetencaoINSSRules find the withheld INSS amount.
var RetencaoINSSRules = []Rule{
	{Name: "retencao-de-inss", Find: firstGroup(retencaoINSSAmt)},
}

// INSSWithholdingLineRules locate the line stating the withheld INSS.
var INSSWithholdingLineRules = []LineRule{
	{Name: "retencao-de-inss", Match: retencaoINSSRe.MatchString},
}

func firstGroup(re *regexp.Regexp) func(Text) (string, bool) {
	return func(t Text) (string, bool) {
		m := re.FindStringSubmatch(t.Whole)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	}
}

// LastAmount returns the last currency amount on line, or "".
func LastAmount(line string) string {
	all := amountRe.FindAllString(line, -1)
	if len(all) == 0 {
		return ""
	}
	return strings.TrimSpace(all[len(all)-1])
}

// LastPercent returns the last percentage on line with blanks before the
// sign removed, or "".
func LastPercent(line string) string {
	all := percentRe.FindAllString(line, -1)
	if len(all) == 0 {
		return ""
	}
	return percentWS.ReplaceAllString(strings.TrimSpace(all[len(all)-1]), "%")
}
