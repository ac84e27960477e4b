// Package narrative mines structured values out of the free-text service
// description (Discriminação) of an NFSe.
package narrative

// Result holds every value mined from one narrative. Values are the matched
// text, unparsed; a miss is "".
type Result struct {
	TipoServico     string
	Periodo         string
	CentroCusto     string
	CNO             string
	BaseCalculoINSS string
	RetencaoINSS    string
	PercentualINSS  string
	BaseCalculoISS  string
	RetencaoISS     string
	PercentualISS   string
}

// Mine extracts all known values from raw narrative text. It is a pure
// function of its input.
func Mine(raw string) Result {
	t := Prepare(raw)
	if len(t.Lines) == 0 {
		return Result{}
	}

	res := Result{
		TipoServico:     Apply(TipoServicoRules, t),
		Periodo:         Apply(PeriodoRules, t),
		CentroCusto:     Apply(CentroCustoRules, t),
		CNO:             Apply(CNORules, t),
		BaseCalculoINSS: Apply(BaseCalculoINSSRules, t),
		RetencaoINSS:    Apply(RetencaoINSSRules, t),
	}
	if ln, ok := FindLine(INSSWithholdingLineRules, t); ok {
		res.PercentualINSS = LastPercent(ln)
	}
	res.BaseCalculoISS, res.RetencaoISS, res.PercentualISS = mineISS(t)
	return res
}

// MineISS returns the ISS calculation base, withheld amount and withheld
// percentage of raw narrative text. Mine fills its ISS fields through the
// same rules.
func MineISS(raw string) (base, withheld, percent string) {
	return mineISS(Prepare(raw))
}

func mineISS(t Text) (base, withheld, percent string) {
	base = Apply(BaseCalculoISSRules, t)
	withheld, percent = MineISSWithholding(t)
	return base, withheld, percent
}

// MineISSWithholding reads the withheld ISS amount and percentage from the
// withholding line. When a line states several amounts the last one wins.
func MineISSWithholding(t Text) (amount, percent string) {
	ln, ok := FindLine(ISSWithholdingLineRules, t)
	if !ok {
		return "", ""
	}
	return LastAmount(ln), LastPercent(ln)
}
