package nfse

// Schema identifies the XML vocabulary of a municipality's NFSe layout.
// Element lookups match both the namespace and the local name.
type Schema struct {
	Name      string
	Namespace string
}

// GoianiaSchema is the NFSe layout published by the city of Goiânia.
var GoianiaSchema = Schema{
	Name:      "goiania",
	Namespace: "http://nfse.goiania.go.gov.br/xsd/nfse_gyn_v02.xsd",
}

// SchemaFor returns GoianiaSchema with namespace overridden when ns is set.
func SchemaFor(ns string) Schema {
	if ns == "" || ns == GoianiaSchema.Namespace {
		return GoianiaSchema
	}
	return Schema{Name: "custom", Namespace: ns}
}
