package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_UTF8(t *testing.T) {
	assert.Equal(t, "Discriminação", Decode([]byte("Discriminação")))
}

func TestDecode_StripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<a/>")...)
	assert.Equal(t, "<a/>", Decode(raw))
}

func TestDecode_Latin1(t *testing.T) {
	raw := []byte("Presta\xe7\xe3o de servi\xe7os")
	assert.Equal(t, "Prestação de serviços", Decode(raw))
}

func TestDecode_Windows1252(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252 and C1 controls in Latin-1.
	raw := []byte("\x93Servi\xe7o\x94")
	assert.Equal(t, "“Serviço”", Decode(raw))
}

func TestDecode_DegradedDropsInvalid(t *testing.T) {
	// 0x81 is unassigned in Windows-1252 and a control in Latin-1.
	raw := []byte("Nota\x81 \xe9 v\xe1lida")
	out := Decode(raw)
	assert.Equal(t, "Nota é válida", out)
}

func TestDecode_MixedUTF8DropsInvalidBytes(t *testing.T) {
	raw := append([]byte("RETENÇÃO DE ISS R$100,00 5% "), 0xE9)
	assert.Equal(t, "RETENÇÃO DE ISS R$100,00 5% ", Decode(raw))

	raw = []byte("Servi\xe7o de limpeza \u2013 Discriminação")
	assert.Equal(t, "Servio de limpeza \u2013 Discriminação", Decode(raw))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "<root><a/><b/></root>", Wrap("<a/><b/>"))
}

func TestScrub(t *testing.T) {
	in := "a\x00b\x01c\td\ne\rf\x7fg\u0085h i\U0001F600j"
	assert.Equal(t, "abc\td\ne\rfgh ij", Scrub(in))
}

func TestSanitize_NeverFails(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0xff, 0xfe, 0x00, 0x00},
		[]byte("\x00\x01\x02<CompNfse>"),
		[]byte(strings.Repeat("\x81", 10)),
	}
	for _, in := range inputs {
		out := Sanitize(in)
		assert.True(t, strings.HasPrefix(out, "<root>"))
		assert.True(t, strings.HasSuffix(out, "</root>"))
		for _, r := range out {
			assert.True(t, allowed(r), "rune %U should have been scrubbed", r)
		}
	}
}

func TestSanitize_Deterministic(t *testing.T) {
	raw := []byte("<CompNfse>Presta\xe7\xe3o</CompNfse>")
	assert.Equal(t, Sanitize(raw), Sanitize(raw))
	assert.Equal(t, "<root><CompNfse>Prestação</CompNfse></root>", Sanitize(raw))
}
