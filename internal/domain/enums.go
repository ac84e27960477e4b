package domain

// OutputMode selects how converted documents are packaged.
type OutputMode string

const (
	// OutputSingle converts exactly one document into one spreadsheet.
	OutputSingle OutputMode = "single"
	// OutputCombined merges the rows of every document into one spreadsheet.
	OutputCombined OutputMode = "combined"
	// OutputZip produces one spreadsheet per document inside a zip archive.
	OutputZip OutputMode = "zip"
)

// IsValid reports whether m is a known output mode.
func (m OutputMode) IsValid() bool {
	switch m {
	case OutputSingle, OutputCombined, OutputZip:
		return true
	}
	return false
}

// OutputFormat selects the tabular file format.
type OutputFormat string

const (
	FormatXLSX OutputFormat = "xlsx"
	FormatCSV  OutputFormat = "csv"
)

// IsValid reports whether f is a known output format.
func (f OutputFormat) IsValid() bool {
	return f == FormatXLSX || f == FormatCSV
}

// Content types of the generated files.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeZip  = "application/zip"
)

// AllowedDocumentExtensions lists the extensions (without dot) accepted as invoice documents.
var AllowedDocumentExtensions = map[string]bool{
	"txt": true,
	"xml": true,
}

// ArchiveExtension is the extension accepted for batch archives.
const ArchiveExtension = "zip"
