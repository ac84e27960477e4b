package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nfseconv/internal/archive"
	"nfseconv/internal/config"
	"nfseconv/internal/domain"
	"nfseconv/internal/service"
)

// FailedDocumentsHeader carries the number of documents left out of a download.
const FailedDocumentsHeader = "X-Failed-Documents"

// ConvertHandler handles NFSe upload and conversion endpoints.
type ConvertHandler struct {
	convertService service.ConvertService
	objectService  service.ObjectService
	cfg            *config.ConvertConfig
}

// NewConvertHandler creates a new ConvertHandler. objectService may be nil
// when the object storage source is disabled.
func NewConvertHandler(convertService service.ConvertService, objectService service.ObjectService, cfg *config.ConvertConfig) *ConvertHandler {
	return &ConvertHandler{convertService: convertService, objectService: objectService, cfg: cfg}
}

// Upload handles POST /upload
// @Summary Convert one NFSe document
// @Description Convert a TXT/XML NFSe export into a single spreadsheet
// @Tags convert
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param file formData file true "NFSe document (.txt or .xml)"
// @Param include_raw_disc query bool false "Include the full Discriminação column"
// @Param format query string false "xlsx or csv" Enums(xlsx, csv)
// @Success 200 {file} file "Spreadsheet"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Malformed document"
// @Router /upload [post]
func (h *ConvertHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	opts, ok := h.parseOptions(c, domain.OutputSingle)
	if !ok {
		return
	}
	if !archive.IsDocument(header.Filename) {
		HandleError(c, domain.ErrUnsupportedFileType)
		return
	}
	doc, err := h.readUpload(header)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.convertService.Convert(c.Request.Context(), []domain.DocumentInput{doc}, opts)
	if err != nil {
		HandleError(c, err)
		return
	}
	sendOutput(c, out)
}

// UploadMulti handles POST /upload-multi
// @Summary Convert several NFSe documents
// @Description Convert many documents into one combined spreadsheet or a zip with one spreadsheet per document
// @Tags convert
// @Accept multipart/form-data
// @Produce application/zip
// @Param files formData file true "NFSe documents (.txt, .xml or .zip)"
// @Param out query string false "combined or zip" Enums(combined, zip)
// @Param include_raw_disc query bool false "Include the full Discriminação column"
// @Param format query string false "xlsx or csv" Enums(xlsx, csv)
// @Success 200 {file} file "Spreadsheet or zip"
// @Failure 400 {object} ErrorResponseBody "Missing files or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /upload-multi [post]
func (h *ConvertHandler) UploadMulti(c *gin.Context) {
	headers := formFiles(c, "files")
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "files field is required")
		return
	}
	opts, ok := h.parseOptions(c, domain.OutputCombined)
	if !ok {
		return
	}
	if !h.requireBatchMode(c, opts.Mode) {
		return
	}
	docs, err := h.collectDocuments(headers)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.convertService.Convert(c.Request.Context(), docs, opts)
	if err != nil {
		HandleError(c, err)
		return
	}
	sendOutput(c, out)
}

// UploadZip handles POST /upload-zip
// @Summary Convert a zip of NFSe documents
// @Description Expand the .txt/.xml entries of a zip and convert them
// @Tags convert
// @Accept multipart/form-data
// @Produce application/zip
// @Param file formData file true "Zip archive"
// @Param out query string false "zip or combined" Enums(zip, combined)
// @Param include_raw_disc query bool false "Include the full Discriminação column"
// @Param format query string false "xlsx or csv" Enums(xlsx, csv)
// @Success 200 {file} file "Zip or spreadsheet"
// @Failure 400 {object} ErrorResponseBody "Missing file, invalid archive or no documents"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /upload-zip [post]
func (h *ConvertHandler) UploadZip(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	opts, ok := h.parseOptions(c, domain.OutputZip)
	if !ok {
		return
	}
	if !h.requireBatchMode(c, opts.Mode) {
		return
	}
	if !archive.IsArchive(header.Filename) {
		HandleError(c, domain.ErrUnsupportedFileType)
		return
	}
	upload, err := h.readUpload(header)
	if err != nil {
		HandleError(c, err)
		return
	}
	docs, err := h.convertService.ExpandArchive(upload.Content)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.convertService.Convert(c.Request.Context(), docs, opts)
	if err != nil {
		HandleError(c, err)
		return
	}
	sendOutput(c, out)
}

// Extract handles POST /extract
// @Summary Extract rows as JSON
// @Description Extract the rows of each uploaded document without building a spreadsheet
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "NFSe documents (.txt, .xml or .zip)"
// @Param include_raw_disc query bool false "Include the full Discriminação column"
// @Success 200 {object} Response{data=[]ExtractResult}
// @Failure 400 {object} ErrorResponseBody "Missing files or unsupported type"
// @Router /extract [post]
func (h *ConvertHandler) Extract(c *gin.Context) {
	headers := formFiles(c, "files")
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "files field is required")
		return
	}
	include, ok := h.includeNarrative(c, c.Query("include_raw_disc"))
	if !ok {
		return
	}
	docs, err := h.collectDocuments(headers)
	if err != nil {
		HandleError(c, err)
		return
	}

	results, err := h.convertService.Extract(c.Request.Context(), docs, include)
	if err != nil {
		HandleError(c, err)
		return
	}

	data := make([]ExtractResult, len(results))
	for i, res := range results {
		data[i] = ExtractResult{File: res.Name, Rows: res.Rows}
		if data[i].Rows == nil {
			data[i].Rows = []domain.FieldRow{}
		}
		if res.Err != nil {
			data[i].Error = res.Err.Error()
		}
	}
	RespondOK(c, data)
}

// ConvertObject handles POST /convert-object
// @Summary Convert an NFSe export stored in S3
// @Description Download a .txt/.xml/.zip object and convert it. With output_prefix the result is stored next to it and a presigned link is returned.
// @Tags convert
// @Accept json
// @Produce json
// @Param request body ConvertObjectRequest true "Object reference"
// @Success 200 {object} Response{data=StoredConversionResponse}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Object not found"
// @Router /convert-object [post]
func (h *ConvertHandler) ConvertObject(c *gin.Context) {
	if h.objectService == nil {
		HandleError(c, domain.ErrSourceDisabled)
		return
	}
	var req ConvertObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	mode := domain.OutputSingle
	if archive.IsArchive(req.Key) {
		mode = domain.OutputZip
	}
	opts, ok := h.buildOptions(c, req.Out, req.Format, mode)
	if !ok {
		return
	}
	if req.IncludeRawDisc != nil {
		opts.IncludeNarrative = *req.IncludeRawDisc
	}

	res, err := h.objectService.ConvertObject(c.Request.Context(), service.ObjectConvertInput{
		Bucket:       req.Bucket,
		Key:          req.Key,
		Options:      opts,
		OutputPrefix: req.OutputPrefix,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if res.URL == "" {
		sendOutput(c, res.Output)
		return
	}
	failures := res.Output.Failures
	if failures == nil {
		failures = []domain.DocumentFailure{}
	}
	RespondOK(c, StoredConversionResponse{
		Key:       res.Key,
		Location:  res.Location,
		URL:       res.URL,
		Documents: res.Output.Documents,
		Rows:      res.Output.Rows,
		Failures:  failures,
	})
}

// parseOptions reads the out, format and include_raw_disc query parameters.
// It writes an error response and reports false on invalid values.
func (h *ConvertHandler) parseOptions(c *gin.Context, defaultMode domain.OutputMode) (service.ConvertOptions, bool) {
	opts, ok := h.buildOptions(c, c.Query("out"), c.Query("format"), defaultMode)
	if !ok {
		return opts, false
	}
	opts.IncludeNarrative, ok = h.includeNarrative(c, c.Query("include_raw_disc"))
	return opts, ok
}

func (h *ConvertHandler) buildOptions(c *gin.Context, out, format string, defaultMode domain.OutputMode) (service.ConvertOptions, bool) {
	opts := service.ConvertOptions{
		Mode:             defaultMode,
		Format:           domain.FormatXLSX,
		IncludeNarrative: h.cfg.IncludeNarrative,
	}
	if out != "" {
		opts.Mode = domain.OutputMode(out)
	}
	if format != "" {
		opts.Format = domain.OutputFormat(format)
	}
	if !opts.Mode.IsValid() {
		RespondError(c, http.StatusBadRequest, "INVALID_OPTIONS", fmt.Sprintf("invalid out %q; allowed: single, combined, zip", out))
		return opts, false
	}
	if !opts.Format.IsValid() {
		RespondError(c, http.StatusBadRequest, "INVALID_OPTIONS", fmt.Sprintf("invalid format %q; allowed: xlsx, csv", format))
		return opts, false
	}
	return opts, true
}

func (h *ConvertHandler) includeNarrative(c *gin.Context, raw string) (bool, bool) {
	if raw == "" {
		return h.cfg.IncludeNarrative, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_OPTIONS", "include_raw_disc must be true or false")
		return false, false
	}
	return v, true
}

func (h *ConvertHandler) requireBatchMode(c *gin.Context, mode domain.OutputMode) bool {
	if mode == domain.OutputSingle {
		RespondError(c, http.StatusBadRequest, "INVALID_OPTIONS", "invalid out \"single\"; allowed: combined, zip")
		return false
	}
	return true
}

// collectDocuments reads uploaded documents in order, expanding zip archives in place.
func (h *ConvertHandler) collectDocuments(headers []*multipart.FileHeader) ([]domain.DocumentInput, error) {
	var docs []domain.DocumentInput
	for _, header := range headers {
		switch {
		case archive.IsDocument(header.Filename):
			doc, err := h.readUpload(header)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		case archive.IsArchive(header.Filename):
			upload, err := h.readUpload(header)
			if err != nil {
				return nil, err
			}
			expanded, err := h.convertService.ExpandArchive(upload.Content)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", header.Filename, err)
			}
			docs = append(docs, expanded...)
		default:
			return nil, fmt.Errorf("%s: %w", header.Filename, domain.ErrUnsupportedFileType)
		}
	}
	return docs, nil
}

func (h *ConvertHandler) readUpload(header *multipart.FileHeader) (domain.DocumentInput, error) {
	limit := h.cfg.MaxUploadBytes()
	if header.Size > limit {
		return domain.DocumentInput{}, domain.ErrFileTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return domain.DocumentInput{}, fmt.Errorf("opening upload %s: %w", header.Filename, err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return domain.DocumentInput{}, fmt.Errorf("reading upload %s: %w", header.Filename, err)
	}
	if int64(len(content)) > limit {
		return domain.DocumentInput{}, domain.ErrFileTooLarge
	}
	return domain.DocumentInput{Name: header.Filename, Content: content}, nil
}

func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

func sendOutput(c *gin.Context, out *service.ConvertOutput) {
	c.Header("Content-Disposition", "attachment; filename="+out.Filename)
	c.Header(FailedDocumentsHeader, strconv.Itoa(len(out.Failures)))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
