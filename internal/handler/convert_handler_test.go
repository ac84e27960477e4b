package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nfseconv/internal/config"
	"nfseconv/internal/domain"
	"nfseconv/internal/handler"
	"nfseconv/internal/nfse"
	"nfseconv/internal/service"
	"nfseconv/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.ConvertConfig {
	return &config.ConvertConfig{IncludeNarrative: true, MaxUploadMB: 1, Concurrency: 2, Namespace: nfse.GoianiaSchema.Namespace}
}

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, target string, files ...upload) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, target, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *handler.APIError {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func sampleOutput() *service.ConvertOutput {
	return &service.ConvertOutput{
		Filename:    "NFSe_Completa_2024-03-15_143005.xlsx",
		ContentType: domain.ContentTypeXLSX,
		Data:        []byte("xlsx-bytes"),
		Documents:   1,
		Rows:        2,
	}
}

func TestConvertHandler_Upload_Success(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	docs := []domain.DocumentInput{{Name: "nota.xml", Content: []byte("<CompNfse/>")}}
	svc.On("Convert", mock.Anything, docs, service.ConvertOptions{
		Mode: domain.OutputSingle, Format: domain.FormatXLSX, IncludeNarrative: false,
	}).Return(sampleOutput(), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload?include_raw_disc=false", upload{"file", "nota.xml", "<CompNfse/>"})

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=NFSe_Completa_2024-03-15_143005.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "0", w.Header().Get(handler.FailedDocumentsHeader))
	assert.Equal(t, domain.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, "xlsx-bytes", w.Body.String())
	svc.AssertExpectations(t)
}

func TestConvertHandler_Upload_NoFile(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload")

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeError(t, w).Code)
}

func TestConvertHandler_Upload_UnsupportedType(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload", upload{"file", "nota.pdf", "%PDF"})

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decodeError(t, w).Code)
}

func TestConvertHandler_Upload_InvalidFormat(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload?format=pdf", upload{"file", "nota.xml", "<x/>"})

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OPTIONS", decodeError(t, w).Code)
}

func TestConvertHandler_Upload_ParseError(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	_, parseErr := nfse.New(nfse.GoianiaSchema).ExtractDocument([]byte("<a>"), false)
	require.Error(t, parseErr)
	svc.On("Convert", mock.Anything, mock.Anything, mock.Anything).Return(nil, parseErr)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload", upload{"file", "nota.xml", "<a>"})

	h.Upload(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PARSE_ERROR", decodeError(t, w).Code)
}

func TestConvertHandler_Upload_TooLarge(t *testing.T) {
	cfg := testConfig()
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, cfg)

	big := bytes.Repeat([]byte("x"), int(cfg.MaxUploadBytes())+1)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload", upload{"file", "nota.xml", string(big)})

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeError(t, w).Code)
}

func TestConvertHandler_UploadMulti_Combined(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	out := sampleOutput()
	out.Failures = []domain.DocumentFailure{{Name: "b.xml", Reason: "malformed"}}
	docs := []domain.DocumentInput{
		{Name: "a.xml", Content: []byte("A")},
		{Name: "b.txt", Content: []byte("B")},
	}
	svc.On("Convert", mock.Anything, docs, service.ConvertOptions{
		Mode: domain.OutputCombined, Format: domain.FormatXLSX, IncludeNarrative: true,
	}).Return(out, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload-multi", upload{"files", "a.xml", "A"}, upload{"files", "b.txt", "B"})

	h.UploadMulti(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(handler.FailedDocumentsHeader))
	svc.AssertExpectations(t)
}

func TestConvertHandler_UploadMulti_ExpandsArchives(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	expanded := []domain.DocumentInput{{Name: "in/z1.xml", Content: []byte("Z1")}}
	svc.On("ExpandArchive", []byte("ZIP")).Return(expanded, nil)
	svc.On("Convert", mock.Anything, []domain.DocumentInput{
		{Name: "a.xml", Content: []byte("A")},
		{Name: "in/z1.xml", Content: []byte("Z1")},
	}, service.ConvertOptions{Mode: domain.OutputZip, Format: domain.FormatCSV, IncludeNarrative: true}).Return(sampleOutput(), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload-multi?out=zip&format=csv", upload{"files", "a.xml", "A"}, upload{"files", "lote.zip", "ZIP"})

	h.UploadMulti(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestConvertHandler_UploadMulti_RejectsSingle(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload-multi?out=single", upload{"files", "a.xml", "A"})

	h.UploadMulti(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OPTIONS", decodeError(t, w).Code)
}

func TestConvertHandler_UploadZip_Success(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	docs := []domain.DocumentInput{{Name: "a.xml", Content: []byte("A")}}
	out := &service.ConvertOutput{Filename: "NFSe_Planilhas_x.zip", ContentType: domain.ContentTypeZip, Data: []byte("PK")}
	svc.On("ExpandArchive", []byte("ZIP")).Return(docs, nil)
	svc.On("Convert", mock.Anything, docs, service.ConvertOptions{
		Mode: domain.OutputZip, Format: domain.FormatXLSX, IncludeNarrative: true,
	}).Return(out, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload-zip", upload{"file", "lote.zip", "ZIP"})

	h.UploadZip(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ContentTypeZip, w.Header().Get("Content-Type"))
	svc.AssertExpectations(t)
}

func TestConvertHandler_UploadZip_InvalidArchive(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	svc.On("ExpandArchive", []byte("nope")).Return(nil, domain.ErrInvalidArchive)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload-zip", upload{"file", "lote.zip", "nope"})

	h.UploadZip(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARCHIVE", decodeError(t, w).Code)
}

func TestConvertHandler_UploadZip_NotAZip(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/upload-zip", upload{"file", "nota.xml", "<x/>"})

	h.UploadZip(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decodeError(t, w).Code)
}

func TestConvertHandler_Extract(t *testing.T) {
	svc := new(mocks.MockConvertService)
	h := handler.NewConvertHandler(svc, nil, testConfig())

	row := domain.NewFieldRow([]string{"Numero", "CNO"}, map[string]string{"Numero": "1"})
	svc.On("Extract", mock.Anything, mock.Anything, false).Return([]domain.DocumentResult{
		{Name: "a.xml", Rows: []domain.FieldRow{row}},
		{Name: "b.xml", Err: domain.ErrMalformedDocument},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/extract?include_raw_disc=false", upload{"files", "a.xml", "A"}, upload{"files", "b.xml", "B"})

	h.Extract(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			File  string              `json:"file"`
			Rows  []map[string]string `json:"rows"`
			Error string              `json:"error"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "1", resp.Data[0].Rows[0]["Numero"])
	assert.Equal(t, "", resp.Data[0].Rows[0]["CNO"])
	assert.Empty(t, resp.Data[1].Rows)
	assert.NotEmpty(t, resp.Data[1].Error)
	assert.Contains(t, w.Body.String(), `{"Numero":"1","CNO":""}`)
}

func TestConvertHandler_ConvertObject_Disabled(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), nil, testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/convert-object", bytes.NewBufferString(`{"key":"a.xml"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ConvertObject(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SOURCE_DISABLED", decodeError(t, w).Code)
}

func TestConvertHandler_ConvertObject_Stored(t *testing.T) {
	objSvc := new(mocks.MockObjectService)
	h := handler.NewConvertHandler(new(mocks.MockConvertService), objSvc, testConfig())

	out := &service.ConvertOutput{Filename: "NFSe_Planilhas_x.zip", Documents: 3, Rows: 7}
	objSvc.On("ConvertObject", mock.Anything, service.ObjectConvertInput{
		Key:          "lote.zip",
		Options:      service.ConvertOptions{Mode: domain.OutputZip, Format: domain.FormatXLSX, IncludeNarrative: false},
		OutputPrefix: "saida",
	}).Return(&service.ObjectConvertResult{Output: out, Key: "saida/NFSe_Planilhas_x.zip", URL: "https://signed"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/convert-object",
		bytes.NewBufferString(`{"key":"lote.zip","include_raw_disc":false,"output_prefix":"saida"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ConvertObject(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"https://signed"`)
	assert.Contains(t, w.Body.String(), `"failures":[]`)
	objSvc.AssertExpectations(t)
}

func TestConvertHandler_ConvertObject_NotFound(t *testing.T) {
	objSvc := new(mocks.MockObjectService)
	h := handler.NewConvertHandler(new(mocks.MockConvertService), objSvc, testConfig())

	objSvc.On("ConvertObject", mock.Anything, mock.Anything).Return(nil, domain.ErrObjectNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/convert-object", bytes.NewBufferString(`{"key":"x.xml"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ConvertObject(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "OBJECT_NOT_FOUND", decodeError(t, w).Code)
}

func TestConvertHandler_ConvertObject_MissingKey(t *testing.T) {
	h := handler.NewConvertHandler(new(mocks.MockConvertService), new(mocks.MockObjectService), testConfig())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/convert-object", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ConvertObject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
}

func TestHealthHandler_Liveness(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/health", http.NoBody)

	handler.NewHealthHandler().Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"v3"}`, w.Body.String())
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrInvalidArchive, http.StatusBadRequest, "INVALID_ARCHIVE"},
		{domain.ErrNoDocuments, http.StatusBadRequest, "NO_DOCUMENTS"},
		{domain.ErrMalformedDocument, http.StatusUnprocessableEntity, "PARSE_ERROR"},
		{domain.ErrObjectNotFound, http.StatusNotFound, "OBJECT_NOT_FOUND"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.code)
		assert.Equal(t, tt.code, code)
	}
}
