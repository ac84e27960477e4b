package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nfseconv/internal/config"
	"nfseconv/internal/domain"
	"nfseconv/internal/port"
	"nfseconv/internal/service"
	"nfseconv/mocks"
)

func testS3Config() *config.S3Config {
	return &config.S3Config{Enabled: true, Region: "us-east-1", Bucket: "notas", PresignExpiry: 600}
}

func TestObjectService_ConvertObject_Inline(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	conv := new(mocks.MockConvertService)
	svc := service.NewObjectService(store, conv, testS3Config())

	out := &service.ConvertOutput{Filename: "NFSe_Completa_x.xlsx", Data: []byte("xlsx")}
	store.On("Download", mock.Anything, "notas", "in/nota.xml").Return([]byte("<x/>"), nil)
	conv.On("Convert", mock.Anything, []domain.DocumentInput{{Name: "nota.xml", Content: []byte("<x/>")}},
		service.ConvertOptions{Mode: domain.OutputSingle}).Return(out, nil)

	res, err := svc.ConvertObject(context.Background(), service.ObjectConvertInput{
		Key:     "in/nota.xml",
		Options: service.ConvertOptions{Mode: domain.OutputSingle},
	})
	require.NoError(t, err)
	assert.Same(t, out, res.Output)
	assert.Empty(t, res.URL)
	store.AssertExpectations(t)
	conv.AssertExpectations(t)
}

func TestObjectService_ConvertObject_ArchiveStored(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	conv := new(mocks.MockConvertService)
	svc := service.NewObjectService(store, conv, testS3Config())

	docs := []domain.DocumentInput{{Name: "a.xml"}, {Name: "b.xml"}}
	out := &service.ConvertOutput{Filename: "NFSe_Planilhas_x.zip", ContentType: domain.ContentTypeZip, Data: []byte("zip")}

	store.On("Download", mock.Anything, "outro", "lote.zip").Return([]byte("zipdata"), nil)
	conv.On("ExpandArchive", []byte("zipdata")).Return(docs, nil)
	conv.On("Convert", mock.Anything, docs, service.ConvertOptions{Mode: domain.OutputZip}).Return(out, nil)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "outro" && in.Key == "saida/NFSe_Planilhas_x.zip" && in.ContentType == domain.ContentTypeZip
	})).Return(&port.UploadOutput{Location: "s3://outro/saida/NFSe_Planilhas_x.zip"}, nil)
	store.On("GetPresignedURL", mock.Anything, "outro", "saida/NFSe_Planilhas_x.zip", int64(600)).
		Return("https://signed.example/x", nil)

	res, err := svc.ConvertObject(context.Background(), service.ObjectConvertInput{
		Bucket:       "outro",
		Key:          "lote.zip",
		Options:      service.ConvertOptions{Mode: domain.OutputSingle},
		OutputPrefix: "saida/",
	})
	require.NoError(t, err)
	assert.Equal(t, "saida/NFSe_Planilhas_x.zip", res.Key)
	assert.Equal(t, "https://signed.example/x", res.URL)
	store.AssertExpectations(t)
	conv.AssertExpectations(t)
}

func TestObjectService_ConvertObject_NotFound(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	svc := service.NewObjectService(store, new(mocks.MockConvertService), testS3Config())

	store.On("Download", mock.Anything, "notas", "x.txt").Return(nil, domain.ErrObjectNotFound)

	_, err := svc.ConvertObject(context.Background(), service.ObjectConvertInput{Key: "x.txt"})
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
}

func TestObjectService_ConvertObject_UnsupportedKey(t *testing.T) {
	svc := service.NewObjectService(new(mocks.MockObjectStorage), new(mocks.MockConvertService), testS3Config())

	_, err := svc.ConvertObject(context.Background(), service.ObjectConvertInput{Key: "nota.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
