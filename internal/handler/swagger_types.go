package handler

import "nfseconv/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ConvertObjectRequest represents the convert-object request body.
type ConvertObjectRequest struct {
	Bucket         string `json:"bucket" example:"nfse-exports"`
	Key            string `json:"key" binding:"required" example:"2024/03/lote.zip"`
	Out            string `json:"out" example:"zip"`
	Format         string `json:"format" example:"xlsx"`
	IncludeRawDisc *bool  `json:"include_raw_disc" example:"true"`
	OutputPrefix   string `json:"output_prefix" example:"convertidos/2024-03"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"v3"`
}

// ExtractResult holds the rows extracted from one uploaded document.
type ExtractResult struct {
	File  string            `json:"file" example:"nota.xml"`
	Rows  []domain.FieldRow `json:"rows" swaggertype:"array,object"`
	Error string            `json:"error,omitempty" example:""`
}

// StoredConversionResponse describes a conversion result written back to object storage.
type StoredConversionResponse struct {
	Key       string                   `json:"key" example:"convertidos/2024-03/NFSe_Planilhas_2024-03-15_143005.zip"`
	Location  string                   `json:"location"`
	URL       string                   `json:"url"`
	Documents int                      `json:"documents" example:"12"`
	Rows      int                      `json:"rows" example:"40"`
	Failures  []domain.DocumentFailure `json:"failures"`
}

// --- Generic Response Wrappers ---

// Response is the generic success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody is the generic error envelope.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
