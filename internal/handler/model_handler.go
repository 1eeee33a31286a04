package handler

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Farid841/rara/internal/model"
	"github.com/Farid841/rara/internal/pkg/errcode"
	"github.com/Farid841/rara/internal/pkg/response"
	"github.com/Farid841/rara/internal/registry"
	"github.com/Farid841/rara/internal/service"
)

// ModelHandler serves assistant-model creation and listing. Creation takes
// a multipart form (name, instructions, one or more files) and runs the
// ingestion pipeline synchronously, returning the per-file outcomes.
type ModelHandler struct {
	registry       *registry.Registry
	ingest         *service.IngestService
	uploadMaxBytes int64
}

func NewModelHandler(reg *registry.Registry, ingest *service.IngestService, uploadMaxBytes int64) *ModelHandler {
	return &ModelHandler{registry: reg, ingest: ingest, uploadMaxBytes: uploadMaxBytes}
}

type createModelResponse struct {
	Model   *model.AssistantConfig `json:"model"`
	Reports []model.FileReport     `json:"reports"`
}

func (h *ModelHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "multipart form is required")
		return
	}
	name := strings.TrimSpace(c.PostForm("name"))
	instructions := strings.TrimSpace(c.PostForm("instructions"))
	if name == "" || instructions == "" {
		response.Error(c, errcode.ErrInvalid, "name and instructions are required")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		response.Error(c, errcode.ErrInvalid, "at least one document is required")
		return
	}

	files := make([]model.UploadFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		if header.Size > h.uploadMaxBytes {
			response.Error(c, errcode.ErrUploadTooLarge,
				"file "+header.Filename+" exceeds the "+formatUploadLimit(h.uploadMaxBytes)+" upload limit")
			return
		}
		data, err := readUpload(header)
		if err != nil {
			response.Error(c, errcode.ErrInvalidFile, "failed to read "+header.Filename)
			return
		}
		files = append(files, model.UploadFile{Name: header.Filename, Bytes: data})
	}

	cfg, err := h.registry.Create(c.Request.Context(), name, instructions)
	if err != nil {
		handleError(c, err)
		return
	}
	reports := h.ingest.Ingest(c.Request.Context(), cfg.ID, files, nil)
	response.Success(c, createModelResponse{Model: cfg, Reports: reports})
}

func (h *ModelHandler) List(c *gin.Context) {
	configs, err := h.registry.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"models": configs})
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
