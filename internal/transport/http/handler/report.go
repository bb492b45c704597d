package handler

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"health-diagnosis/internal/app"
	"health-diagnosis/internal/extract"
	"health-diagnosis/internal/model"
	"health-diagnosis/internal/transport/http/response"
	"health-diagnosis/internal/vision"
)

const pageTitle = "HEALTH DIAGNOSIS"

var (
	errMissingFile    = errors.New("please upload a report file")
	errUnsupportedExt = errors.New("unsupported file extension")
	errFileTooLarge   = errors.New("file exceeds the upload limit")
	errBadFileType    = errors.New("file_type must be image or pdf")
)

var allowedExtensions = map[model.FileKind][]string{
	model.KindImage: {".jpg", ".jpeg", ".png"},
	model.KindPDF:   {".pdf"},
}

type ReportRunner interface {
	Run(ctx context.Context, input app.ReportInput) (*app.ReportOutput, error)
}

type UploadLimits struct {
	MaxImageBytes int64
	MaxPDFBytes   int64
}

func (l UploadLimits) forKind(kind model.FileKind) int64 {
	if kind == model.KindPDF {
		return l.MaxPDFBytes
	}
	return l.MaxImageBytes
}

type ReportHandler struct {
	runner       ReportRunner
	limits       UploadLimits
	previewWidth int
	logger       *slog.Logger
}

type pageView struct {
	Title          string
	Location       string
	FileType       string
	Specialization string
	Error          string
	Result         *resultView
}

type resultView struct {
	PreviewURL       template.URL
	PDFUploaded      bool
	Notices          []model.Notice
	Analysis         string
	DoctorsRequested bool
	Doctors          []string
}

func NewReportHandler(runner ReportRunner, limits UploadLimits, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		runner:       runner,
		limits:       limits,
		previewWidth: 720,
		logger:       logger,
	}
}

func (h *ReportHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", pageView{Title: pageTitle, FileType: "Image"})
}

// RateLimited re-renders the page for a form submit the rate limiter refused.
func (h *ReportHandler) RateLimited(c *gin.Context) {
	c.HTML(http.StatusTooManyRequests, "index.tmpl", pageView{
		Title:    pageTitle,
		Location: strings.TrimSpace(c.PostForm("location")),
		FileType: "Image",
		Error:    "Too many analyze requests. Please wait a moment and try again.",
	})
}

func (h *ReportHandler) AnalyzeImage(c *gin.Context) {
	h.analyzePage(c, model.KindImage)
}

func (h *ReportHandler) AnalyzePDF(c *gin.Context) {
	h.analyzePage(c, model.KindPDF)
}

func (h *ReportHandler) analyzePage(c *gin.Context, kind model.FileKind) {
	view := pageView{
		Title:          pageTitle,
		Location:       strings.TrimSpace(c.PostForm("location")),
		FileType:       selectorLabel(kind),
		Specialization: c.PostForm("specialization"),
	}

	file, err := h.readUpload(c, kind)
	if err != nil {
		status, _ := statusFor(err)
		view.Error = err.Error()
		c.HTML(status, "index.tmpl", view)
		return
	}

	out, err := h.runner.Run(c.Request.Context(), app.ReportInput{
		RequestID:      c.GetString(response.RequestIDKey),
		File:           file,
		Location:       view.Location,
		Specialization: view.Specialization,
	})
	if err != nil {
		status, _ := statusFor(err)
		view.Error = userMessage(err)
		c.HTML(status, "index.tmpl", view)
		return
	}

	view.Result = h.resultView(out)
	c.HTML(http.StatusOK, "index.tmpl", view)
}

func (h *ReportHandler) AnalyzeAPI(c *gin.Context) {
	kind, ok := model.ParseFileKind(c.PostForm("file_type"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, errBadFileType.Error())
		return
	}

	file, err := h.readUpload(c, kind)
	if err != nil {
		status, code := statusFor(err)
		response.Error(c, status, code, err.Error())
		return
	}

	out, err := h.runner.Run(c.Request.Context(), app.ReportInput{
		RequestID:      c.GetString(response.RequestIDKey),
		File:           file,
		Location:       c.PostForm("location"),
		Specialization: c.PostForm("specialization"),
	})
	if err != nil {
		status, code := statusFor(err)
		response.Error(c, status, code, userMessage(err))
		return
	}

	response.OK(c, out)
}

func (h *ReportHandler) readUpload(c *gin.Context, kind model.FileKind) (model.UploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return model.UploadedFile{}, errMissingFile
	}
	if !hasAllowedExtension(header.Filename, kind) {
		return model.UploadedFile{}, fmt.Errorf("%w: %s files accept %s",
			errUnsupportedExt, kind, strings.Join(allowedExtensions[kind], ", "))
	}

	limit := h.limits.forKind(kind)
	if limit > 0 && header.Size > limit {
		return model.UploadedFile{}, fmt.Errorf("%w of %d bytes", errFileTooLarge, limit)
	}

	data, err := readAll(header, limit)
	if err != nil {
		return model.UploadedFile{}, err
	}
	return model.UploadedFile{Name: header.Filename, Kind: kind, Data: data}, nil
}

func readAll(header *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload failed: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", errFileTooLarge, limit)
	}
	return data, nil
}

func (h *ReportHandler) resultView(out *app.ReportOutput) *resultView {
	view := &resultView{
		PDFUploaded:      out.Content.Kind == model.KindPDF,
		Notices:          out.Notices,
		Analysis:         out.Analysis.Text,
		DoctorsRequested: out.DoctorsRequested,
		Doctors:          out.Doctors,
	}
	if out.Content.Kind == model.KindImage && out.Content.Image != nil {
		url, err := vision.PreviewDataURL(out.Content.Image, h.previewWidth)
		if err != nil {
			h.logger.Warn("render upload preview failed", "err", err)
		} else {
			view.PreviewURL = template.URL(url)
		}
	}
	return view
}

func hasAllowedExtension(name string, kind model.FileKind) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range allowedExtensions[kind] {
		if ext == allowed {
			return true
		}
	}
	return false
}

func selectorLabel(kind model.FileKind) string {
	if kind == model.KindPDF {
		return "PDF"
	}
	return "Image"
}

func statusFor(err error) (int, int) {
	switch {
	case errors.Is(err, errMissingFile), errors.Is(err, app.ErrEmptyUpload):
		return http.StatusBadRequest, response.CodeBadRequest
	case errors.Is(err, errUnsupportedExt), errors.Is(err, extract.ErrUnsupportedKind):
		return http.StatusBadRequest, response.CodeUnsupportedFile
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge, response.CodeFileTooLarge
	case errors.Is(err, extract.ErrMalformedInput):
		return http.StatusUnprocessableEntity, response.CodeMalformedReport
	default:
		return http.StatusInternalServerError, response.CodeInternalServer
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrEmptyUpload):
		return "The uploaded file is empty."
	case errors.Is(err, extract.ErrMalformedInput):
		return "The uploaded file could not be read. Please upload a valid report."
	case errors.Is(err, extract.ErrUnsupportedKind):
		return "This file type is not supported."
	default:
		return "Report analysis failed. Please try again later."
	}
}
