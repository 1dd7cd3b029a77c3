// Package server exposes the pipeline over HTTP. The routes are thin:
// validation and dispatch only, with all processing in the internal
// packages.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ibatulanandjp/procrai/internal/config"
	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/extract"
	"github.com/ibatulanandjp/procrai/internal/logger"
	"github.com/ibatulanandjp/procrai/internal/results"
	"github.com/ibatulanandjp/procrai/internal/workflow"
)

// Server wires the HTTP routes to the processing pipeline
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	extractor *extract.Extractor
	pipeline  *workflow.Pipeline
	store     *results.Manager
}

// New creates a Server around the given components
func New(cfg *config.Config, extractor *extract.Extractor, pipeline *workflow.Pipeline, store *results.Manager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		cfg:       cfg,
		extractor: extractor,
		pipeline:  pipeline,
		store:     store,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/upload", s.handleUpload)
	v1.POST("/documents/extract", s.handleExtract)
	v1.POST("/workflow", s.handleWorkflowStart)
	v1.GET("/workflow", s.handleWorkflowStatus)
	v1.GET("/documents", s.handleList)
	v1.GET("/download/:filename", s.handleDownload)
}

// Start runs the HTTP server until the context is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown failed", logger.Err(err))
		}
	}()

	logger.Info("server listening", logger.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// uploadResponse reports where an uploaded file was stored
type uploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}

	if fileHeader.Size > s.cfg.MaxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadSize))
	}

	name := filepath.Base(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !s.extensionAllowed(ext) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file extension %q", ext))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "upload storage unavailable")
	}

	dstPath := filepath.Join(s.cfg.UploadDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}

	logger.Info("file uploaded", logger.String("name", name), logger.Int64("size", size))
	return c.JSON(http.StatusOK, uploadResponse{Filename: name, Size: size})
}

// fileRequest names an uploaded file to process
type fileRequest struct {
	Filename string `json:"filename"`
}

// extractResponse is the element snapshot for one document
type extractResponse struct {
	Elements  []document.Element `json:"elements"`
	PageCount int                `json:"page_count"`
}

func (s *Server) handleExtract(c echo.Context) error {
	var req fileRequest
	if err := c.Bind(&req); err != nil || req.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename required")
	}

	path, err := s.uploadPath(req.Filename)
	if err != nil {
		return err
	}

	set, extractErr := s.extractor.Extract(c.Request().Context(), path)
	if extractErr != nil {
		if exErr, ok := extractErr.(*extract.ExtractError); ok && exErr.Code == extract.ErrCodeUnsupportedFormat {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, exErr.Error())
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, extractErr.Error())
	}

	return c.JSON(http.StatusOK, extractResponse{Elements: set.Elements, PageCount: set.PageCount})
}

// workflowResponse identifies a started workflow run
type workflowResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleWorkflowStart(c echo.Context) error {
	var req fileRequest
	if err := c.Bind(&req); err != nil || req.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename required")
	}

	path, err := s.uploadPath(req.Filename)
	if err != nil {
		return err
	}

	id := fmt.Sprintf("%s-%d", strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename)), time.Now().Unix())
	go func() {
		if _, err := s.pipeline.Run(context.Background(), id, path); err != nil {
			logger.Error("workflow run failed", err, logger.String("id", id))
		}
	}()

	return c.JSON(http.StatusAccepted, workflowResponse{ID: id})
}

func (s *Server) handleWorkflowStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.pipeline.Status())
}

func (s *Server) handleList(c echo.Context) error {
	infos, err := s.store.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "listing failed")
	}
	return c.JSON(http.StatusOK, infos)
}

func (s *Server) handleDownload(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))

	infos, err := s.store.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	for _, info := range infos {
		if info.OutputName != name {
			continue
		}
		path := s.store.OutputPath(info.ID, info.OutputName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.Attachment(path, name)
	}
	return echo.NewHTTPError(http.StatusNotFound, "no such output file")
}

func (s *Server) extensionAllowed(ext string) bool {
	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// uploadPath resolves a previously uploaded filename, rejecting path
// escapes and missing files.
func (s *Server) uploadPath(filename string) (string, error) {
	name := filepath.Base(filename)
	path := filepath.Join(s.cfg.UploadDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", echo.NewHTTPError(http.StatusNotFound, "file not uploaded")
	}
	return path, nil
}
