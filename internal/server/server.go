// Package server exposes the upload UI and job API over HTTP. One POST
// creates a job that runs the pipeline in the background; websocket
// subscribers see progress, and the finished ZIP is served for download
// (with a QR code for pulling it onto another device).
package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/config"
	"github.com/ivlev/comic2premiere/internal/gemini"
	"github.com/ivlev/comic2premiere/internal/pipeline"
	"github.com/ivlev/comic2premiere/internal/source"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	jobs   *jobStore
	hub    *hub
	client *gemini.Client
}

// New builds the server. client may be nil; jobs then skip straight to
// the even-split fallback and panels are never bubble-cropped.
func New(cfg *config.Config, client *gemini.Client, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		jobs:   newJobStore(),
		hub:    newHub(logger),
		client: client,
	}
}

// Router wires the gin routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.POST("/api/jobs", s.handleCreateJob)
	r.GET("/api/jobs/:id", s.handleJobStatus)
	r.GET("/download/:id", s.handleDownload)
	r.GET("/download/:id/qr", s.handleDownloadQR)
	r.GET("/ws/:id", s.handleWebsocket)

	return r
}

func (s *Server) Run() error {
	s.logger.Info("server listening", zap.String("addr", s.cfg.ListenAddr))
	return s.Router().Run(s.cfg.ListenAddr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

func (s *Server) handleCreateJob(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	script := c.PostForm("script")
	removeText := c.PostForm("remove_text") == "on" || c.PostForm("remove_text") == "true"

	audioFiles := form.File["audio"]
	if len(audioFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "voice-over audio file is required"})
		return
	}

	panels := form.File["panels"]
	pdfs := form.File["comic_pdf"]
	if len(panels) == 0 && len(pdfs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload panel images or a comic PDF"})
		return
	}

	workDir, err := os.MkdirTemp("", "comic2premiere_")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not allocate work directory"})
		return
	}

	job := s.jobs.create(workDir)

	audioPath, err := saveUpload(c, audioFiles[0], workDir, "audio")
	if err != nil {
		s.failEarly(c, job, fmt.Errorf("saving audio: %w", err))
		return
	}

	var panelSrc source.PanelSource
	if len(pdfs) > 0 {
		pdfPath, err := saveUpload(c, pdfs[0], workDir, "comic")
		if err != nil {
			s.failEarly(c, job, fmt.Errorf("saving PDF: %w", err))
			return
		}
		panelSrc, err = source.NewPDFSource(pdfPath, s.cfg.DPI)
		if err != nil {
			s.failEarly(c, job, fmt.Errorf("opening PDF: %w", err))
			return
		}
	} else {
		paths := make([]string, 0, len(panels))
		for i, fh := range panels {
			p, err := saveUpload(c, fh, workDir, fmt.Sprintf("upload_%03d", i+1))
			if err != nil {
				s.failEarly(c, job, fmt.Errorf("saving panel %d: %w", i+1, err))
				return
			}
			paths = append(paths, p)
		}
		panelSrc, err = source.NewImageListSource(paths)
		if err != nil {
			s.failEarly(c, job, err)
			return
		}
	}

	go s.process(job, panelSrc, audioPath, sanitizeName(audioFiles[0].Filename), script, removeText)

	c.JSON(http.StatusAccepted, gin.H{"id": job.ID})
}

// process runs the pipeline for one job. It owns the job's work directory
// but deliberately keeps it around afterwards: the ZIP is served from it.
func (s *Server) process(job *Job, panelSrc source.PanelSource, audioPath, audioName, script string, removeText bool) {
	defer panelSrc.Close()

	logger := s.logger.With(zap.String("job", job.ID))

	project := &pipeline.Project{
		Config:    s.cfg,
		Source:    panelSrc,
		AudioPath: audioPath,
		AudioName: audioName,
		Logger:    logger,
		Progress: func(stage string, pct int) {
			job.setProgress(stage, pct)
			s.publish(job)
		},
	}

	if s.client != nil {
		project.Timing = []pipeline.TimingSource{&pipeline.GeminiSource{
			Client:    s.client,
			AudioPath: audioPath,
			Script:    script,
			Timeout:   s.cfg.GeminiTimeout,
			Logger:    logger,
		}}
		if removeText {
			project.Filter = gemini.BubbleFilter(s.client)
		}
	}

	zipPath, err := project.Run(context.Background(), job.workDir)
	if err != nil {
		logger.Error("job failed", zap.Error(err))
		job.fail(err)
		s.publish(job)
		return
	}

	job.complete(zipPath)
	s.publish(job)
}

func (s *Server) handleJobStatus(c *gin.Context) {
	job, ok := s.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	c.JSON(http.StatusOK, job.snapshot())
}

func (s *Server) handleDownload(c *gin.Context) {
	job, ok := s.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	job.mu.Lock()
	status, zipPath := job.Status, job.zipPath
	job.mu.Unlock()

	if status != StatusCompleted || zipPath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not finished"})
		return
	}
	c.FileAttachment(zipPath, "comic_to_premiere.zip")
}

func (s *Server) handleDownloadQR(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.jobs.get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/download/%s", base, id), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleWebsocket(c *gin.Context) {
	job, ok := s.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// Late subscribers get the current state immediately; the hub owns
	// all writes to the connection.
	snap := job.snapshot()
	s.hub.subscribe(job.ID, conn, ProgressEvent{
		JobID: snap.ID, Status: snap.Status, Stage: snap.Stage,
		Percent: snap.Percent, Error: snap.Error,
	})

	// Reader loop exists only to notice the client going away
	go func() {
		defer s.hub.unsubscribe(job.ID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) publish(job *Job) {
	snap := job.snapshot()
	s.hub.publish(ProgressEvent{
		JobID: snap.ID, Status: snap.Status, Stage: snap.Stage,
		Percent: snap.Percent, Error: snap.Error,
	})
}

func (s *Server) failEarly(c *gin.Context, job *Job, err error) {
	job.fail(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func saveUpload(c *gin.Context, fh *multipart.FileHeader, dir, prefix string) (string, error) {
	name := prefix + strings.ToLower(filepath.Ext(fh.Filename))
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// sanitizeName strips path components and characters that would upset the
// timeline document or the archive.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}
