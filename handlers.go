package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"umahelper/models"
	"umahelper/pkg/artifacts"
	"umahelper/pkg/capture"
	"umahelper/pkg/events"
	"umahelper/pkg/lookup"
	"umahelper/pkg/ocr"

	"github.com/disintegration/imaging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxUploadSize = 10 * 1024 * 1024

var scanner *lookup.Service

func newRouter() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	setupRoutes(r)
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	return config
}

func setupRoutes(r *gin.Engine) {
	r.GET("/health", healthHandler)
	r.POST("/register", requireDB(), registerHandler)
	r.POST("/login", requireDB(), loginHandler)
	r.POST("/match", matchHandler)
	r.POST("/capture", captureHandler)
	r.POST("/recognize", recognizeHandler)
	r.GET("/events", listEventsHandler)
	r.GET("/events/lookup", lookupEventHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/events", requireCatalogEditor(), requireDB(), createEventHandler)
	authGroup.GET("/scans", requireDB(), listScansHandler)
	authGroup.GET("/scans/:id", requireDB(), getScanHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		username, role, err := parseToken(authHeader[7:])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func requireDB() gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoDB.Error()})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireCatalogEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.CanEditCatalog(c.GetString("role")) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "events": currentCatalog().Len(), "db": db != nil})
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": c.GetString("username"), "role": c.GetString("role")})
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password, models.RoleUser); err != nil {
		if errors.Is(err, errUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "registered"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := issueToken(user.Username, user.Role.Name, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

// matchHandler matches already recognized text against the catalog.
func matchHandler(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": req.Text, "matched_events": currentCatalog().Match(req.Text)})
}

func captureHandler(c *gin.Context) {
	var area capture.Area
	if err := c.ShouldBindJSON(&area); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := scanner.ScanArea(c.Request.Context(), area, currentCatalog())
	recordScan("capture", "", res, err)
	if err != nil {
		writeScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// recognizeHandler scans an uploaded screenshot (multipart field "file").
func recognizeHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image"})
		return
	}
	res, err := scanner.ScanImage(c.Request.Context(), img, currentCatalog())
	recordScan("upload", file.Filename, res, err)
	if err != nil {
		writeScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeScanError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, capture.ErrInvalidArea), errors.Is(err, ocr.ErrEmptyImage):
		status = http.StatusBadRequest
	case errors.Is(err, capture.ErrNoDisplay), errors.Is(err, lookup.ErrNoCapturer):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	log.Error().Err(err).Int("status", status).Msg("scan failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

// recordScan stores the outcome of a scan when a database is configured.
func recordScan(source, fileName string, res lookup.Result, scanErr error) {
	if db == nil {
		return
	}
	s := models.Scan{
		ScanID:     res.ID,
		Source:     source,
		FileName:   fileName,
		Text:       res.Text,
		Confidence: res.Confidence,
		Inverted:   res.Inverted,
		MatchCount: len(res.Matches),
	}
	if s.ScanID == "" {
		s.ScanID = artifacts.NewID()
	}
	if len(res.Matches) > 0 {
		top := res.Matches[0]
		s.TopEvent = top.Event.Name
		s.TopKind = string(top.Kind)
		s.TopConfidence = top.Confidence
	}
	if scanErr != nil {
		s.Fail(scanErr)
	}
	if err := db.Create(&s).Error; err != nil {
		log.Warn().Err(err).Msg("failed to record scan")
	}
}

type eventView struct {
	ID uint `json:"id,omitempty"`
	events.Event
	NameJP string `json:"name_jp,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

func viewOf(row models.Event) eventView {
	return eventView{ID: row.ID, Event: row.ToCatalog(), NameJP: row.NameJP, Notes: row.Notes}
}

// listEventsHandler returns stored events ordered by name, or the in-memory
// catalog when no database is configured.
func listEventsHandler(c *gin.Context) {
	if db == nil {
		evs := sortedByName(currentCatalog())
		out := make([]eventView, len(evs))
		for i, e := range evs {
			out[i] = eventView{Event: e}
		}
		c.JSON(http.StatusOK, out)
		return
	}
	rows, err := models.LoadEvents(db, "name")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]eventView, len(rows))
	for i, r := range rows {
		out[i] = viewOf(r)
	}
	c.JSON(http.StatusOK, out)
}

// lookupEventHandler returns the first event whose name contains ?text=,
// case-insensitively, or null.
func lookupEventHandler(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	if db == nil {
		if ev, ok := currentCatalog().Lookup(text); ok {
			c.JSON(http.StatusOK, eventView{Event: ev})
			return
		}
		c.JSON(http.StatusOK, nil)
		return
	}
	row, err := models.FindEvent(db, text)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, viewOf(*row))
}

func createEventHandler(c *gin.Context) {
	var req struct {
		Name          string          `json:"name" binding:"required"`
		NameJP        string          `json:"name_jp"`
		CharacterName string          `json:"character_name"`
		RelationType  string          `json:"relation_type"`
		Notes         string          `json:"notes"`
		Choices       []events.Choice `json:"choices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev := events.Event{
		Name:          strings.TrimSpace(req.Name),
		CharacterName: strings.TrimSpace(req.CharacterName),
		RelationType:  req.RelationType,
		Choices:       req.Choices,
	}
	if err := events.ValidateEvent(ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row := models.FromCatalog(ev, strings.TrimSpace(req.NameJP), req.Notes)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "event already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	if err := reloadCatalog(); err != nil {
		log.Error().Err(err).Msg("catalog reload after insert failed")
	}
	c.JSON(http.StatusOK, gin.H{"id": row.ID})
}

func listScansHandler(c *gin.Context) {
	var scans []models.Scan
	if err := db.Order("id desc").Limit(100).Find(&scans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, scans)
}

func getScanHandler(c *gin.Context) {
	var s models.Scan
	if err := db.Where("scan_id = ?", c.Param("id")).First(&s).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

