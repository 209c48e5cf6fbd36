package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/uplink/internal/domain/entities"
	"github.com/zots0127/uplink/internal/domain/repository"
	"github.com/zots0127/uplink/internal/usecase"
)

// UploadHandler exposes token issuance and redemption over HTTP.
type UploadHandler struct {
	issue  *usecase.IssueUseCase
	redeem *usecase.RedeemUseCase
	ledger repository.LedgerRepository
	blobs  repository.BlobRepository
}

func NewUploadHandler(issue *usecase.IssueUseCase, redeem *usecase.RedeemUseCase,
	ledger repository.LedgerRepository, blobs repository.BlobRepository) *UploadHandler {
	return &UploadHandler{
		issue:  issue,
		redeem: redeem,
		ledger: ledger,
		blobs:  blobs,
	}
}

// RegisterRoutes registers all endpoints on the router.
func (h *UploadHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/generate-upload-link", h.GenerateUploadLink)
	router.POST("/upload/:token", h.Upload)
	router.GET("/health", h.GetHealth)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	})
}

type generateLinkRequest struct {
	MaxSizeBytes     int64  `json:"maxSizeBytes"`
	AllowedExtension string `json:"allowedExtension"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// GenerateUploadLink issues a single-use upload token for the posted policy.
func (h *UploadHandler) GenerateUploadLink(c *gin.Context) {
	var req generateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	issued, err := h.issue.Issue(c.Request.Context(), usecase.IssuePolicy{
		MaxSizeBytes:     req.MaxSizeBytes,
		AllowedExtension: req.AllowedExtension,
		TTLMinutes:       req.ExpiresInMinutes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"uploadUrl":        issued.UploadURL,
		"token":            issued.Token,
		"expiresAt":        issued.ExpiresAt.UTC().Format(time.RFC3339),
		"maxSizeBytes":     issued.MaxSizeBytes,
		"allowedExtension": issued.AllowedExtension,
	})
}

// Upload redeems a token with the multipart "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	token := c.Param("token")

	var upload *usecase.UploadFile
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		upload = &usecase.UploadFile{
			Name:   header.Filename,
			Size:   header.Size,
			Reader: file,
		}
	}

	stored, err := h.redeem.Redeem(c.Request.Context(), token, upload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"filename":     stored.Filename,
		"originalName": stored.OriginalName,
		"size":         stored.Size,
	})
}

// GetHealth reports service liveness plus ledger and blob store reachability.
func (h *UploadHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	checks := gin.H{"ledger": "up", "storage": "up"}
	if err := h.ledger.Ping(ctx); err != nil {
		checks["ledger"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := h.blobs.Ping(ctx); err != nil {
		checks["storage"] = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"status": checks, "time": time.Now().UTC().Format(time.RFC3339)})
}

// writeError maps the domain error taxonomy to HTTP status codes. Internal
// faults are logged with detail but answered with a generic message.
func (h *UploadHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, entities.ErrMissingPayload):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": entities.ErrMissingPayload.Error()})
	case errors.Is(err, entities.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Invalid or expired upload token"})
	case errors.Is(err, entities.ErrAlreadyConsumed):
		c.JSON(http.StatusGone, gin.H{"success": false, "error": "Upload token already used"})
	case errors.Is(err, entities.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, entities.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"success": false, "error": err.Error()})
	default:
		// ErrStoreFault lands here: the token is spent with no artifact,
		// which the log line has to make visible to operators.
		log.Printf("internal error on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
