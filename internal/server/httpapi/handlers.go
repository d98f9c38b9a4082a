package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/server/models"
	"github.com/clipfeed/clipfeed/internal/server/services"
)

// VerificationService is the subset of the verification flow the API needs.
type VerificationService interface {
	Start(ctx context.Context, phone string) (string, error)
	Confirm(ctx context.Context, verificationID string, code string) (*services.TokenPair, string, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, string, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// VideoService is the subset of the video flow the API needs.
type VideoService interface {
	UploadBlob(ctx context.Context, key string, contentType string, data io.Reader) (string, error)
	Append(ctx context.Context, rec services.NewRecord) (*models.Video, error)
	Recent(ctx context.Context, limit int) ([]*models.Video, error)
}

// Handlers binds the API routes to services.
type Handlers struct {
	verification VerificationService
	videos       VideoService
}

func NewHandlers(verification VerificationService, videos VideoService) *Handlers {
	return &Handlers{verification: verification, videos: videos}
}

type startRequest struct {
	Phone string `json:"phone"`
}

type startResponse struct {
	VerificationID string `json:"verification_id"`
}

func (h *Handlers) StartVerification(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.verification.Start(c.Request.Context(), req.Phone)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, startResponse{VerificationID: id})
}

type confirmRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type confirmResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

func (h *Handlers) ConfirmVerification(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, userID, err := h.verification.Confirm(c.Request.Context(), req.VerificationID, req.Code)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       userID,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshSession rotates a refresh token into a fresh pair. An unknown or
// expired token reads as unauthorized, not as a missing resource.
func (h *Handlers) RefreshSession(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, userID, err := h.verification.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrRefreshTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       userID,
	})
}

// SignOut revokes the presented refresh token server-side.
func (h *Handlers) SignOut(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.verification.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadBlob streams the request body straight into blob storage.
func (h *Handlers) UploadBlob(c *gin.Context) {
	name := c.Param("name")
	contentType := c.GetHeader("Content-Type")

	url, err := h.videos.UploadBlob(c.Request.Context(), name, contentType, c.Request.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{URL: url})
}

type appendRequest struct {
	URL       string `json:"url"`
	UserID    string `json:"user_id"`
	Caption   string `json:"caption"`
	CreatedAt int64  `json:"created_at"`
}

type videoItem struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	UserID    string `json:"user_id"`
	Caption   string `json:"caption"`
	CreatedAt int64  `json:"created_at"`
}

func (h *Handlers) AppendVideo(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// An authenticated caller owns the record regardless of the body value.
	userID := req.UserID
	if id := authUserID(c); id != "" {
		userID = id
	}

	video, err := h.videos.Append(c.Request.Context(), services.NewRecord{
		URL:            req.URL,
		UserID:         userID,
		Caption:        req.Caption,
		CreatedAtEpoch: req.CreatedAt,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toVideoItem(video))
}

type listResponse struct {
	Videos []videoItem `json:"videos"`
}

func (h *Handlers) ListVideos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.videos.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := listResponse{Videos: make([]videoItem, 0, len(items))}
	for _, v := range items {
		resp.Videos = append(resp.Videos, toVideoItem(v))
	}
	c.JSON(http.StatusOK, resp)
}

func toVideoItem(v *models.Video) videoItem {
	return videoItem{
		ID:        v.ID,
		URL:       v.URL,
		UserID:    v.UserID,
		Caption:   v.Caption,
		CreatedAt: v.CreatedAt.Unix(),
	}
}

// abortWithError maps service errors to HTTP statuses. The message is passed
// through verbatim so clients can surface it.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrCodeInvalid),
		errors.Is(err, common.ErrCodeExpired):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrResendThrottled),
		errors.Is(err, common.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
