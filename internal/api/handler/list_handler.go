package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cuongbtq/email-verifier-be/internal/api/dto"
	"github.com/cuongbtq/email-verifier-be/internal/api/service"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/gin-gonic/gin"
)

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

// Upload handles POST /api/v1/lists/upload
func (h *ListHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+uploadOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondFail(c, http.StatusBadRequest, fmt.Sprintf("File exceeds %d bytes", h.maxUploadSize))
			return
		}
		respondFail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		respondFail(c, http.StatusBadRequest, fmt.Sprintf("File exceeds %d bytes", h.maxUploadSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, "Upload", err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		h.fail(c, "Upload", err, http.StatusBadRequest)
		return
	}

	list, err := h.lists.Upload(c.Request.Context(), userIDFrom(c), service.UploadInput{
		ListName: c.PostForm("listName"),
		Filename: filepath.Base(fileHeader.Filename),
		Content:  content,
	})
	if err != nil {
		h.fail(c, "Upload", err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "File uploaded successfully",
		Data:    dto.NewEmailListDTO(list),
	})
}

// VerifyBulk handles POST /api/v1/lists/verify-bulk
func (h *ListHandler) VerifyBulk(c *gin.Context) {
	var req dto.JobIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "jobId is required")
		return
	}

	list, err := h.lists.StartVerification(c.Request.Context(), userIDFrom(c), req.JobID)
	if err != nil {
		h.fail(c, "VerifyBulk", err, http.StatusBadRequest)
		return
	}

	respondOK(c, "Verification started", dto.NewEmailListDTO(list))
}

// Status handles GET /api/v1/lists/status?jobId=
func (h *ListHandler) Status(c *gin.Context) {
	var q dto.StatusQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.JobID == "" {
		respondFail(c, http.StatusBadRequest, "jobId is required")
		return
	}

	list, err := h.lists.Status(c.Request.Context(), userIDFrom(c), q.JobID)
	if err != nil {
		h.fail(c, "Status", err, http.StatusNotFound)
		return
	}

	respondOK(c, "Status fetched", dto.NewEmailListDTO(list))
}

// BulkStatus handles GET /api/v1/lists/bulk-status
func (h *ListHandler) BulkStatus(c *gin.Context) {
	results, err := h.lists.BulkStatus(c.Request.Context(), userIDFrom(c))
	if err != nil {
		h.fail(c, "BulkStatus", err, http.StatusBadRequest)
		return
	}

	entries := make([]dto.BulkStatusEntry, len(results))
	for i, r := range results {
		entries[i] = dto.BulkStatusEntry{JobID: r.JobID}
		if r.Err != nil {
			_, entries[i].Error = errorStatus(r.Err, http.StatusBadRequest)
			continue
		}
		d := dto.NewEmailListDTO(r.List)
		entries[i].Data = &d
	}

	respondOK(c, "Statuses fetched", entries)
}

// VerifySingle handles POST /api/v1/lists/verify-single
func (h *ListHandler) VerifySingle(c *gin.Context) {
	var req dto.SingleVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	verified, err := h.single.Verify(c.Request.Context(), userIDFrom(c), req.Email)
	if err != nil {
		h.fail(c, "VerifySingle", err, http.StatusBadRequest)
		return
	}
	if verified == nil || verified.Result == nil {
		respondOK(c, "No verification result returned", nil)
		return
	}

	resp := dto.SingleVerifyResponse{Result: verified.Result.Raw}
	if len(resp.Result) == 0 {
		raw, err := json.Marshal(verified.Result)
		if err != nil {
			h.fail(c, "VerifySingle", err, http.StatusBadRequest)
			return
		}
		resp.Result = raw
	}
	if verified.Record != nil {
		v := dto.NewValidationDTO(verified.Record)
		resp.Validation = &v
	}

	respondOK(c, "Email verified", resp)
}

// Delete handles DELETE /api/v1/lists
func (h *ListHandler) Delete(c *gin.Context) {
	var req dto.JobIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "jobId is required")
		return
	}

	if err := h.lists.Delete(c.Request.Context(), userIDFrom(c), req.JobID); err != nil {
		h.fail(c, "Delete", err, http.StatusNotFound)
		return
	}

	respondOK(c, "List deleted", gin.H{"jobId": req.JobID})
}

// MoveToFolder handles POST /api/v1/lists/move-to-folder
func (h *ListHandler) MoveToFolder(c *gin.Context) {
	var req dto.MoveToFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "jobId is required")
		return
	}
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	res, err := h.lists.MoveToFolder(c.Request.Context(), userIDFrom(c), req.JobID, req.FolderID)
	if err != nil {
		h.fail(c, "MoveToFolder", err, http.StatusBadRequest)
		return
	}

	if res.Validation != nil {
		respondOK(c, "Moved to folder", dto.NewValidationDTO(res.Validation))
		return
	}
	respondOK(c, "Moved to folder", dto.NewEmailListDTO(res.List))
}

// List handles GET /api/v1/lists
func (h *ListHandler) List(c *gin.Context) {
	var req dto.ListListsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeListCursor(req.Cursor)
	if err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid cursor")
		return
	}

	page, err := h.lists.List(c.Request.Context(), storage.ListFilter{
		UserID:   userIDFrom(c),
		Status:   strings.ToUpper(req.Status),
		Search:   req.Search,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.fail(c, "List", err, http.StatusBadRequest)
		return
	}

	resp := dto.ListListsResponse{
		Lists: make([]dto.EmailListDTO, len(page.Entries)),
		Stats: dto.ListStatsDTO{
			StatusCounts:     make(map[string]int, len(page.Stats.StatusCounts)),
			TotalEmails:      page.Stats.TotalEmails,
			TotalCreditsUsed: page.Stats.TotalCreditsUsed,
		},
	}
	for i, e := range page.Entries {
		if e.Validation != nil {
			resp.Lists[i] = dto.NewSingleListDTO(e.Validation)
		} else {
			resp.Lists[i] = dto.NewEmailListDTO(e.List)
		}
	}
	for status, n := range page.Stats.StatusCounts {
		resp.Stats.StatusCounts[string(status)] = n
	}

	if page.HasMore && len(page.Entries) > 0 {
		last := page.Entries[len(page.Entries)-1]
		resp.NextCursor = EncodeListCursor(&storage.ListCursor{CreatedAt: last.CreatedAt(), JobID: last.Key()})
	}

	respondOK(c, "Lists fetched", resp)
}

// Get handles GET /api/v1/lists/:jobId
func (h *ListHandler) Get(c *gin.Context) {
	list, err := h.lists.Get(c.Request.Context(), userIDFrom(c), c.Param("jobId"))
	if err != nil {
		h.fail(c, "Get", err, http.StatusNotFound)
		return
	}

	respondOK(c, "List fetched", dto.NewEmailListDTO(list))
}

// Download handles GET /api/v1/lists/:jobId/download?type=
func (h *ListHandler) Download(c *gin.Context) {
	jobID := c.Param("jobId")
	filterType := strings.ToLower(c.Query("type"))

	report, list, err := h.lists.Download(c.Request.Context(), userIDFrom(c), jobID, filterType)
	if err != nil {
		h.fail(c, "Download", err, http.StatusBadRequest)
		return
	}
	defer report.Close()

	name := list.ListName
	if filterType != "" {
		name += "-" + filterType
	}

	h.logger.Info("Streaming report", slog.String("job_id", jobID), slog.String("type", filterType))

	c.DataFromReader(http.StatusOK, -1, "text/csv", report, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name+".csv"),
	})
}
