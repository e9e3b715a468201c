package http

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expenzo/expenzo-server/internal/application/service"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// maxReceiptBytes caps receipt uploads at 15 MB.
const maxReceiptBytes = 15 << 20

// CreateExpenseRequest is the POST /api/expenses body. Amount arrives as a
// string to avoid float rounding on the wire.
type CreateExpenseRequest struct {
	Amount           string                  `json:"amount" binding:"required"`
	Currency         string                  `json:"currency" binding:"required"`
	Category         string                  `json:"category" binding:"required"`
	Description      string                  `json:"description"`
	Date             string                  `json:"date" binding:"required"`
	ReceiptImagePath string                  `json:"receipt_image_path"`
	Extracted        *entity.ExtractedFields `json:"extracted_fields"`
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondBadRequest(c, "invalid amount")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondBadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), currentUser(c), service.CreateExpenseInput{
		Amount:           amount,
		Currency:         strings.ToUpper(req.Currency),
		Category:         req.Category,
		Description:      req.Description,
		Date:             date,
		ReceiptImagePath: req.ReceiptImagePath,
		Extracted:        req.Extracted,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, expense)
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	expenses, err := h.expenseService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, expenses)
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid expense id")
		return
	}

	expense, err := h.expenseService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, expense)
}

// DecideExpense handles POST /api/expenses/:id/approve
func (h *Handlers) DecideExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid expense id")
		return
	}

	var in service.DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.Decide(c.Request.Context(), currentUser(c), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, expense)
}

// ExtractReceipt handles POST /api/expenses/extract. The multipart "receipt"
// file is stored under the upload directory and run through the vision
// extractor; the extracted fields pre-fill the submission form client-side.
func (h *Handlers) ExtractReceipt(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxReceiptBytes)

	file, err := c.FormFile("receipt")
	if err != nil {
		respondBadRequest(c, "missing receipt file")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".pdf", ".jpg", ".jpeg", ".png":
	default:
		respondBadRequest(c, "unsupported receipt type, expected pdf/jpg/png")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.respondError(c, fmt.Errorf("prepare upload dir: %w", err))
		return
	}
	dst := filepath.Join(h.uploadDir, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.respondError(c, fmt.Errorf("store upload: %w", err))
		return
	}

	fields, err := h.expenseService.ExtractReceipt(c.Request.Context(), dst)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"receipt_image_path": dst, "extracted_fields": fields})
}
