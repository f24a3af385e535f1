package ledger

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medchain/medchain-api/internal/handler"
	"github.com/medchain/medchain-api/internal/service/ledger"
)

// Handler exposes the block explorer surface. The ledger is read-only
// over HTTP; transactions enter it only through the consent and record
// engines.
type Handler struct {
	service *ledger.Service
}

func NewHandler(service *ledger.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	blocks := r.Group("/ledger")
	{
		blocks.GET("/blocks", h.ListBlocks)
		blocks.GET("/blocks/latest", h.LatestBlock)
		blocks.GET("/pending", h.PendingTransactions)
	}
}

func (h *Handler) ListBlocks(c *gin.Context) {
	blocks, err := h.service.ListBlocks(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(blocks))
}

func (h *Handler) LatestBlock(c *gin.Context) {
	block, err := h.service.GetLatestBlock(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(block))
}

func (h *Handler) PendingTransactions(c *gin.Context) {
	txs, err := h.service.PendingTransactions(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(txs))
}
