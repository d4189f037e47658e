package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/resp"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// WishlistHandler 收藏夹处理器
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler 创建收藏夹处理器
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishlistHandler{wishlistService: wishlistService, logger: logger}
}

// WishlistResponse 收藏夹响应
type WishlistResponse struct {
	ProductIDs []string `json:"product_ids"`
	InWishlist *bool    `json:"in_wishlist,omitempty"`
}

// List 收藏的商品ID，按加入顺序
// GET /api/v1/wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	ids, err := h.wishlistService.List(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, h.logger, err, "list wishlist")
		return
	}
	resp.OK(c.Writer, WishlistResponse{ProductIDs: ids}, requestID(c), "")
}

// Contains 商品是否已收藏
// GET /api/v1/wishlist/:productId
func (h *WishlistHandler) Contains(c *gin.Context) {
	ctx := c.Request.Context()
	ok, err := h.wishlistService.Contains(ctx, sessionID(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.logger, err, "check wishlist")
		return
	}
	ids, err := h.wishlistService.List(ctx, sessionID(c))
	if err != nil {
		writeError(c, h.logger, err, "check wishlist")
		return
	}
	resp.OK(c.Writer, WishlistResponse{ProductIDs: ids, InWishlist: &ok}, requestID(c), "")
}

// Add 收藏商品
// POST /api/v1/wishlist/:productId
func (h *WishlistHandler) Add(c *gin.Context) {
	ids, err := h.wishlistService.Add(c.Request.Context(), sessionID(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.logger, err, "add to wishlist")
		return
	}
	in := true
	resp.OK(c.Writer, WishlistResponse{ProductIDs: ids, InWishlist: &in}, requestID(c), "")
}

// Remove 取消收藏
// DELETE /api/v1/wishlist/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	ids, err := h.wishlistService.Remove(c.Request.Context(), sessionID(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.logger, err, "remove from wishlist")
		return
	}
	in := false
	resp.OK(c.Writer, WishlistResponse{ProductIDs: ids, InWishlist: &in}, requestID(c), "")
}

// Toggle 切换收藏状态
// POST /api/v1/wishlist/:productId/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	in, ids, err := h.wishlistService.Toggle(c.Request.Context(), sessionID(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.logger, err, "toggle wishlist")
		return
	}
	resp.OK(c.Writer, WishlistResponse{ProductIDs: ids, InWishlist: &in}, requestID(c), "")
}
