package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/middleware"
	"github.com/MorseWayne/nursery_shop/internal/resp"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// ProductHandler 管理端商品处理器
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{productService: productService, logger: logger}
}

// CreateProduct 创建商品
// POST /api/v1/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product domain.Product
	if !bindJSON(c, h.logger, &product) {
		return
	}
	created, err := h.productService.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		writeError(c, h.logger, err, "create product")
		return
	}
	h.logger.Info("admin created product",
		zap.String("request_id", requestID(c)),
		zap.String("admin", adminSubject(c)),
		zap.String("product_id", created.ID))
	resp.Created(c.Writer, created, requestID(c), "")
}

// UpdateProduct 全量更新商品
// PUT /api/v1/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var product domain.Product
	if !bindJSON(c, h.logger, &product) {
		return
	}
	updated, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), &product)
	if err != nil {
		writeError(c, h.logger, err, "update product")
		return
	}
	resp.OK(c.Writer, updated, requestID(c), "")
}

// DeleteProduct 删除商品
// DELETE /api/v1/admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err, "delete product")
		return
	}
	h.logger.Info("admin deleted product",
		zap.String("request_id", requestID(c)),
		zap.String("admin", adminSubject(c)),
		zap.String("product_id", c.Param("id")))
	resp.OK(c.Writer, map[string]bool{"deleted": true}, requestID(c), "")
}

// ImportProducts 批量导入商品
// POST /api/v1/admin/products/import
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	var products []*domain.Product
	if !bindJSON(c, h.logger, &products) {
		return
	}
	result, err := h.productService.ImportProducts(c.Request.Context(), products)
	if err != nil {
		writeError(c, h.logger, err, "import products")
		return
	}
	resp.OK(c.Writer, result, requestID(c), "")
}

func adminSubject(c *gin.Context) string {
	if admin := middleware.AdminFromContext(c.Request.Context()); admin != nil {
		return admin.Subject
	}
	return ""
}
