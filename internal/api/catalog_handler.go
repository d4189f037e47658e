package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/catalog"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/resp"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// CatalogHandler 商品目录、商品详情与评价处理器
type CatalogHandler struct {
	catalogService service.CatalogService
	reviewService  service.ReviewService
	defaultLang    domain.Language
	logger         *zap.Logger
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(catalogService service.CatalogService, reviewService service.ReviewService, defaultLang domain.Language, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
		defaultLang:    defaultLang,
		logger:         logger,
	}
}

// CatalogResponse 目录查询响应
type CatalogResponse struct {
	catalog.Result
	Language    domain.Language    `json:"language"`
	Filter      domain.FilterState `json:"filter"`
	NextVisible int                `json:"next_visible,omitempty"`
}

// FacetsResponse 筛选项响应
type FacetsResponse struct {
	catalog.Facets
	Language domain.Language `json:"language"`
}

// ListCatalog 目录查询
// GET /api/v1/catalog?category=&search=&collection=&color=&sort=&visible=&lang=
func (h *CatalogHandler) ListCatalog(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	lang := language(c, h.defaultLang)

	result, err := h.catalogService.Query(c.Request.Context(), f, lang)
	if err != nil {
		writeError(c, h.logger, err, "query catalog")
		return
	}

	out := CatalogResponse{Result: *result, Language: lang, Filter: f}
	if result.HasMore {
		// 客户端加载更多时回传的 visible
		out.NextVisible = result.Visible + result.PageSize
	}
	resp.OK(c.Writer, out, requestID(c), "")
}

// Facets 分类、系列与颜色筛选项
// GET /api/v1/catalog/facets?lang=
func (h *CatalogHandler) Facets(c *gin.Context) {
	lang := language(c, h.defaultLang)
	facets, err := h.catalogService.Facets(c.Request.Context(), lang)
	if err != nil {
		writeError(c, h.logger, err, "load facets")
		return
	}
	resp.OK(c.Writer, FacetsResponse{Facets: *facets, Language: lang}, requestID(c), "")
}

// GetProduct 商品详情
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "get product")
		return
	}
	resp.OK(c.Writer, product, requestID(c), "")
}

// ListReviews 商品评价列表，新评价在前
// GET /api/v1/products/:id/reviews
func (h *CatalogHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "list reviews")
		return
	}
	resp.OK(c.Writer, reviews, requestID(c), "")
}

// CreateReview 发表评价
// POST /api/v1/products/:id/reviews
func (h *CatalogHandler) CreateReview(c *gin.Context) {
	var req domain.CreateReviewRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	review, err := h.reviewService.CreateReview(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, h.logger, err, "create review")
		return
	}
	resp.Created(c.Writer, review, requestID(c), "")
}

// parseFilter 由查询参数构造 FilterState
// collection 与 color 可重复出现，也可用逗号分隔
func parseFilter(c *gin.Context) (domain.FilterState, error) {
	f := domain.NewFilterState()
	f.SetCategory(c.Query("category"))
	f.SetSearch(c.Query("search"))
	for _, name := range splitValues(c.QueryArray("collection")) {
		f.ToggleCollection(name)
	}
	for _, hex := range splitValues(c.QueryArray("color")) {
		f.ToggleColor(hex)
	}
	f.SetSort(domain.ParseSortKey(c.Query("sort")))

	if v := strings.TrimSpace(c.Query("visible")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errInvalidVisible
		}
		f.VisibleCount = n
	}
	return f, nil
}

// splitValues 拆分逗号分隔的值并去重
func splitValues(raw []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
