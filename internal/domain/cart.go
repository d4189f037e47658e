package domain

// LineKeySeparator 购物车行身份键各部分之间的分隔符，不允许出现在商品、颜色与配件标识中
const LineKeySeparator = "|"

// CartLine 购物车行
type CartLine struct {
	ProductID   string      `json:"product_id"`
	Quantity    int         `json:"quantity"`
	Color       Color       `json:"color"`
	Accessories []Accessory `json:"accessories"`
}

// CartState 购物车的完整可持久化状态
// 小计、折扣、总额均为派生值，不会被存储
type CartState struct {
	Lines  []CartLine `json:"lines"`
	Coupon *Coupon    `json:"applied_coupon,omitempty"`
}

// AddLineRequest 表示加入购物车请求
// 颜色和配件只传标识，由服务端从商品目录解析
type AddLineRequest struct {
	ProductID    string   `json:"product_id"`
	Quantity     int      `json:"quantity"`
	ColorHex     string   `json:"color_hex"`
	AccessoryIDs []string `json:"accessory_ids"`
}

// UpdateQuantityRequest 表示修改数量请求
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyCouponRequest 表示使用优惠券请求
type ApplyCouponRequest struct {
	Code string `json:"code"`
}
