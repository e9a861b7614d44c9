package models

import "time"

// Authority is the role the shop assigns to a member.
type Authority string

const (
	AuthorityGeneral Authority = "GENERAL_MEMBER"
	AuthoritySelling Authority = "SELLING_MEMBER"
	AuthorityAdmin   Authority = "ADMIN_MEMBER"
)

// Member is the signed-in shopper as reported by the session probe.
type Member struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Authority Authority `json:"authority"`
}

// Product is catalog data, read-only on this side.
type Product struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	SellerName string `json:"seller_name"`
	Stock      int64  `json:"stock"`
	ImageURL   string `json:"image_url"`
	Category   string `json:"category"`
}

// CartItem is one product selected for purchase. Checked controls
// whether the item participates in bulk actions and checkout.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
	Checked  bool    `json:"checked"`
}

// Subtotal is quantity times unit price for this line.
func (i CartItem) Subtotal() int64 {
	return i.Product.Price * i.Quantity
}

// OrderDraft is the snapshot handed to checkout when the shopper
// proceeds from the cart. It is a copy; later cart mutation does not
// reach an in-flight draft.
type OrderDraft struct {
	Items       []CartItem `json:"items"`
	TotalAmount int64      `json:"total_amount"`
}

// Empty reports whether the draft carries no purchasable lines.
func (d OrderDraft) Empty() bool {
	return len(d.Items) == 0
}

// AmountBreakdown is the itemized payment computation shown on the
// order sheet. All fields are whole currency units.
type AmountBreakdown struct {
	TotalProductAmount int64 `json:"total_product_amount"`
	DiscountAmount     int64 `json:"discount_amount"`
	ShippingFee        int64 `json:"shipping_fee"`
	CouponDiscount     int64 `json:"coupon_discount"`
	MilesDiscount      int64 `json:"miles_discount"`
	FinalAmount        int64 `json:"final_amount"`
}

// OrderStatus is server-owned; this side only displays it.
type OrderStatus string

const (
	OrderStatusPaymentPending   OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaymentCompleted OrderStatus = "PAYMENT_COMPLETED"
	OrderStatusShipping         OrderStatus = "SHIPPING"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusPaymentCanceled  OrderStatus = "PAYMENT_CANCELED"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPaymentPending:   "결제대기",
	OrderStatusPaymentCompleted: "결제완료",
	OrderStatusShipping:         "배송중",
	OrderStatusDelivered:        "배송완료",
	OrderStatusPaymentCanceled:  "결제취소",
}

// Label returns the display label for the status, falling back to the
// raw value for statuses this build does not know.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// OrderDetail is one line of a created order.
type OrderDetail struct {
	ProductID    int64       `json:"product_id"`
	ProductName  string      `json:"product_name"`
	ProductCount int64       `json:"product_count"`
	Price        int64       `json:"price"`
	Status       OrderStatus `json:"status"`
}

// Order is the server-assigned result of a successful submission.
type Order struct {
	ID            int64         `json:"id"`
	MemberID      int64         `json:"member_id"`
	PaymentMethod string        `json:"payment_method"`
	PaymentAmount int64         `json:"payment_amount"`
	DeliveryCost  int64         `json:"delivery_cost"`
	CreatedAt     time.Time     `json:"created_at"`
	OrderDetails  []OrderDetail `json:"order_details"`
}
