package httpx

type OrderRequest struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customer_id"`
	Items      []OrderItemDTO `json:"items"`
}

type OrderItemDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
}

type OrderResponse struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customer_id"`
	Total      float64        `json:"total"`
	Items      []OrderItemDTO `json:"items"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
