package schema

const OrderEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "orders",
	"name": "order_placed",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "user_id", "type": "string"},
		{"name": "total_price", "type": "string"},
		{"name": "created_at", "type": "long"},
		{"name": "lines", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_line",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "quantity", "type": "int"},
					{"name": "unit_price", "type": "string"}
				]
			}
		}}
	]
}`

type (
	OrderEventV1 struct {
		OrderID    string             `avro:"order_id"`
		UserID     string             `avro:"user_id"`
		TotalPrice string             `avro:"total_price"`
		CreatedAt  int64              `avro:"created_at"`
		Lines      []OrderEventLineV1 `avro:"lines"`
	}

	OrderEventLineV1 struct {
		ProductID string `avro:"product_id"`
		Quantity  int    `avro:"quantity"`
		UnitPrice string `avro:"unit_price"`
	}
)
