package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/candleshop/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderAt(created time.Time, total float64, status models.OrderStatus, email string) models.Order {
	return models.Order{
		OrderNumber:  "ORD-123456-001",
		CustomerInfo: models.CustomerInfo{Name: "Test Customer", Email: email},
		Total:        total,
		Status:       status,
		CreatedAt:    created,
	}
}

func TestCalculateAdminStats_Empty(t *testing.T) {
	stats := CalculateAdminStats(nil, nil, time.Now())

	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalCustomers)
	// empty previous window must not divide by zero
	assert.Zero(t, stats.RevenueChange)
	assert.Zero(t, stats.OrdersChange)
}

func TestCalculateAdminStats(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		orderAt(now.Add(-2*24*time.Hour), 300, models.OrderStatusPending, "a@example.com"),
		orderAt(now.Add(-3*24*time.Hour), 150, models.OrderStatusDelivered, "b@example.com"),
		orderAt(now.Add(-10*24*time.Hour), 200, models.OrderStatusDelivered, "a@example.com"),
		orderAt(now.Add(-12*24*time.Hour), 100, models.OrderStatusCancelled, "c@example.com"),
		orderAt(now.Add(-30*24*time.Hour), 500, models.OrderStatusDelivered, "d@example.com"),
	}
	products := []models.Product{
		{Name: "Vanilla", Stock: 3},
		{Name: "Lavender", Stock: 50},
		{Name: "Sandalwood", Stock: 9},
	}

	stats := CalculateAdminStats(orders, products, now)

	assert.Equal(t, 1250.0, stats.TotalRevenue)
	assert.Equal(t, 5, stats.TotalOrders)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 4, stats.TotalCustomers) // distinct emails, not orders
	assert.Equal(t, 2, stats.LowStockProducts)
	assert.Equal(t, 1, stats.PendingOrders)

	// current window 450 vs previous window 300
	assert.Equal(t, 50.0, stats.RevenueChange)
	assert.Equal(t, 0.0, stats.OrdersChange) // 2 vs 2
}

func TestSalesData_BucketCount(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for _, days := range []int{1, 7, 30} {
		points := SalesData(nil, days, now)
		require.Len(t, points, days, "days=%d", days)
		for _, p := range points {
			assert.Zero(t, p.Revenue)
			assert.Zero(t, p.Orders)
		}
	}
}

func TestSalesData(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		orderAt(now, 100.333, models.OrderStatusPending, "a@example.com"),
		orderAt(now.Add(-1*time.Hour), 50.333, models.OrderStatusPending, "b@example.com"),
		orderAt(now.Add(-2*24*time.Hour), 75, models.OrderStatusDelivered, "c@example.com"),
		// outside the window, must be ignored
		orderAt(now.Add(-10*24*time.Hour), 999, models.OrderStatusDelivered, "d@example.com"),
	}

	points := SalesData(orders, 7, now)

	require.Len(t, points, 7)
	assert.Equal(t, "2026-08-14", points[0].Date)
	assert.Equal(t, "2026-08-20", points[6].Date)

	last := points[6]
	assert.Equal(t, 150.67, last.Revenue) // rounded to 2 decimals
	assert.Equal(t, 2, last.Orders)

	assert.Equal(t, 75.0, points[4].Revenue)
	assert.Equal(t, 1, points[4].Orders)

	// empty days stay in the series with zeros
	assert.Zero(t, points[1].Revenue)
	assert.Zero(t, points[1].Orders)
}

func TestTopProducts(t *testing.T) {
	orders := []models.Order{
		{Items: []models.OrderItem{
			{Name: "Vanilla", Price: 100, Quantity: 2},
			{Name: "Lavender", Price: 50, Quantity: 1},
		}},
		{Items: []models.OrderItem{
			{Name: "Vanilla", Price: 100, Quantity: 1},
			{Name: "Sandalwood", Price: 400, Quantity: 1},
		}},
	}

	top := TopProducts(orders, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "Sandalwood", top[0].Product)
	assert.Equal(t, 400.0, top[0].Revenue)
	assert.Equal(t, "Vanilla", top[1].Product)
	assert.Equal(t, 300.0, top[1].Revenue)
	assert.Equal(t, 3, top[1].Quantity)
}

func TestExportOrdersCSV(t *testing.T) {
	created := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	orders := []models.Order{
		{
			OrderNumber:  "ORD-123456-007",
			CustomerInfo: models.CustomerInfo{Name: `Priya "PJ" Joshi`, Email: "priya@example.com"},
			Total:        300,
			Status:       models.OrderStatusDelivered,
			CreatedAt:    created,
		},
	}

	csv := ExportOrdersCSV(orders)
	lines := strings.Split(csv, "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, "Order Number,Customer,Email,Total,Status,Date", lines[0])
	assert.Equal(t, `"ORD-123456-007","Priya ""PJ"" Joshi","priya@example.com","300.00","delivered","15/08/2026"`, lines[1])
}

func TestExportOrdersCSV_Empty(t *testing.T) {
	csv := ExportOrdersCSV(nil)
	assert.Equal(t, "Order Number,Customer,Email,Total,Status,Date", csv)
}

func TestSalesData_DefaultsTo7Days(t *testing.T) {
	points := SalesData(nil, 0, time.Now())
	assert.Len(t, points, 7)
}

func TestCalculateAdminStats_Rounding(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	var orders []models.Order
	// previous window: 3 orders of 100; current window: 4 orders of 100
	for i := 0; i < 3; i++ {
		orders = append(orders, orderAt(now.Add(-9*24*time.Hour), 100, models.OrderStatusDelivered, fmt.Sprintf("p%d@example.com", i)))
	}
	for i := 0; i < 4; i++ {
		orders = append(orders, orderAt(now.Add(-time.Duration(i)*24*time.Hour), 100, models.OrderStatusDelivered, fmt.Sprintf("c%d@example.com", i)))
	}

	stats := CalculateAdminStats(orders, nil, now)

	// (4-3)/3*100 = 33.333... rounded to 1 decimal
	assert.Equal(t, 33.3, stats.OrdersChange)
	assert.Equal(t, 33.3, stats.RevenueChange)
}

func TestAdminServiceStats(t *testing.T) {
	orders := newMockOrderStore()
	products := &mockProductStore{products: []models.Product{
		{Name: "Vanilla", Stock: 2},
		{Name: "Lavender", Stock: 20},
	}}
	svc := NewAdminService(orders, products)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStockProducts)
	assert.Zero(t, stats.TotalOrders)
}
