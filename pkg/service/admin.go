package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/example/candleshop/pkg/models"
)

// Products with stock below this count appear in the low-stock alert.
const lowStockThreshold = 10

type AdminStats struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalOrders      int     `json:"total_orders"`
	TotalProducts    int     `json:"total_products"`
	TotalCustomers   int     `json:"total_customers"`
	RevenueChange    float64 `json:"revenue_change"`
	OrdersChange     float64 `json:"orders_change"`
	LowStockProducts int     `json:"low_stock_products"`
	PendingOrders    int     `json:"pending_orders"`
}

type SalesPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type ProductSales struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// AdminService recomputes dashboard aggregates from the full order
// and product collections on every read. No incremental counters are
// kept, so the numbers cannot drift from the source records.
type AdminService struct {
	orders   OrderStore
	products ProductStore
}

func NewAdminService(orders OrderStore, products ProductStore) *AdminService {
	return &AdminService{orders: orders, products: products}
}

func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := CalculateAdminStats(orders, products, time.Now())
	return &stats, nil
}

func (s *AdminService) Sales(ctx context.Context, days int) ([]SalesPoint, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return SalesData(orders, days, time.Now()), nil
}

func (s *AdminService) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return TopProducts(orders, limit), nil
}

func (s *AdminService) ExportCSV(ctx context.Context) (string, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return "", err
	}
	return ExportOrdersCSV(orders), nil
}

// CalculateAdminStats derives the dashboard numbers from the full
// collections. Revenue and order deltas compare the trailing 7 days
// with the 7 days before that; an empty previous window reports 0 to
// avoid division by zero.
func CalculateAdminStats(orders []models.Order, products []models.Product, now time.Time) AdminStats {
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)
	fourteenDaysAgo := now.Add(-14 * 24 * time.Hour)

	var totalRevenue, currentRevenue, previousRevenue float64
	var currentCount, previousCount, pendingCount int
	customers := make(map[string]struct{})

	for _, o := range orders {
		totalRevenue += o.Total
		if o.Status == models.OrderStatusPending {
			pendingCount++
		}
		customers[o.CustomerInfo.Email] = struct{}{}

		switch {
		case !o.CreatedAt.Before(sevenDaysAgo):
			currentRevenue += o.Total
			currentCount++
		case !o.CreatedAt.Before(fourteenDaysAgo):
			previousRevenue += o.Total
			previousCount++
		}
	}

	var revenueChange, ordersChange float64
	if previousRevenue > 0 {
		revenueChange = (currentRevenue - previousRevenue) / previousRevenue * 100
	}
	if previousCount > 0 {
		ordersChange = float64(currentCount-previousCount) / float64(previousCount) * 100
	}

	lowStock := 0
	for _, p := range products {
		if p.Stock < lowStockThreshold {
			lowStock++
		}
	}

	return AdminStats{
		TotalRevenue:     totalRevenue,
		TotalOrders:      len(orders),
		TotalProducts:    len(products),
		TotalCustomers:   len(customers),
		RevenueChange:    round1(revenueChange),
		OrdersChange:     round1(ordersChange),
		LowStockProducts: lowStock,
		PendingOrders:    pendingCount,
	}
}

// SalesData buckets orders into the last N calendar days (UTC), one
// bucket per day keyed by ISO date. Days without orders stay in the
// result with zero revenue.
func SalesData(orders []models.Order, days int, now time.Time) []SalesPoint {
	if days <= 0 {
		days = 7
	}

	type bucket struct {
		revenue float64
		orders  int
	}
	buckets := make(map[string]*bucket, days)
	dates := make([]string, 0, days)

	for i := days - 1; i >= 0; i-- {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		buckets[date] = &bucket{}
		dates = append(dates, date)
	}

	for _, o := range orders {
		date := o.CreatedAt.UTC().Format("2006-01-02")
		if b, ok := buckets[date]; ok {
			b.revenue += o.Total
			b.orders++
		}
	}

	points := make([]SalesPoint, 0, days)
	for _, date := range dates {
		b := buckets[date]
		points = append(points, SalesPoint{
			Date:    date,
			Revenue: round2(b.revenue),
			Orders:  b.orders,
		})
	}
	return points
}

// TopProducts ranks products by revenue across all order items.
func TopProducts(orders []models.Order, limit int) []ProductSales {
	totals := make(map[string]*ProductSales)
	for _, o := range orders {
		for _, item := range o.Items {
			entry, ok := totals[item.Name]
			if !ok {
				entry = &ProductSales{Product: item.Name}
				totals[item.Name] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue += item.Price * float64(item.Quantity)
		}
	}

	ranked := make([]ProductSales, 0, len(totals))
	for _, entry := range totals {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ExportOrdersCSV renders the back-office export: a fixed header row
// and one fully quoted row per order.
func ExportOrdersCSV(orders []models.Order) string {
	var b strings.Builder
	b.WriteString("Order Number,Customer,Email,Total,Status,Date")

	for _, o := range orders {
		cells := []string{
			o.OrderNumber,
			o.CustomerInfo.Name,
			o.CustomerInfo.Email,
			fmt.Sprintf("%.2f", o.Total),
			o.Status.String(),
			o.CreatedAt.Format("02/01/2006"),
		}
		b.WriteByte('\n')
		for i, cell := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
