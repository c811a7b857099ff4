package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"crm-service/internal/engine"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

const (
	lowStockThreshold = 10
	restockAmount     = 10
)

// Heartbeat logs a liveness line and probes the service's own health
// endpoint, so a wedged HTTP listener shows up in the logs.
func Heartbeat(healthURL string, log *slog.Logger) Job {
	client := &http.Client{Timeout: 5 * time.Second}

	return Job{
		Name:     "heartbeat",
		Interval: 1 * time.Minute,
		Run: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
			if err != nil {
				return fmt.Errorf("failed to build health request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				log.Warn("heartbeat probe failed", "url", healthURL, "error", err)
				return nil
			}
			resp.Body.Close()

			log.Info("heartbeat", "at", time.Now().UTC(), "health_status", resp.StatusCode)
			return nil
		},
	}
}

// LowStockRestock tops up every product whose stock has fallen below the
// threshold and records a restock event per top-up.
func LowStockRestock(products repository.ProductRepository, restocks repository.RestockRepository, log *slog.Logger) Job {
	return Job{
		Name:     "low_stock_restock",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			low, err := products.LowStock(ctx, lowStockThreshold)
			if err != nil {
				return fmt.Errorf("failed to find low stock products: %w", err)
			}

			for _, p := range low {
				if err := products.UpdateStock(ctx, p.ID, restockAmount); err != nil {
					log.Error("restock failed", "product_id", p.ID, "error", err)
					continue
				}

				event := models.RestockEvent{ProductID: p.ID, Change: restockAmount}
				if err := restocks.Create(ctx, &event); err != nil {
					log.Error("failed to record restock event", "product_id", p.ID, "error", err)
					continue
				}

				log.Info("restocked product", "product_id", p.ID, "name", p.Name, "was", p.Stock)
			}

			return nil
		},
	}
}

const reminderWindowDays = 7

// OrderReminders logs a reminder line for every order placed in the last
// seven days, with the customer email to contact.
func OrderReminders(eng *engine.Engine, log *slog.Logger) Job {
	return Job{
		Name:     "order_reminders",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -reminderWindowDays)
			err := eng.Orders(map[string]any{"order_date_gte": cutoff}).Each(ctx, func(o models.Order) bool {
				email := ""
				if o.Customer != nil {
					email = o.Customer.Email
				}
				log.Info("order reminder", "order_id", o.OrderID, "customer_email", email)
				return true
			})
			if err != nil {
				return fmt.Errorf("failed to list recent orders: %w", err)
			}
			return nil
		},
	}
}

// WeeklyReport logs a summary of the current dataset: entity counts plus
// total revenue across all orders.
func WeeklyReport(eng *engine.Engine, log *slog.Logger) Job {
	return Job{
		Name:     "weekly_report",
		Interval: 7 * 24 * time.Hour,
		Run: func(ctx context.Context) error {
			customers, err := eng.Customers(nil).Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count customers: %w", err)
			}

			products, err := eng.Products(nil).Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count products: %w", err)
			}

			revenue := decimal.Zero
			orders := 0
			err = eng.Orders(nil).Each(ctx, func(o models.Order) bool {
				revenue = revenue.Add(o.TotalAmount)
				orders++
				return true
			})
			if err != nil {
				return fmt.Errorf("failed to sum orders: %w", err)
			}

			log.Info("weekly report",
				"customers", customers,
				"products", products,
				"orders", orders,
				"revenue", revenue,
			)
			return nil
		},
	}
}
