package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crm-service/internal/database"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// Seeds the database with a small deterministic dataset: customers across
// several phone formats, products covering every price category, and a few
// orders. The batch deliberately includes invalid rows to show the bulk
// endpoint's partial-success behavior.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := database.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, cfg.MigrationsDir, log); err != nil {
		return err
	}

	customers := repository.NewCustomerRepository(pool)
	products := repository.NewProductRepository(pool)
	orders := repository.NewOrderRepository(pool)

	batch := []models.Customer{
		{Name: "Alice Johnson", Email: "alice@example.com", Phone: "+12025550101"},
		{Name: "Bob Smith", Email: "bob@example.com", Phone: "123-456-7890"},
		{Name: "Carol White", Email: "carol@gmail.com", Phone: "+447911123456"},
		{Name: "David Lee", Email: "david@example.com"},
		{Name: "Eve Davis", Email: "eve@gmail.com", Phone: "+4915123456789"},
		{Name: "X", Email: "too-short-name@example.com"},
		{Name: "No Email", Email: "not-an-email"},
		{Name: "Bad Phone", Email: "badphone@example.com", Phone: "555"},
	}

	created, rejected := customers.BulkCreate(ctx, batch)
	log.Info("seeded customers", "created", len(created), "rejected", len(rejected))
	for _, e := range rejected {
		log.Info("rejected customer row", "index", e.Index, "field", e.Field, "message", e.Message)
	}

	catalog := []models.Product{
		{Name: "USB Cable", Price: decimal.NewFromFloat(9.99), Stock: 200},
		{Name: "Wireless Mouse", Price: decimal.NewFromFloat(29.99), Stock: 80},
		{Name: "Mechanical Keyboard", Price: decimal.NewFromFloat(89.50), Stock: 40},
		{Name: "Monitor 27in", Price: decimal.NewFromFloat(249.00), Stock: 15},
		{Name: "Laptop Pro", Price: decimal.NewFromFloat(1299.00), Stock: 8},
		{Name: "Workstation", Price: decimal.NewFromFloat(2499.00), Stock: 3},
	}

	byName := make(map[string]uuid.UUID, len(catalog))
	for i := range catalog {
		if err := products.Create(ctx, &catalog[i]); err != nil {
			log.Warn("product seed skipped", "name", catalog[i].Name, "error", err)
			continue
		}
		byName[catalog[i].Name] = catalog[i].ID
	}
	log.Info("seeded products", "count", len(byName))

	if len(created) < 3 {
		log.Info("not enough customers for orders, done")
		return nil
	}

	seedOrders := []struct {
		customer uuid.UUID
		items    []string
		daysAgo  int
	}{
		{created[0].ID, []string{"Laptop Pro", "Wireless Mouse"}, 2},
		{created[0].ID, []string{"USB Cable"}, 40},
		{created[1].ID, []string{"Monitor 27in", "Mechanical Keyboard"}, 5},
		{created[2].ID, []string{"Workstation"}, 1},
	}

	for _, so := range seedOrders {
		var ids []uuid.UUID
		for _, name := range so.items {
			if id, ok := byName[name]; ok {
				ids = append(ids, id)
			}
		}

		o := models.Order{
			CustomerID: so.customer,
			OrderDate:  time.Now().AddDate(0, 0, -so.daysAgo),
		}
		if err := orders.Create(ctx, &o, ids); err != nil {
			log.Warn("order seed skipped", "customer_id", so.customer, "error", err)
			continue
		}
		log.Info("seeded order", "order_id", o.OrderID, "total", o.TotalAmount)
	}

	return nil
}
