// Command relstore is a demonstration harness for the relstore command
// execution core: it builds a small Customer/Order/Item schema and runs
// the six scenarios the core's testable properties are specified against,
// logging each outcome. It is a library demo, not a server — the core's
// public surface is a set of Go functions, not a wire protocol, so there is no
// listener here the way the teacher's main.go started one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"go.uber.org/zap"

	"relstore/src/btreeindex"
	"relstore/src/clone"
	"relstore/src/concurrency"
	"relstore/src/directors"
	"relstore/src/engine"
	"relstore/src/hashindex"
	"relstore/src/models"
	"relstore/src/settings"
)

type Customer struct {
	ID   int
	Name string
}

type Order struct {
	ID         int
	CustomerID int
}

type Item struct {
	ID   int
	Code string
}

func main() {
	debug := flag.Bool("debug", false, "enable verbose per-step logging")
	lockTimeout := flag.Duration("lock-timeout", 5*time.Second, "table lock acquire timeout")
	flag.Parse()

	args := settings.Default()
	args.Debug = *debug
	args.LockTimeout = *lockTimeout
	settings.SetSettings(args)

	logger := buildLogger(args)
	defer logger.Sync()

	cm := concurrency.NewManager(args.LockTimeout, logger)
	db := models.NewDatabase(cm, logger)
	catalog := directors.InitCatalog(db, logger)

	buildSchema(catalog.Tables, logger)

	ctx := models.NewExecutionContext(context.Background(), db, models.NewTransaction())

	scenarios := []struct {
		name string
		run  func(*models.ExecutionContext) error
	}{
		{"S1 insert-fk-fail", scenarioInsertFKFail},
		{"S2 update-breaks-referrer", scenarioUpdateBreaksReferrer},
		{"S3 cascade-delete", scenarioCascadeDelete},
		{"S4 update-key-reindexes", scenarioUpdateKeyReindexes},
		{"S5 update-key-collision", scenarioUpdateKeyCollision},
		{"S6 query-cloning", scenarioQueryCloning},
	}

	// All scenarios run in one transaction: related locks are held until the
	// transaction ends, so a fresh transaction per scenario would block on
	// the locks an earlier one left behind. S5 also reuses S4's rows.
	failed := false
	for _, s := range scenarios {
		if err := s.run(ctx); err != nil {
			logger.Errorw("scenario failed", "scenario", s.name, "error", err)
			failed = true
			continue
		}
		logger.Infow("scenario passed", "scenario", s.name)
	}

	if failed {
		os.Exit(1)
	}
}

func buildLogger(args *settings.Arguments) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if !args.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("build logger: %w", err))
	}
	return logger.Sugar()
}

// buildSchema registers Customer, Order, and Item with a primary key index
// apiece, Order's secondary index on CustomerID, and the Order→Customer
// relation (cascading, so S3 can exercise cascade delete without a second
// schema).
func buildSchema(tables *directors.TableService, logger *zap.SugaredLogger) {
	customerTable := models.NewTable("Customer", reflect.TypeOf((*Customer)(nil)), clone.BSONCloner{})
	customerPK := models.NewIndex("Customer.ID", true, true, []string{"ID"}, func(e any) models.EntityKey {
		return models.EncodeKey(e.(*Customer).ID)
	}, btreeindex.NewStore())
	customerTable.AddIndex(customerPK, true)
	tables.RegisterTable(customerTable)

	orderTable := models.NewTable("Order", reflect.TypeOf((*Order)(nil)), clone.BSONCloner{})
	orderPK := models.NewIndex("Order.ID", true, true, []string{"ID"}, func(e any) models.EntityKey {
		return models.EncodeKey(e.(*Order).ID)
	}, btreeindex.NewStore())
	orderTable.AddIndex(orderPK, true)
	orderCustomerIdx := models.NewIndex("Order.CustomerID", false, false, []string{"CustomerID"}, func(e any) models.EntityKey {
		return models.EncodeKey(e.(*Order).CustomerID)
	}, hashindex.NewStore())
	orderTable.AddIndex(orderCustomerIdx, false)
	tables.RegisterTable(orderTable)

	itemTable := models.NewTable("Item", reflect.TypeOf((*Item)(nil)), clone.BSONCloner{})
	itemPK := models.NewIndex("Item.ID", true, true, []string{"ID"}, func(e any) models.EntityKey {
		return models.EncodeKey(e.(*Item).ID)
	}, btreeindex.NewStore())
	itemTable.AddIndex(itemPK, true)
	itemCodeIdx := models.NewIndex("Item.Code", false, true, []string{"Code"}, func(e any) models.EntityKey {
		return models.EncodeKey(e.(*Item).Code)
	}, btreeindex.NewStore())
	itemTable.AddIndex(itemCodeIdx, false)
	tables.RegisterTable(itemTable)

	if err := tables.RegisterRelation(&models.Relation{
		Name:         "Order.CustomerID->Customer.ID",
		ForeignTable: orderTable,
		ForeignIndex: orderCustomerIdx,
		PrimaryTable: customerTable,
		PrimaryIndex: customerPK,
		Options:      models.RelationOptions{CascadedDeletion: true},
	}); err != nil {
		logger.Fatalw("schema setup failed", "error", err)
	}
}

func scenarioInsertFKFail(ctx *models.ExecutionContext) error {
	order := &Order{ID: 1, CustomerID: 99}
	err := engine.ExecuteInsert(ctx, order)
	if err == nil {
		return fmt.Errorf("expected ForeignKeyViolation, got nil")
	}
	return nil
}

func scenarioUpdateBreaksReferrer(ctx *models.ExecutionContext) error {
	if err := engine.ExecuteInsert(ctx, &Customer{ID: 1, Name: "A"}); err != nil {
		return err
	}
	if err := engine.ExecuteInsert(ctx, &Order{ID: 1, CustomerID: 1}); err != nil {
		return err
	}

	plan := directors.NewFilterPlan(mustTable(ctx, "Customer"), func(c *Customer) bool { return c.ID == 1 })
	updater := models.UpdaterFunc[*Customer]{
		ChangedFields: []string{"ID"},
		Fn: func(c *Customer) (*Customer, error) {
			c.ID = 2
			return c, nil
		},
	}
	_, err := engine.ExecuteUpdater[*Customer](ctx, plan, updater)
	if err == nil {
		return fmt.Errorf("expected ForeignKeyViolation, got nil")
	}
	return nil
}

func scenarioCascadeDelete(ctx *models.ExecutionContext) error {
	if err := engine.ExecuteInsert(ctx, &Customer{ID: 10, Name: "B"}); err != nil {
		return err
	}
	if err := engine.ExecuteInsert(ctx, &Order{ID: 100, CustomerID: 10}); err != nil {
		return err
	}
	if err := engine.ExecuteInsert(ctx, &Order{ID: 101, CustomerID: 10}); err != nil {
		return err
	}

	plan := directors.NewFilterPlan(mustTable(ctx, "Customer"), func(c *Customer) bool { return c.ID == 10 })
	victims, err := engine.ExecuteDelete[*Customer](ctx, plan)
	if err != nil {
		return err
	}
	if len(victims) != 1 {
		return fmt.Errorf("expected 1 victim, got %d", len(victims))
	}
	return nil
}

func scenarioUpdateKeyReindexes(ctx *models.ExecutionContext) error {
	if err := engine.ExecuteInsert(ctx, &Item{ID: 1, Code: "a"}); err != nil {
		return err
	}
	if err := engine.ExecuteInsert(ctx, &Item{ID: 2, Code: "b"}); err != nil {
		return err
	}

	plan := directors.NewFilterPlan(mustTable(ctx, "Item"), func(i *Item) bool { return i.ID == 1 })
	updater := models.UpdaterFunc[*Item]{
		ChangedFields: []string{"Code"},
		Fn: func(i *Item) (*Item, error) {
			i.Code = "c"
			return i, nil
		},
	}
	_, err := engine.ExecuteUpdater[*Item](ctx, plan, updater)
	return err
}

func scenarioUpdateKeyCollision(ctx *models.ExecutionContext) error {
	plan := directors.NewFilterPlan(mustTable(ctx, "Item"), func(i *Item) bool { return i.ID == 1 })
	updater := models.UpdaterFunc[*Item]{
		ChangedFields: []string{"Code"},
		Fn: func(i *Item) (*Item, error) {
			i.Code = "b"
			return i, nil
		},
	}
	_, err := engine.ExecuteUpdater[*Item](ctx, plan, updater)
	if err == nil {
		return fmt.Errorf("expected UniqueConstraintViolation, got nil")
	}
	return nil
}

func scenarioQueryCloning(ctx *models.ExecutionContext) error {
	if err := engine.ExecuteInsert(ctx, &Customer{ID: 20, Name: "original"}); err != nil {
		return err
	}

	plan := directors.NewFilterPlan(mustTable(ctx, "Customer"), func(c *Customer) bool { return c.ID == 20 })
	results, err := engine.Query[*Customer](ctx, plan, nil, true)
	if err != nil {
		return err
	}
	if len(results) != 1 {
		return fmt.Errorf("expected 1 result, got %d", len(results))
	}
	results[0].Name = "mutated"

	results2, err := engine.Query[*Customer](ctx, plan, nil, true)
	if err != nil {
		return err
	}
	if results2[0].Name != "original" {
		return fmt.Errorf("query did not clone: saw %q after mutating a prior result", results2[0].Name)
	}
	return nil
}

func mustTable(ctx *models.ExecutionContext, name string) models.TableHandle {
	t, ok := ctx.Database.FindTable(name)
	if !ok {
		panic(fmt.Errorf("table %q not registered", name))
	}
	return t
}
