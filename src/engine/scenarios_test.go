package engine_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"relstore/src/btreeindex"
	"relstore/src/clone"
	"relstore/src/concurrency"
	"relstore/src/directors"
	"relstore/src/engine"
	"relstore/src/hashindex"
	"relstore/src/models"
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

// schema builds a fresh Customer/Order/Item database for one test, so
// scenarios never see another scenario's rows.
func schema(t *testing.T) (*models.ExecutionContext, *directors.TableService) {
	t.Helper()

	logger := zaptest.NewLogger(t).Sugar()
	cm := concurrency.NewManager(0, logger)
	db := models.NewDatabase(cm, logger)
	tables := directors.NewTableService(db, nil, logger)

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
		t.Fatalf("schema setup: %v", err)
	}

	ctx := models.NewExecutionContext(context.Background(), db, models.NewTransaction())
	return ctx, tables
}

func mustTable(t *testing.T, tables *directors.TableService, name string) models.TableHandle {
	t.Helper()
	tbl, err := tables.Table(name)
	if err != nil {
		t.Fatalf("table %q: %v", name, err)
	}
	return tbl
}

// S1: an insert whose foreign key does not resolve fails with
// ErrForeignKeyViolation and leaves no trace in any index.
func TestInsertForeignKeyFail(t *testing.T) {
	ctx, tables := schema(t)

	err := engine.ExecuteInsert(ctx, &Order{ID: 1, CustomerID: 99})
	if !errors.Is(err, engine.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}

	orderTable := mustTable(t, tables, "Order")
	if got := len(orderTable.PrimaryIndex().All()); got != 0 {
		t.Fatalf("expected no orders after failed insert, found %d", got)
	}
}

// S2: updating a customer's key while an order still refers to it fails,
// and the customer's row is untouched.
func TestUpdateBreaksReferrer(t *testing.T) {
	ctx, tables := schema(t)

	if err := engine.ExecuteInsert(ctx, &Customer{ID: 1, Name: "A"}); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := engine.ExecuteInsert(ctx, &Order{ID: 1, CustomerID: 1}); err != nil {
		t.Fatalf("insert order: %v", err)
	}

	customerTable := mustTable(t, tables, "Customer")
	plan := directors.NewFilterPlan(customerTable, func(c *Customer) bool { return c.ID == 1 })
	updater := models.UpdaterFunc[*Customer]{
		ChangedFields: []string{"ID"},
		Fn: func(c *Customer) (*Customer, error) {
			c.ID = 2
			return c, nil
		},
	}

	_, err := engine.ExecuteUpdater[*Customer](ctx, plan, updater)
	if !errors.Is(err, engine.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}

	results, err := engine.Query[*Customer](ctx, directors.NewFilterPlan(customerTable, func(c *Customer) bool { return c.ID == 1 }), nil, false)
	if err != nil {
		t.Fatalf("query after failed update: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected customer 1 to survive the rolled-back update, found %d", len(results))
	}
}

// S3: deleting a customer cascades to every order that refers to it.
func TestCascadeDelete(t *testing.T) {
	ctx, tables := schema(t)

	if err := engine.ExecuteInsert(ctx, &Customer{ID: 10, Name: "B"}); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := engine.ExecuteInsert(ctx, &Order{ID: 100, CustomerID: 10}); err != nil {
		t.Fatalf("insert order 100: %v", err)
	}
	if err := engine.ExecuteInsert(ctx, &Order{ID: 101, CustomerID: 10}); err != nil {
		t.Fatalf("insert order 101: %v", err)
	}

	customerTable := mustTable(t, tables, "Customer")
	plan := directors.NewFilterPlan(customerTable, func(c *Customer) bool { return c.ID == 10 })
	victims, err := engine.ExecuteDelete[*Customer](ctx, plan)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(victims) != 1 {
		t.Fatalf("expected 1 deleted customer, got %d", len(victims))
	}

	orderTable := mustTable(t, tables, "Order")
	if got := len(orderTable.PrimaryIndex().All()); got != 0 {
		t.Fatalf("expected both orders cascaded away, found %d remaining", got)
	}
}

// S4: updating an indexed key field re-indexes the row under its new key
// without disturbing its identity.
func TestUpdateKeyReindexes(t *testing.T) {
	ctx, tables := schema(t)

	if err := engine.ExecuteInsert(ctx, &Item{ID: 1, Code: "a"}); err != nil {
		t.Fatalf("insert item 1: %v", err)
	}

	itemTable := mustTable(t, tables, "Item")
	plan := directors.NewFilterPlan(itemTable, func(i *Item) bool { return i.ID == 1 })
	updater := models.UpdaterFunc[*Item]{
		ChangedFields: []string{"Code"},
		Fn: func(i *Item) (*Item, error) {
			i.Code = "c"
			return i, nil
		},
	}
	if _, err := engine.ExecuteUpdater[*Item](ctx, plan, updater); err != nil {
		t.Fatalf("update: %v", err)
	}

	codeIdx, ok := itemTable.IndexByName("Item.Code")
	if !ok {
		t.Fatalf("Item.Code index missing")
	}
	if found := codeIdx.Lookup(models.EncodeKey("a")); len(found) != 0 {
		t.Fatalf("old key %q still indexed after update", "a")
	}
	if found := codeIdx.Lookup(models.EncodeKey("c")); len(found) != 1 {
		t.Fatalf("new key %q not indexed after update, found %d", "c", len(found))
	}
}

// S5: updating a unique key field to a value already held by another row
// fails with ErrUniqueConstraintViolation and the row keeps its old key.
func TestUpdateKeyCollision(t *testing.T) {
	ctx, tables := schema(t)

	if err := engine.ExecuteInsert(ctx, &Item{ID: 1, Code: "a"}); err != nil {
		t.Fatalf("insert item 1: %v", err)
	}
	if err := engine.ExecuteInsert(ctx, &Item{ID: 2, Code: "b"}); err != nil {
		t.Fatalf("insert item 2: %v", err)
	}

	itemTable := mustTable(t, tables, "Item")
	plan := directors.NewFilterPlan(itemTable, func(i *Item) bool { return i.ID == 1 })
	updater := models.UpdaterFunc[*Item]{
		ChangedFields: []string{"Code"},
		Fn: func(i *Item) (*Item, error) {
			i.Code = "b"
			return i, nil
		},
	}

	_, err := engine.ExecuteUpdater[*Item](ctx, plan, updater)
	if !errors.Is(err, engine.ErrUniqueConstraintViolation) {
		t.Fatalf("expected ErrUniqueConstraintViolation, got %v", err)
	}

	codeIdx, _ := itemTable.IndexByName("Item.Code")
	if found := codeIdx.Lookup(models.EncodeKey("a")); len(found) != 1 {
		t.Fatalf("item 1 should still be indexed under its old key after the failed update")
	}
}

// S6: Query with clone=true hands every caller its own copy — mutating one
// result never leaks into the index or into a second query's results.
func TestQueryCloning(t *testing.T) {
	ctx, tables := schema(t)

	if err := engine.ExecuteInsert(ctx, &Customer{ID: 20, Name: "original"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	customerTable := mustTable(t, tables, "Customer")
	plan := directors.NewFilterPlan(customerTable, func(c *Customer) bool { return c.ID == 20 })

	results, err := engine.Query[*Customer](ctx, plan, nil, true)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	results[0].Name = "mutated"

	results2, err := engine.Query[*Customer](ctx, plan, nil, true)
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if results2[0].Name != "original" {
		t.Fatalf("query did not clone: saw %q after mutating a prior result", results2[0].Name)
	}
}
