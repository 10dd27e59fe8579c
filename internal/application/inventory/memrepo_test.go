package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/domain/shared"
)

// memStore is an in-memory backing store shared by the fake repositories.
// Reads hand out copies and Save writes copies back, so a rolled-back
// transaction never leaks partial mutations into the store.
type memStore struct {
	products    map[uuid.UUID]*catalog.Product
	byExternal  map[string]uuid.UUID
	inventories map[uuid.UUID]*inventory.Inventory // keyed by product id
	logs        []inventory.InventoryLog
	orders      map[uuid.UUID]*order.Order
}

func newMemStore() *memStore {
	return &memStore{
		products:    make(map[uuid.UUID]*catalog.Product),
		byExternal:  make(map[string]uuid.UUID),
		inventories: make(map[uuid.UUID]*inventory.Inventory),
		orders:      make(map[uuid.UUID]*order.Order),
	}
}

func (s *memStore) ProductRepo() catalog.ProductRepository       { return &memProductRepo{s} }
func (s *memStore) InventoryRepo() inventory.InventoryRepository { return &memInventoryRepo{s} }
func (s *memStore) LogRepo() inventory.InventoryLogRepository    { return &memLogRepo{s} }
func (s *memStore) OrderRepo() order.OrderRepository             { return &memOrderRepo{s} }

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.byExternal {
		cp.byExternal[k] = v
	}
	for k, v := range s.inventories {
		cp.inventories[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	cp.logs = append(cp.logs, s.logs...)
	return cp
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.byExternal = snap.byExternal
	s.inventories = snap.inventories
	s.orders = snap.orders
	s.logs = snap.logs
}

// memScope rolls the store back when the scoped function fails, mirroring
// the real transaction semantics closely enough for rollback assertions.
type memScope struct {
	store *memStore
}

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	snap := s.store.snapshot()
	if err := fn(s.store); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

var _ TransactionScope = (*memScope)(nil)
var _ TransactionalRepositories = (*memStore)(nil)

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) FindByExternalID(_ context.Context, externalID string) (*catalog.Product, error) {
	id, ok := r.store.byExternal[externalID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *r.store.products[id]
	return &cp, nil
}

func (r *memProductRepo) FindByShop(_ context.Context, shopID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	for _, p := range r.store.products {
		if p.ShopID == shopID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

type memInventoryRepo struct{ store *memStore }

func (r *memInventoryRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*inventory.Inventory, error) {
	inv, ok := r.store.inventories[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memInventoryRepo) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.Inventory, error) {
	return r.FindByProduct(ctx, productID)
}

func (r *memInventoryRepo) Save(_ context.Context, inv *inventory.Inventory) error {
	cp := *inv
	r.store.inventories[inv.ProductID] = &cp
	return nil
}

type memLogRepo struct{ store *memStore }

func (r *memLogRepo) Append(_ context.Context, entry *inventory.InventoryLog) error {
	r.store.logs = append(r.store.logs, *entry)
	return nil
}

func (r *memLogRepo) FindByInventory(_ context.Context, inventoryID uuid.UUID) ([]inventory.InventoryLog, error) {
	var entries []inventory.InventoryLog
	for _, l := range r.store.logs {
		if l.InventoryID == inventoryID {
			entries = append(entries, l)
		}
	}
	return entries, nil
}

func (r *memLogRepo) SumDeltas(_ context.Context, inventoryID uuid.UUID) (int, error) {
	sum := 0
	for _, l := range r.store.logs {
		if l.InventoryID == inventoryID {
			sum += l.Delta
		}
	}
	return sum, nil
}

type memOrderRepo struct{ store *memStore }

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) FindByShop(_ context.Context, shopID uuid.UUID) ([]order.Order, error) {
	var orders []order.Order
	for _, o := range r.store.orders {
		if o.ShopID == shopID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *memOrderRepo) FindByShopSince(_ context.Context, shopID uuid.UUID, since time.Time) ([]order.Order, error) {
	var orders []order.Order
	for _, o := range r.store.orders {
		if o.ShopID == shopID && !o.CreatedAt.Before(since) {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *memOrderRepo) FindByBuyer(_ context.Context, buyerID uuid.UUID) ([]order.Order, error) {
	var orders []order.Order
	for _, o := range r.store.orders {
		if o.BuyerID == buyerID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	cp := *o
	r.store.orders[o.ID] = &cp
	return nil
}

// captureNotifier records everything published for assertions
type captureNotifier struct {
	mu        sync.Mutex
	published []capturedNote
}

type capturedNote struct {
	Channel string
	Note    shared.Notification
}

func (c *captureNotifier) Publish(_ context.Context, channel string, n shared.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, capturedNote{Channel: channel, Note: n})
}

func (c *captureNotifier) byKind(kind string) []capturedNote {
	c.mu.Lock()
	defer c.mu.Unlock()
	var notes []capturedNote
	for _, n := range c.published {
		if n.Note.Kind == kind {
			notes = append(notes, n)
		}
	}
	return notes
}

func seedProduct(t *testing.T, store *memStore, shopID uuid.UUID, name string, stock int) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(shopID, "SKU-"+name, name,
		decimal.NewFromInt(10), decimal.NewFromInt(5), stock)
	require.NoError(t, err)
	p.SetExternalID("ext-" + name)
	store.products[p.ID] = p
	store.byExternal["ext-"+name] = p.ID

	inv, err := inventory.NewInventory(p.ID, stock)
	require.NoError(t, err)
	store.inventories[p.ID] = inv

	return p
}
