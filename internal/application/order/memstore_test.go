package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/sellerops/backend/internal/application/inventory"
	"github.com/sellerops/backend/internal/domain/catalog"
	invdomain "github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/domain/shared"
)

// memStore is an in-memory store backing the fake repositories. Reads hand
// out copies and Save writes copies back; memScope snapshots the maps before
// each scoped function so a failed transaction rolls fully back.
type memStore struct {
	shops       map[uuid.UUID]*catalog.Shop
	products    map[uuid.UUID]*catalog.Product
	byExternal  map[string]uuid.UUID
	inventories map[uuid.UUID]*invdomain.Inventory // keyed by product id
	logs        []invdomain.InventoryLog
	orders      map[uuid.UUID]*order.Order
}

func newMemStore() *memStore {
	return &memStore{
		shops:       make(map[uuid.UUID]*catalog.Shop),
		products:    make(map[uuid.UUID]*catalog.Product),
		byExternal:  make(map[string]uuid.UUID),
		inventories: make(map[uuid.UUID]*invdomain.Inventory),
		orders:      make(map[uuid.UUID]*order.Order),
	}
}

func (s *memStore) ProductRepo() catalog.ProductRepository       { return &memProductRepo{s} }
func (s *memStore) InventoryRepo() invdomain.InventoryRepository { return &memInventoryRepo{s} }
func (s *memStore) LogRepo() invdomain.InventoryLogRepository    { return &memLogRepo{s} }
func (s *memStore) OrderRepo() order.OrderRepository             { return &memOrderRepo{s} }
func (s *memStore) ShopRepo() catalog.ShopRepository             { return &memShopRepo{s} }

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for k, v := range s.shops {
		cp.shops[k] = v
	}
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
	s.shops = snap.shops
	s.products = snap.products
	s.byExternal = snap.byExternal
	s.inventories = snap.inventories
	s.orders = snap.orders
	s.logs = snap.logs
}

type memScope struct {
	store *memStore
}

func (s *memScope) Execute(_ context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	snap := s.store.snapshot()
	if err := fn(s.store); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

var _ appinv.TransactionScope = (*memScope)(nil)
var _ appinv.TransactionalRepositories = (*memStore)(nil)

type memShopRepo struct{ store *memStore }

func (r *memShopRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Shop, error) {
	s, ok := r.store.shops[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memShopRepo) FindByOwnerAndPlatform(_ context.Context, ownerID uuid.UUID, platform string) (*catalog.Shop, error) {
	for _, s := range r.store.shops {
		if s.OwnerID == ownerID && s.Platform == platform {
			cp := *s
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memShopRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]catalog.Shop, error) {
	var shops []catalog.Shop
	for _, s := range r.store.shops {
		if s.OwnerID == ownerID {
			shops = append(shops, *s)
		}
	}
	return shops, nil
}

func (r *memShopRepo) Save(_ context.Context, s *catalog.Shop) error {
	cp := *s
	r.store.shops[s.ID] = &cp
	return nil
}

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

func (r *memInventoryRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*invdomain.Inventory, error) {
	inv, ok := r.store.inventories[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memInventoryRepo) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*invdomain.Inventory, error) {
	return r.FindByProduct(ctx, productID)
}

func (r *memInventoryRepo) Save(_ context.Context, inv *invdomain.Inventory) error {
	cp := *inv
	r.store.inventories[inv.ProductID] = &cp
	return nil
}

type memLogRepo struct{ store *memStore }

func (r *memLogRepo) Append(_ context.Context, entry *invdomain.InventoryLog) error {
	r.store.logs = append(r.store.logs, *entry)
	return nil
}

func (r *memLogRepo) FindByInventory(_ context.Context, inventoryID uuid.UUID) ([]invdomain.InventoryLog, error) {
	var entries []invdomain.InventoryLog
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

func seedShop(t *testing.T, store *memStore, ownerID uuid.UUID, name string) *catalog.Shop {
	t.Helper()
	s, err := catalog.NewShop(ownerID, "shopee", name)
	require.NoError(t, err)
	store.shops[s.ID] = s
	return s
}

func seedProduct(t *testing.T, store *memStore, shopID uuid.UUID, name string, price int64, stock int) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(shopID, "SKU-"+name, name,
		decimal.NewFromInt(price), decimal.NewFromInt(5), stock)
	require.NoError(t, err)
	p.SetExternalID("ext-" + name)
	store.products[p.ID] = p
	store.byExternal["ext-"+name] = p.ID

	inv, err := invdomain.NewInventory(p.ID, stock)
	require.NoError(t, err)
	store.inventories[p.ID] = inv

	return p
}
