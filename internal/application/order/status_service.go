package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinv "github.com/sellerops/backend/internal/application/inventory"
	"github.com/sellerops/backend/internal/domain/catalog"
	invdomain "github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/domain/shared"
)

// StatusService moves orders through the status machine. A transition that
// takes an order into a cancellation-class status also restores the stock it
// consumed, in the same transaction as the status write.
type StatusService struct {
	orderRepo order.OrderRepository
	shopRepo  catalog.ShopRepository
	scope     appinv.TransactionScope
	mutator   *appinv.StockMutator
	notifier  shared.Notifier
	logger    *zap.Logger
}

// NewStatusService creates a StatusService
func NewStatusService(
	orderRepo order.OrderRepository,
	shopRepo catalog.ShopRepository,
	scope appinv.TransactionScope,
	mutator *appinv.StockMutator,
	notifier shared.Notifier,
	logger *zap.Logger,
) *StatusService {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		orderRepo: orderRepo,
		shopRepo:  shopRepo,
		scope:     scope,
		mutator:   mutator,
		notifier:  notifier,
		logger:    logger,
	}
}

// StatusChange is the order_status_changed notification payload
type StatusChange struct {
	OrderID uuid.UUID `json:"order_id"`
	ShopID  uuid.UUID `json:"shop_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Actor   string    `json:"actor"`
}

// UpdateStatus transitions an order to target on behalf of actor. The
// transition table is actor-scoped; an actor asking for a move their role
// does not allow gets INVALID_TRANSITION listing the moves that are allowed.
func (s *StatusService) UpdateStatus(ctx context.Context, orderID uuid.UUID, actor ActorRef, target order.OrderStatus) (*OrderResponse, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+string(target))
	}

	existing, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, existing, actor); err != nil {
		return nil, err
	}

	var updated *order.Order
	from := existing.Status

	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		// Re-read inside the transaction so concurrent transitions on the
		// same order serialize instead of double-restoring stock.
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status

		if o.RequiresRestoration(target) {
			credits := make([]appinv.StockMutation, 0, len(o.Items))
			for _, item := range o.Items {
				credits = append(credits, appinv.StockMutation{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				})
			}
			reason := invdomain.ReasonOrderCancelled
			if target == order.StatusReturnRefund {
				reason = invdomain.ReasonOrderReturned
			}
			if _, err := s.mutator.Credit(ctx, repos, credits, reason); err != nil {
				return err
			}
		}

		if err := o.TransitionTo(actor.Role, target); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishChanged(ctx, updated, from, target, actor)

	return ToOrderResponse(updated), nil
}

// GetOrder fetches a single order, enforcing the same visibility rules as
// status updates.
func (s *StatusService) GetOrder(ctx context.Context, orderID uuid.UUID, actor ActorRef) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, o, actor); err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// ListShopOrders returns a shop's orders for its owner
func (s *StatusService) ListShopOrders(ctx context.Context, shopID uuid.UUID, actor ActorRef) ([]*OrderResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if actor.Role != order.ActorSeller || shop.OwnerID != actor.UserID {
		return nil, shared.ErrForbidden
	}

	orders, err := s.orderRepo.FindByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	responses := make([]*OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, nil
}

// ListBuyerOrders returns the calling buyer's own orders
func (s *StatusService) ListBuyerOrders(ctx context.Context, actor ActorRef) ([]*OrderResponse, error) {
	orders, err := s.orderRepo.FindByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	responses := make([]*OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, nil
}

// authorize checks the actor may touch this order: a buyer's account email
// must equal the order's customer email, sellers must own the order's shop.
func (s *StatusService) authorize(ctx context.Context, o *order.Order, actor ActorRef) error {
	switch actor.Role {
	case order.ActorBuyer:
		if actor.Email == "" || o.CustomerEmail != actor.Email {
			return shared.ErrForbidden
		}
		return nil
	case order.ActorSeller:
		shop, err := s.shopRepo.FindByID(ctx, o.ShopID)
		if err != nil {
			return err
		}
		if shop.OwnerID != actor.UserID {
			return shared.ErrForbidden
		}
		return nil
	}
	return shared.ErrForbidden
}

// publishChanged fans the committed transition out to the shop channel, the
// buyer's channel, and the broadcast channel.
func (s *StatusService) publishChanged(ctx context.Context, o *order.Order, from, to order.OrderStatus, actor ActorRef) {
	change := StatusChange{
		OrderID: o.ID,
		ShopID:  o.ShopID,
		From:    from.String(),
		To:      to.String(),
		Actor:   string(actor.Role),
	}

	n := shared.NewNotification(shared.KindOrderStatusChanged, change)
	s.notifier.Publish(ctx, shared.ShopChannel(o.ShopID), n)
	s.notifier.Publish(ctx, shared.UserChannel(o.BuyerID), n)
	s.notifier.Publish(ctx, shared.BroadcastChannel, n)

	s.logger.Info("order status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("from", change.From),
		zap.String("to", change.To),
		zap.String("actor", change.Actor),
	)

	o.ClearDomainEvents()
}
