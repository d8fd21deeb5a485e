// Package cart holds the shopper's cart as a local aggregate kept in step
// with the backend. Every mutation is a remote write followed by a full
// refetch-and-replace of local state; a failed remote call never reaches the
// refetch step, so local state stays exactly as it was.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/event"
	apperrors "github.com/openshelf/storefront/pkg/errors"
)

// RemoteCart is the slice of the backend the aggregate mutates against.
type RemoteCart interface {
	GetCart(ctx context.Context) (domain.Cart, error)
	AddCartItem(ctx context.Context, productID, color, size string, quantity int) error
	UpdateCartItem(ctx context.Context, lineID string, quantity int) error
	RemoveCartItem(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
	PlaceOrder(ctx context.Context) (domain.Order, error)
}

// Session gates mutations and identifies the shopper for activity events.
type Session interface {
	Authenticated() bool
	UserID() string
}

// Aggregate owns the local cart state. Mutations are serialized by a mutex
// held across the remote write and the refetch, so a slow response can never
// overwrite the result of a later mutation with stale state. Reads never
// block behind an in-flight mutation.
type Aggregate struct {
	remote  RemoteCart
	session Session
	events  event.Publisher
	logger  *slog.Logger

	mu sync.Mutex // serializes mutations end to end

	stateMu sync.RWMutex
	cart    domain.Cart
}

func New(remote RemoteCart, session Session, events event.Publisher, logger *slog.Logger) *Aggregate {
	if events == nil {
		events = event.Noop{}
	}
	return &Aggregate{remote: remote, session: session, events: events, logger: logger}
}

// Snapshot returns a copy of the current cart.
func (a *Aggregate) Snapshot() domain.Cart {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	out := domain.Cart{
		Lines:     make([]domain.CartLine, len(a.cart.Lines)),
		ItemCount: a.cart.ItemCount,
	}
	copy(out.Lines, a.cart.Lines)
	return out
}

// Total sums unit price times quantity over all lines. Unit prices were
// resolved when each line's snapshot was taken, so a later catalog price
// change does not move the total.
func (a *Aggregate) Total() int64 {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.cart.Total()
}

// ItemCount returns the server-reported item count.
func (a *Aggregate) ItemCount() int {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.cart.ItemCount
}

// Add puts quantity units of the given variant in the cart. When the product
// declares variants, (color, size) must match one of them. Adding the same
// variant twice grows the existing line's quantity on the server; the refetch
// brings back the merged line rather than a duplicate.
func (a *Aggregate) Add(ctx context.Context, product domain.Product, color, size string, quantity int) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if quantity <= 0 {
		return apperrors.InvalidInput("quantity must be positive")
	}
	if len(product.Variants) > 0 && !product.HasVariant(color, size) {
		return apperrors.InvalidVariant("this color and size combination is not available")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.remote.AddCartItem(ctx, product.ID, color, size, quantity); err != nil {
		return err
	}
	if err := a.reconcile(ctx); err != nil {
		return err
	}

	a.events.Publish(ctx, event.TypeCartUpdated, a.session.UserID(), map[string]any{
		"action":     "add",
		"product_id": product.ID,
		"item_count": a.ItemCount(),
	})
	return nil
}

// UpdateQuantity changes the quantity of the line identified by the variant
// key. A quantity of zero or less removes the line.
func (a *Aggregate) UpdateQuantity(ctx context.Context, productID, color, size string, quantity int) error {
	if quantity <= 0 {
		return a.Remove(ctx, productID, color, size)
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	line, err := a.findLine(productID, color, size)
	if err != nil {
		return err
	}
	if err := a.remote.UpdateCartItem(ctx, line.LineID, quantity); err != nil {
		return err
	}
	if err := a.reconcile(ctx); err != nil {
		return err
	}

	a.events.Publish(ctx, event.TypeCartUpdated, a.session.UserID(), map[string]any{
		"action":     "update",
		"product_id": productID,
		"item_count": a.ItemCount(),
	})
	return nil
}

// Remove deletes the line identified by the variant key. The line is looked
// up locally first so a miss costs no round trip.
func (a *Aggregate) Remove(ctx context.Context, productID, color, size string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	line, err := a.findLine(productID, color, size)
	if err != nil {
		return err
	}
	if err := a.remote.RemoveCartItem(ctx, line.LineID); err != nil {
		return err
	}
	if err := a.reconcile(ctx); err != nil {
		return err
	}

	a.events.Publish(ctx, event.TypeCartUpdated, a.session.UserID(), map[string]any{
		"action":     "remove",
		"product_id": productID,
		"item_count": a.ItemCount(),
	})
	return nil
}

// Clear empties the cart remotely then resets local state directly. The
// empty state is known without a refetch.
func (a *Aggregate) Clear(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.remote.ClearCart(ctx); err != nil {
		return err
	}
	a.replace(domain.Cart{})

	a.events.Publish(ctx, event.TypeCartCleared, a.session.UserID(), nil)
	return nil
}

// Checkout places an order from the current cart. The backend empties the
// cart as part of order placement, so local state resets on success.
func (a *Aggregate) Checkout(ctx context.Context) (domain.Order, error) {
	if err := a.requireSession(); err != nil {
		return domain.Order{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.Snapshot().Lines) == 0 {
		return domain.Order{}, apperrors.InvalidInput("your cart is empty")
	}

	order, err := a.remote.PlaceOrder(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	a.replace(domain.Cart{})

	a.events.Publish(ctx, event.TypeOrderPlaced, a.session.UserID(), map[string]any{
		"order_id": order.ID,
		"total":    order.Total,
	})
	return order, nil
}

// Reconcile refetches the cart and replaces local state wholesale. Exposed
// so startup and sign-in can pull the server's view without a mutation.
func (a *Aggregate) Reconcile(ctx context.Context) error {
	if !a.session.Authenticated() {
		a.Reset()
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reconcile(ctx)
}

// Reset drops local state without touching the server. Called on sign-out.
func (a *Aggregate) Reset() {
	a.stateMu.Lock()
	a.cart = domain.Cart{}
	a.stateMu.Unlock()
}

// reconcile must be called with a.mu held. A response that lands after the
// session was cleared is discarded so sign-out cannot resurrect cart state.
func (a *Aggregate) reconcile(ctx context.Context) error {
	fresh, err := a.remote.GetCart(ctx)
	if err != nil {
		return err
	}
	if !a.session.Authenticated() {
		a.logger.Debug("discarding cart refetch, session cleared mid-flight")
		a.Reset()
		return nil
	}
	a.replace(fresh)
	return nil
}

func (a *Aggregate) replace(c domain.Cart) {
	a.stateMu.Lock()
	a.cart = c
	a.stateMu.Unlock()
}

func (a *Aggregate) requireSession() error {
	if !a.session.Authenticated() {
		return apperrors.Unauthorized("please sign in to manage your cart")
	}
	return nil
}

func (a *Aggregate) findLine(productID, color, size string) (domain.CartLine, error) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	idx := a.cart.FindLine(productID, color, size)
	if idx < 0 {
		return domain.CartLine{}, apperrors.NotFound("cart line", productID)
	}
	return a.cart.Lines[idx], nil
}
