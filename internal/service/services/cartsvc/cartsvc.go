package cartsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/imenurepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/cart"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNoSession = errors.New("cart requires an authenticated session")

// DefaultSessionTTL is how long an untouched cart survives.
const DefaultSessionTTL = 2 * time.Hour

// Summary is a read-only snapshot of a session cart.
type Summary struct {
	Lines          []cart.Line
	ItemCount      int
	Total          decimal.Decimal
	RestaurantID   string
	RestaurantName string
}

// CartService keeps one cart per authenticated user.
type CartService struct {
	menu imenurepo.IMenuRepository
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	stopCh   chan struct{}
	stopOnce sync.Once
}

type session struct {
	mu       sync.Mutex
	cart     *cart.Cart
	lastUsed time.Time
	inUse    int
}

// option is a function that configures the CartService.
type option func(*CartService)

// MustNewCartService creates a new CartService.
func MustNewCartService(opts ...option) *CartService {
	s := &CartService{
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*session),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.menu == nil {
		panic("cartsvc: a menu repository is required")
	}

	return s
}

// WithMenuRepository sets the repository used to resolve dishes added to a cart.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMenuRepository(repo imenurepo.IMenuRepository) option {
	return func(s *CartService) {
		s.menu = repo
	}
}

// WithSessionTTL sets how long an idle cart is kept. Zero keeps carts forever.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSessionTTL(ttl time.Duration) option {
	return func(s *CartService) {
		s.ttl = ttl
	}
}

// WithCart runs fn on the user's cart while holding it exclusively.
func (s *CartService) WithCart(ctx context.Context, userID string, fn func(c *cart.Cart) error) error {
	if userID == "" {
		return ErrNoSession
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sess := s.acquire(userID)
	defer s.release(sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return fn(sess.cart)
}

// Get returns the current contents of the user's cart.
func (s *CartService) Get(ctx context.Context, userID string) (Summary, error) {
	return s.mutate(ctx, userID, func(*cart.Cart) error { return nil })
}

// AddItem resolves the dish and adds qty of it. A dish from another restaurant is rejected
// with an error wrapping cart.ErrCrossRestaurantConflict and the cart is left as it was.
func (s *CartService) AddItem(ctx context.Context, userID, itemID string, qty int) (Summary, error) {
	ctx, span := otel.Tracer("cartsvc").Start(ctx, "CartService.AddItem")
	defer span.End()
	span.SetAttributes(attribute.String("menu_item.id", itemID))

	if userID == "" {
		return Summary{}, ErrNoSession
	}

	item, err := s.menu.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, imenurepo.ErrMenuItemNotFound) {
			return Summary{}, err
		}

		return Summary{}, fmt.Errorf("failed to get menu item: %w", err)
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.AddItem(item, qty)
	})
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (Summary, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.UpdateQuantity(itemID, qty)

		return nil
	})
}

func (s *CartService) Increment(ctx context.Context, userID, itemID string) (Summary, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Increment(itemID)

		return nil
	})
}

func (s *CartService) Decrement(ctx context.Context, userID, itemID string) (Summary, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Decrement(itemID)

		return nil
	})
}

func (s *CartService) Remove(ctx context.Context, userID, itemID string) (Summary, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Remove(itemID)

		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID string) (Summary, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Clear()

		return nil
	})
}

func (s *CartService) mutate(ctx context.Context, userID string, fn func(c *cart.Cart) error) (Summary, error) {
	var summary Summary
	err := s.WithCart(ctx, userID, func(c *cart.Cart) error {
		err := fn(c)
		summary = summarize(c)

		return err
	})

	return summary, err
}

func summarize(c *cart.Cart) Summary {
	restaurantID, _ := c.RestaurantID()

	return Summary{
		Lines:          c.Lines(),
		ItemCount:      c.ItemCount(),
		Total:          c.Total(),
		RestaurantID:   restaurantID,
		RestaurantName: c.RestaurantName(),
	}
}

func (s *CartService) acquire(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{cart: cart.New()}
		s.sessions[userID] = sess
	}
	sess.inUse++
	sess.lastUsed = s.now()

	return sess
}

func (s *CartService) release(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.inUse--
	sess.lastUsed = s.now()
}

// Start evicts idle carts until ctx is cancelled or Stop is called.
func (s *CartService) Start(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Cart sweeper started", "session_ttl", s.ttl)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Cart sweeper shutting down")

			return
		case <-s.stopCh:
			slog.Info("Cart sweeper stopped")

			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				slog.Debug("Evicted idle carts", "count", n)
			}
		}
	}
}

// Stop stops the sweeper.
func (s *CartService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *CartService) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := s.now().Add(-s.ttl)
	evicted := 0
	for userID, sess := range s.sessions {
		if sess.inUse == 0 && sess.lastUsed.Before(deadline) {
			delete(s.sessions, userID)
			evicted++
		}
	}

	return evicted
}
