package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/services/shop-service/models"
	"github.com/yashrajoria/stayshop/services/shop-service/repository"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Catalog is one page of the product listing.
type Catalog struct {
	Products   []models.Product `json:"products"`
	Categories []string         `json:"categories"`
	Category   string           `json:"category,omitempty"`
}

// ProductInput is the raw admin form. Empty fields keep the current value on
// edit.
type ProductInput struct {
	Name        string
	Category    string
	Price       string
	Stock       string
	ImageURL    string
	Description string
}

// Receipt describes a completed checkout.
type Receipt struct {
	Orders  []*models.Order
	Summary cart.Summary
}

// ShopService defines the shop's business operations.
type ShopService interface {
	ListProducts(ctx context.Context, category string) (*Catalog, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	AddToCart(ctx context.Context, c *cart.Cart, productID uint, quantity int) (*cart.LineItem, error)
	UpdateCart(ctx context.Context, c *cart.Cart, productID uint, delta int) error
	CustomerOrders(ctx context.Context, email string) ([]models.Order, error)
	Checkout(ctx context.Context, c *cart.Cart, customer cart.Customer) (*Receipt, error)
	AdminOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type shopServiceImpl struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	publisher events.Publisher
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger
	now       func() time.Time
}

// NewShopService wires the shop operations. metrics may be nil.
func NewShopService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	publisher events.Publisher,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) ShopService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &shopServiceImpl{
		products:  products,
		orders:    orders,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *shopServiceImpl) ListProducts(ctx context.Context, category string) (*Catalog, error) {
	category = strings.TrimSpace(category)
	products, err := s.products.FindAll(ctx, category)
	if err != nil {
		return nil, err
	}
	cats, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &Catalog{Products: products, Categories: cats, Category: category}, nil
}

func (s *shopServiceImpl) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// AddToCart adds quantity units, refusing to hold more than the product's
// current stock.
func (s *shopServiceImpl) AddToCart(ctx context.Context, c *cart.Cart, productID uint, quantity int) (*cart.LineItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	item, err := s.products.FindItem(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !fits(c.Held(productID), quantity, item.Stock) {
		return nil, repository.ErrOutOfStock
	}
	return c.Add(ctx, s.products, productID, quantity, nil)
}

// UpdateCart applies delta to the product's line. Increases are held to the
// same stock limit as AddToCart; decreases always apply.
func (s *shopServiceImpl) UpdateCart(ctx context.Context, c *cart.Cart, productID uint, delta int) error {
	if delta > 0 {
		item, err := s.products.FindItem(ctx, productID)
		if err != nil {
			return err
		}
		if !fits(c.Held(productID), delta, item.Stock) {
			return repository.ErrOutOfStock
		}
	}
	c.AdjustQuantity(productID, delta)
	return nil
}

func fits(held, more, stock int) bool {
	return more <= stock && held <= stock-more
}

func (s *shopServiceImpl) CustomerOrders(ctx context.Context, email string) ([]models.Order, error) {
	if strings.TrimSpace(email) == "" {
		return []models.Order{}, nil
	}
	return s.orders.ListByCustomer(ctx, email)
}

// Checkout persists one order per line and empties the cart.
func (s *shopServiceImpl) Checkout(ctx context.Context, c *cart.Cart, customer cart.Customer) (*Receipt, error) {
	if c.Len() == 0 {
		s.metric(s.metrics.RecordCount(ctx, awspkg.MetricCheckoutRefused, map[string]string{"Service": "shop-service"}))
		return nil, cart.ErrEmpty
	}

	store := &shopOrderStore{repo: s.orders}
	if _, err := cart.Checkout(ctx, store, c.Items, customer, s.now()); err != nil {
		s.logger.Warn("checkout failed", zap.String("email", customer.Email), zap.Error(err))
		return nil, err
	}
	summary := cart.ComputeTotals(c.Items)
	c.Clear()

	for _, o := range store.created {
		s.publish(ctx, EventOrderCreated, o.ID, models.OrderCreatedEvent{
			OrderID:       o.ID,
			ProductID:     o.ProductID,
			ProductName:   o.ProductName,
			CustomerName:  o.CustomerName,
			CustomerEmail: o.CustomerEmail,
			Quantity:      o.Quantity,
			TotalPrice:    o.TotalPrice,
		})
	}
	s.metric(s.metrics.RecordCheckout(ctx, "shop-service", len(store.created)))

	s.logger.Info("checkout completed",
		zap.String("email", customer.Email),
		zap.Int("orders", len(store.created)),
		zap.String("total", summary.Total.StringFixed(2)))

	return &Receipt{Orders: store.created, Summary: summary}, nil
}

// metric logs a metrics error. Metrics never fail a request.
func (s *shopServiceImpl) metric(err error) {
	if err != nil {
		s.logger.Debug("metric not recorded", zap.Error(err))
	}
}

func (s *shopServiceImpl) AdminOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *shopServiceImpl) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next, err := cart.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventOrderStatusChanged, o.ID, models.OrderStatusEvent{
		OrderID:       o.ID,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
	})
	return o, nil
}

// CreateProduct stores a product from the admin form. An unparsable price or
// stock becomes 0.
func (s *shopServiceImpl) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		Name:        defaultString(in.Name, "Unnamed"),
		Category:    defaultString(in.Category, "General"),
		Price:       parsePrice(in.Price, decimal.Zero),
		Stock:       parseStock(in.Stock, 0),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Product created", zap.Uint("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *shopServiceImpl) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = defaultString(in.Name, p.Name)
	p.Category = defaultString(in.Category, p.Category)
	p.Price = parsePrice(in.Price, p.Price)
	p.Stock = parseStock(in.Stock, p.Stock)
	p.ImageURL = defaultString(in.ImageURL, p.ImageURL)
	p.Description = defaultString(in.Description, p.Description)

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Product updated", zap.Uint("product_id", p.ID))
	return p, nil
}

func (s *shopServiceImpl) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *shopServiceImpl) publish(ctx context.Context, eventType string, id uint, payload any) {
	if err := s.publisher.Publish(ctx, eventType, strconv.FormatUint(uint64(id), 10), payload); err != nil {
		s.logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.Uint("id", id), zap.Error(err))
	}
}

func parsePrice(v string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil || d.IsNegative() {
		return fallback
	}
	return d.Round(2)
}

func parseStock(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func defaultString(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

// shopOrderStore adapts the order repository to cart.OrderStore.
type shopOrderStore struct {
	repo    repository.OrderRepository
	created []*models.Order
}

func (s *shopOrderStore) CreateOrders(ctx context.Context, orders []*cart.Order) error {
	rows := make([]*models.Order, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, models.OrderFromCart(o))
	}
	if err := s.repo.CreateAll(ctx, rows); err != nil {
		return err
	}
	for i, o := range rows {
		orders[i].ID = o.ID
	}
	s.created = rows
	return nil
}
