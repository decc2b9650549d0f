package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/metrics"
	"github.com/shashiranjanraj/stockroom/pkg/tracing"
	"github.com/shashiranjanraj/stockroom/pkg/validate"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PlaceOrderInput is a customer's request to buy a quantity of a product.
// Price and total are never taken from the caller.
type PlaceOrderInput struct {
	CustomerName    string `json:"customerName"    validate:"nullable,max=255"`
	CustomerAddress string `json:"customerAddress" validate:"nullable,max=1000"`
	ProductName     string `json:"productName"     validate:"required,max=255"`
	Category        string `json:"category"        validate:"required,max=255"`
	Quantity        int    `json:"quantity"        validate:"gte=1"`
	Date            string `json:"date"            validate:"nullable,date"`
}

// Placement is the committed order and the stock left after it.
type Placement struct {
	Order          models.Order `json:"order"`
	RemainingStock int          `json:"remainingStock"`
}

// OrderQuery filters ListOrders. Date is a calendar day (YYYY-MM-DD) in the
// service's location.
type OrderQuery struct {
	Search     string `json:"search"   validate:"nullable,max=255"`
	Category   string `json:"category" validate:"nullable,max=255"`
	Date       string `json:"date"     validate:"nullable,date"`
	CustomerID *uint  `json:"customerId,omitempty"`
}

// FulfillmentOptions tunes a FulfillmentService.
type FulfillmentOptions struct {
	// ConflictRetries is how many times a placement that lost a stock race
	// is re-run against fresh state before Conflict is returned.
	ConflictRetries int
	Location        *time.Location
	Now             func() time.Time
	Invalidator     Invalidator
}

// ledgerReader is the read side of the order ledger.
type ledgerReader interface {
	List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, error)
}

// FulfillmentService places orders against available stock and reads the
// ledger back.
type FulfillmentService struct {
	uow        repositories.UnitOfWork
	ledger     ledgerReader
	profiles   profileFinder
	retries    int
	loc        *time.Location
	now        func() time.Time
	invalidate Invalidator
	tracer     trace.Tracer
}

func NewFulfillmentService(uow repositories.UnitOfWork, ledger ledgerReader, profiles profileFinder, opts FulfillmentOptions) *FulfillmentService {
	s := &FulfillmentService{
		uow:        uow,
		ledger:     ledger,
		profiles:   profiles,
		retries:    opts.ConflictRetries,
		loc:        opts.Location,
		now:        opts.Now,
		invalidate: opts.Invalidator,
		tracer:     tracing.Tracer("stockroom/fulfillment"),
	}
	if s.retries < 0 {
		s.retries = 0
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.invalidate == nil {
		s.invalidate = noopInvalidator{}
	}
	return s
}

// PlaceOrder validates in, then atomically checks stock, decrements it and
// appends the order. Either both writes commit or neither does.
func (s *FulfillmentService) PlaceOrder(ctx context.Context, in PlaceOrderInput, who Identity) (Placement, error) {
	ctx, span := s.tracer.Start(ctx, "fulfillment.place_order", trace.WithAttributes(
		attribute.String("order.product", in.ProductName),
		attribute.Int("order.quantity", in.Quantity),
	))
	defer span.End()

	placement, err := s.placeOrder(ctx, in, who)

	outcome := "placed"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		tracing.RecordError(span, err)
	} else {
		span.SetAttributes(
			attribute.String("order.reference", placement.Order.Reference),
			attribute.Int("stock.remaining", placement.RemainingStock),
		)
		metrics.OrderUnits.Add(float64(placement.Order.Quantity))
		s.invalidate.Invalidate(ctx)

		logger.WithCtx(ctx).Info("order placed",
			"reference", placement.Order.Reference,
			"product", placement.Order.ProductName,
			"quantity", placement.Order.Quantity,
			"remaining_stock", placement.RemainingStock,
		)
	}
	metrics.OrdersPlaced.WithLabelValues(outcome).Inc()

	return placement, err
}

func (s *FulfillmentService) placeOrder(ctx context.Context, in PlaceOrderInput, who Identity) (Placement, error) {
	if err := requireAuthenticated(who); err != nil {
		return Placement{}, err
	}

	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Category = strings.TrimSpace(in.Category)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return Placement{}, validationError(errs)
	}

	date, err := s.orderDate(in.Date)
	if err != nil {
		return Placement{}, validationError(map[string]string{"date": "The date is not a valid date."})
	}

	if err := s.fillCustomer(ctx, &in, who); err != nil {
		return Placement{}, err
	}

	var placement Placement
	for attempt := 0; ; attempt++ {
		placement, err = s.attempt(ctx, in, who, date)
		if !errors.Is(err, repositories.ErrStockConflict) {
			return placement, err
		}

		metrics.StockConflicts.Inc()
		logger.WithCtx(ctx).Warn("stock conflict during placement",
			"product", in.ProductName, "quantity", in.Quantity, "attempt", attempt+1)

		if attempt >= s.retries {
			return Placement{}, &Error{
				Kind:    KindConflict,
				Message: "stock changed while the order was being placed; please retry",
				Err:     err,
			}
		}
	}
}

func (s *FulfillmentService) attempt(ctx context.Context, in PlaceOrderInput, who Identity, date time.Time) (Placement, error) {
	var placement Placement

	err := s.uow.Inventory(ctx, func(inv repositories.Inventory) error {
		product, err := inv.ProductByName(ctx, in.ProductName)
		if err != nil {
			return storageError(ctx, "product", err)
		}

		if !strings.EqualFold(in.Category, product.CategoryName()) {
			return validationError(map[string]string{
				"category": fmt.Sprintf("The category does not match product %q.", product.Name),
			})
		}

		if !product.InStock() {
			return &Error{Kind: KindOutOfStock, Message: fmt.Sprintf("%s is out of stock", product.Name)}
		}
		if in.Quantity > product.Stock {
			return &Error{
				Kind:      KindInsufficientStock,
				Message:   fmt.Sprintf("only %d units available", product.Stock),
				Available: product.Stock,
			}
		}

		if err := inv.ConditionalDecrementStock(ctx, product.ID, in.Quantity, in.Quantity); err != nil {
			if errors.Is(err, repositories.ErrStockConflict) {
				return err
			}
			return storageError(ctx, "product", err)
		}

		order := &models.Order{
			Reference:       uuid.NewString(),
			CustomerName:    in.CustomerName,
			CustomerAddress: in.CustomerAddress,
			ProductID:       &product.ID,
			ProductName:     product.Name,
			Category:        product.CategoryName(),
			Quantity:        in.Quantity,
			UnitPrice:       product.Price,
			TotalPrice:      product.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
			Date:            date,
		}
		if who.UserID != 0 {
			id := who.UserID
			order.CustomerID = &id
		}

		if err := inv.AppendOrder(ctx, order); err != nil {
			return storageError(ctx, "order", err)
		}

		remaining, err := inv.StockOf(ctx, product.ID)
		if err != nil {
			return storageError(ctx, "product", err)
		}

		placement = Placement{Order: *order, RemainingStock: remaining}
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) || errors.Is(err, repositories.ErrStockConflict) {
			return Placement{}, err
		}
		// commit failure
		return Placement{}, storageError(ctx, "order", err)
	}
	return placement, nil
}

// fillCustomer defaults the customer name and address from the caller's
// profile when the request leaves them empty.
func (s *FulfillmentService) fillCustomer(ctx context.Context, in *PlaceOrderInput, who Identity) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerAddress = strings.TrimSpace(in.CustomerAddress)
	if (in.CustomerName != "" && in.CustomerAddress != "") || s.profiles == nil {
		return nil
	}

	user, err := s.profiles.FindByID(ctx, who.UserID)
	if err != nil {
		return storageError(ctx, "user", err)
	}
	if in.CustomerName == "" {
		in.CustomerName = user.Name
	}
	if in.CustomerAddress == "" {
		in.CustomerAddress = user.Address
	}
	return nil
}

// orderDate resolves the business date. A bare calendar date means midnight
// of that day in the service location; an empty one means now.
func (s *FulfillmentService) orderDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.now().UTC(), nil
	}
	t, dateOnly, err := validate.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	}
	return t.UTC(), nil
}

// ListOrders returns orders matching q, newest first. Customers only ever
// see their own orders.
func (s *FulfillmentService) ListOrders(ctx context.Context, q OrderQuery, who Identity) ([]models.Order, error) {
	if err := requireAuthenticated(who); err != nil {
		return nil, err
	}
	if errs := validate.Struct(q); validate.HasErrors(errs) {
		return nil, validationError(errs)
	}

	filter := repositories.OrderFilter{
		Search:     q.Search,
		Category:   strings.TrimSpace(q.Category),
		CustomerID: q.CustomerID,
	}
	if !who.IsAdmin() {
		id := who.UserID
		filter.CustomerID = &id
	}

	if q.Date != "" {
		day, dateOnly, err := validate.ParseDate(q.Date)
		if err != nil {
			return nil, validationError(map[string]string{"date": "The date is not a valid date."})
		}
		if !dateOnly {
			day = day.In(s.loc)
		}
		from, to := dayBounds(day, s.loc)
		filter.From, filter.To = &from, &to
	}

	orders, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, storageError(ctx, "orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// dayBounds returns the first and last instant of t's calendar date in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
