package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/storage"
)

const reportDir = "reports"

var reportHeader = []string{
	"reference", "date", "customer_name", "customer_address",
	"product", "category", "quantity", "unit_price", "total_price",
}

// Export describes a written report file.
type Export struct {
	Path  string `json:"path"`
	URL   string `json:"url"`
	Disk  string `json:"disk"`
	Rows  int    `json:"rows"`
	Bytes int    `json:"bytes"`
}

type orderLister interface {
	ListOrders(ctx context.Context, q OrderQuery, who Identity) ([]models.Order, error)
}

// ReportService renders ledger extracts to the configured storage disk.
type ReportService struct {
	orders orderLister
	disk   storage.Disk
	loc    *time.Location
	now    func() time.Time
}

func NewReportService(orders orderLister, disk storage.Disk, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{orders: orders, disk: disk, loc: loc, now: time.Now}
}

// ExportOrders writes the orders matching q as CSV and returns where it went.
func (s *ReportService) ExportOrders(ctx context.Context, q OrderQuery, who Identity) (Export, error) {
	if err := requireAdmin(who); err != nil {
		return Export{}, err
	}

	orders, err := s.orders.ListOrders(ctx, q, who)
	if err != nil {
		return Export{}, err
	}

	data, err := s.render(orders)
	if err != nil {
		return Export{}, err
	}

	path := fmt.Sprintf("%s/orders-%s-%s.csv", reportDir, s.now().In(s.loc).Format("20060102-150405"), uuid.NewString()[:8])
	if err := s.disk.Put(ctx, path, data, "text/csv"); err != nil {
		logger.WithCtx(ctx).Error("report upload failed", "path", path, "disk", s.disk.Name(), "error", err)
		return Export{}, &Error{Kind: KindStorageUnavailable, Message: "report storage unavailable", Err: err}
	}

	logger.WithCtx(ctx).Info("orders exported", "path", path, "rows", len(orders), "disk", s.disk.Name())
	return Export{Path: path, URL: s.disk.URL(path), Disk: s.disk.Name(), Rows: len(orders), Bytes: len(data)}, nil
}

// ListExports returns previously written report paths.
func (s *ReportService) ListExports(ctx context.Context, who Identity) ([]string, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	files, err := s.disk.Files(ctx, reportDir)
	if err != nil {
		return nil, &Error{Kind: KindStorageUnavailable, Message: "report storage unavailable", Err: err}
	}
	return orEmpty(files), nil
}

func (s *ReportService) render(orders []models.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for _, o := range orders {
		row := []string{
			o.Reference,
			o.PlacedOn().In(s.loc).Format(time.RFC3339),
			o.CustomerName,
			o.CustomerAddress,
			o.ProductName,
			o.Category,
			strconv.Itoa(o.Quantity),
			o.UnitPrice.StringFixed(2),
			o.TotalPrice.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
