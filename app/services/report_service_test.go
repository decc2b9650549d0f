package services_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/storage"
)

func TestReports_ExportOrders(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	hammer := f.product(t, "Hammer", 10, "18.50")
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	customer := f.user(t, "ann@example.com", models.RoleCustomer)
	f.appendOrder(t, widget, 4, dashboardNow, &customer.UserID)
	f.appendOrder(t, hammer, 1, dashboardNow.Add(time.Hour), &customer.UserID)

	disk, err := storage.NewLocal(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	svc := services.NewReportService(f.fulfillment(services.FulfillmentOptions{Location: time.UTC}), disk, time.UTC)
	ctx := context.Background()

	export, err := svc.ExportOrders(ctx, services.OrderQuery{}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, export.Rows)
	assert.Equal(t, "local", export.Disk)
	assert.True(t, strings.HasPrefix(export.Path, "reports/orders-"))
	assert.Equal(t, "http://files.test/"+export.Path, export.URL)

	data, err := disk.Get(ctx, export.Path)
	require.NoError(t, err)
	assert.Equal(t, len(data), export.Bytes)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "reference", rows[0][0])
	assert.Equal(t, "Hammer", rows[1][4], "newest first")
	assert.Equal(t, "Widget", rows[2][4])
	assert.Equal(t, "4", rows[2][6])
	assert.Equal(t, "20.00", rows[2][8])

	filtered, err := svc.ExportOrders(ctx, services.OrderQuery{Search: "hammer"}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Rows)

	files, err := svc.ListExports(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = svc.ExportOrders(ctx, services.OrderQuery{}, customer)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = svc.ListExports(ctx, customer)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestReports_ListExportsEmpty(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	files, err := services.NewReportService(f.fulfillment(services.FulfillmentOptions{}), disk, nil).ListExports(context.Background(), admin)
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

// brokenDisk fails every write.
type brokenDisk struct{ storage.Disk }

func (brokenDisk) Put(context.Context, string, []byte, string) error { return errors.New("bucket gone") }
func (brokenDisk) Name() string                                       { return "s3" }

func TestReports_StorageFailure(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", models.RoleAdmin)

	svc := services.NewReportService(f.fulfillment(services.FulfillmentOptions{}), brokenDisk{}, time.UTC)
	_, err := svc.ExportOrders(context.Background(), services.OrderQuery{}, admin)
	assert.ErrorIs(t, err, services.ErrStorageUnavailable)
}
