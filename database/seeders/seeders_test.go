package seeders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/database/dbtest"
	"github.com/shashiranjanraj/stockroom/database/seeders"
)

func TestRunAllIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ran, err := seeders.RunAll(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, []string{"users", "catalog"}, ran)
	}

	var users, categories, products int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 2, users)
	assert.EqualValues(t, 3, categories)
	assert.EqualValues(t, 6, products)

	var pen models.Product
	require.NoError(t, db.Where("name = ?", "Fountain Pen").First(&pen).Error)
	assert.Equal(t, 0, pen.Stock)
}
