package admin_test

import (
	"fmt"
	"net/http"
	"testing"

	"petshop_backend/pkg/models"
	"petshop_backend/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	b := newBackOffice(t)

	w := b.doWith(t, http.MethodGet, "/api/admin/categories", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = b.doWith(t, http.MethodGet, "/api/admin/categories", nil, b.headerFor(t, "shopper@example.com", models.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	support := b.headerFor(t, "agent@example.com", models.RoleSupport)
	w = b.doWith(t, http.MethodGet, "/api/admin/categories", nil, support)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = b.doWith(t, http.MethodGet, "/api/admin/tickets", nil, support)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCategoryLifecycle(t *testing.T) {
	b := newBackOffice(t)

	w := b.do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": " Aquarium Supplies ", "sortOrder": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	data(t, w, &category)
	assert.Equal(t, "aquarium-supplies", category.Slug)
	assert.Equal(t, 3, category.SortOrder)
	assert.True(t, category.IsActive)

	w = b.do(t, http.MethodPost, "/api/admin/categories", map[string]string{"name": "Aquarium Supplies"})
	assert.Equal(t, http.StatusConflict, w.Code, "slug is unique")

	path := fmt.Sprintf("/api/admin/categories/%d", category.ID)
	w = b.do(t, http.MethodPut, path, map[string]interface{}{"parentId": category.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.do(t, http.MethodPut, path, map[string]interface{}{"name": "Fish Care", "isActive": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &category)
	assert.Equal(t, "fish-care", category.Slug)
	assert.False(t, category.IsActive)
	assert.Equal(t, 3, category.SortOrder, "omitted fields are kept")

	testutil.CreateProduct(t, b.db, category.ID, "Tank Heater", 1400, 4)
	w = b.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Category still has products", message(t, w))

	empty := testutil.CreateCategory(t, b.db, "Reptiles")
	w = b.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", empty.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = b.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", empty.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryChangesReachStorefront(t *testing.T) {
	b := newBackOffice(t)
	testutil.CreateCategory(t, b.db, "Dog Food")

	w := b.doWith(t, http.MethodGet, "/api/catalog/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = b.do(t, http.MethodPost, "/api/admin/categories", map[string]string{"name": "Cat Food"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = b.doWith(t, http.MethodGet, "/api/catalog/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cat-food", "creating a category drops the cached list")
}

func TestProductCreateAndUpdate(t *testing.T) {
	b := newBackOffice(t)
	category := testutil.CreateCategory(t, b.db, "Bird Care")

	w := b.do(t, http.MethodPost, "/api/admin/products", map[string]interface{}{"name": "Seed Mix", "petType": "BIRD", "price": 120})
	assert.Equal(t, http.StatusBadRequest, w.Code, "categoryId missing")

	w = b.do(t, http.MethodPost, "/api/admin/products", map[string]interface{}{"name": "Seed Mix", "petType": "BIRD", "categoryId": 999, "price": 120})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = b.do(t, http.MethodPost, "/api/admin/products", map[string]interface{}{
		"name": "Seed Mix", "petType": "BIRD", "categoryId": category.ID, "price": 120.456, "inventory": 30, "brand": "Chirpy",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	data(t, w, &product)
	assert.Equal(t, "seed-mix", product.Slug)
	assert.Equal(t, 120.46, product.Price)
	assert.Equal(t, 30, product.Inventory)
	assert.Equal(t, 5, product.LowStockThreshold)

	path := fmt.Sprintf("/api/admin/products/%d", product.ID)
	w = b.do(t, http.MethodPut, path, map[string]interface{}{"price": 99, "petType": "REPTILE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.do(t, http.MethodPut, path, map[string]interface{}{"price": 99})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &product)
	assert.Equal(t, 99.0, product.Price)
	assert.Equal(t, "Chirpy", product.Brand)

	w = b.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, b.db.First(&product, product.ID).Error)
	assert.False(t, product.IsActive)
}

func TestProductListFilters(t *testing.T) {
	b := newBackOffice(t)
	category := testutil.CreateCategory(t, b.db, "Dog Toys")
	testutil.CreateProduct(t, b.db, category.ID, "Squeaky Ball", 150, 2)
	testutil.CreateProduct(t, b.db, category.ID, "Rope Tug", 250, 40)

	var products []models.Product
	w := b.do(t, http.MethodGet, "/api/admin/products?lowStock=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := data(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Squeaky Ball", products[0].Name)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 1, env.Meta.Total)

	w = b.do(t, http.MethodGet, "/api/admin/products?q=rope", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Rope Tug", products[0].Name)

	w = b.do(t, http.MethodGet, "/api/admin/products?category=toys", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustInventory(t *testing.T) {
	b := newBackOffice(t)
	category := testutil.CreateCategory(t, b.db, "Cat Litter")
	product := testutil.CreateProduct(t, b.db, category.ID, "Clumping Litter", 450, 3)
	path := fmt.Sprintf("/api/admin/products/%d/inventory", product.ID)

	w := b.do(t, http.MethodPatch, path, map[string]interface{}{"delta": 7, "reason": "restock"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &product)
	assert.Equal(t, 10, product.Inventory)

	w = b.do(t, http.MethodPatch, path, map[string]interface{}{"delta": -11})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Inventory cannot go below zero", message(t, w))

	w = b.do(t, http.MethodPatch, path, map[string]interface{}{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.do(t, http.MethodPatch, path, map[string]interface{}{"delta": -10})
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &product)
	assert.Zero(t, product.Inventory)

	w = b.do(t, http.MethodPatch, "/api/admin/products/999/inventory", map[string]interface{}{"delta": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductImageUploadRequiresFile(t *testing.T) {
	b := newBackOffice(t)
	category := testutil.CreateCategory(t, b.db, "Grooming")
	product := testutil.CreateProduct(t, b.db, category.ID, "Brush", 199, 10)

	w := b.do(t, http.MethodPost, fmt.Sprintf("/api/admin/products/%d/image", product.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPincodeManagement(t *testing.T) {
	b := newBackOffice(t)

	body := map[string]interface{}{"code": "400001", "city": "Mumbai", "state": "Maharashtra", "deliveryCharge": 0, "deliveryDays": 2}
	w := b.do(t, http.MethodPost, "/api/admin/pincodes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pincode models.Pincode
	data(t, w, &pincode)

	w = b.do(t, http.MethodPost, "/api/admin/pincodes", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = b.do(t, http.MethodPost, "/api/admin/pincodes", map[string]interface{}{"code": "0400", "city": "X", "state": "Y", "deliveryCharge": 10, "deliveryDays": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// warm the storefront cache, then change the charge
	w = b.doWith(t, http.MethodGet, "/api/catalog/pincodes/400001", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deliveryCharge":0`)

	body["deliveryCharge"] = 30
	w = b.do(t, http.MethodPut, fmt.Sprintf("/api/admin/pincodes/%d", pincode.ID), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = b.doWith(t, http.MethodGet, "/api/catalog/pincodes/400001", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deliveryCharge":30`)

	var listed []models.Pincode
	w = b.do(t, http.MethodGet, "/api/admin/pincodes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &listed)
	assert.Len(t, listed, 1)

	w = b.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/pincodes/%d", pincode.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = b.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/pincodes/%d", pincode.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
