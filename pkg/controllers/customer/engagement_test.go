package customer_test

import (
	"fmt"
	"net/http"
	"testing"

	"petshop_backend/pkg/models"
	"petshop_backend/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	s := newShop(t)
	p := s.product(t, "Salmon Treats", 180, 10)

	review := map[string]interface{}{"productId": p.ID, "rating": 4, "title": " Tasty ", "comment": "My dog loves it"}
	w := s.do(t, http.MethodPost, "/api/customer/reviews", review)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Review
	decodeInto(t, w, "review", &created)
	assert.Equal(t, "Tasty", created.Title)
	assert.False(t, created.IsApproved)
	assert.False(t, created.VerifiedPurchase)

	w = s.do(t, http.MethodPost, "/api/customer/reviews", review)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You have already reviewed this product", decode(t, w)["message"])

	w = s.do(t, http.MethodPost, "/api/customer/reviews", map[string]interface{}{"productId": p.ID, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/customer/reviews", map[string]interface{}{"productId": 9999, "rating": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewMarksVerifiedPurchase(t *testing.T) {
	s := newShop(t)
	p := s.product(t, "Flea Collar", 350, 10)
	s.addToCart(t, p.ID, 1)
	status, order := s.placeOrder(t, s.codOrder(), "")
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, s.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderStatusDelivered).Error)

	w := s.do(t, http.MethodPost, "/api/customer/reviews", map[string]interface{}{"productId": p.ID, "rating": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Review
	decodeInto(t, w, "review", &created)
	assert.True(t, created.VerifiedPurchase)
}

func TestDeleteReviewRecomputesRating(t *testing.T) {
	s := newShop(t)
	p := s.product(t, "Parrot Perch", 260, 10)
	other := testutil.CreateUser(t, s.db, "birdfan@example.com", models.RoleCustomer)

	mine := models.Review{ProductID: p.ID, UserID: s.user.ID, Rating: 1, IsApproved: true}
	theirs := models.Review{ProductID: p.ID, UserID: other.ID, Rating: 5, IsApproved: true}
	require.NoError(t, s.db.Create(&mine).Error)
	require.NoError(t, s.db.Create(&theirs).Error)
	require.NoError(t, s.db.Model(&p).Updates(map[string]interface{}{"rating_average": 3, "rating_count": 2}).Error)

	w := s.do(t, http.MethodDelete, fmt.Sprintf("/api/customer/reviews/%d", theirs.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/customer/reviews/%d", mine.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshed models.Product
	require.NoError(t, s.db.First(&refreshed, p.ID).Error)
	assert.Equal(t, 5.0, refreshed.RatingAverage)
	assert.Equal(t, 1, refreshed.RatingCount)
}

func TestTicketConversation(t *testing.T) {
	s := newShop(t)

	w := s.do(t, http.MethodPost, "/api/customer/tickets", map[string]string{"subject": "Late delivery", "description": "Where is my parcel?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ticket models.Ticket
	decodeInto(t, w, "ticket", &ticket)
	assert.Equal(t, models.PriorityMedium, ticket.Priority)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Regexp(t, `^TKT-\d{4}-\d{4,}$`, ticket.TicketNumber)

	path := fmt.Sprintf("/api/customer/tickets/%d", ticket.ID)
	w = s.doWith(t, http.MethodGet, path, nil, s.otherCustomer(t, "stranger@example.com"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, path+"/messages", map[string]string{"body": "Any update?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// a customer reply reopens a resolved ticket
	require.NoError(t, s.db.Model(&ticket).Update("status", models.TicketStatusResolved).Error)
	w = s.do(t, http.MethodPost, path+"/messages", map[string]string{"body": "Still not here"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, string(models.TicketStatusOpen), decode(t, w)["ticketStatus"])

	require.NoError(t, s.db.Model(&ticket).Update("status", models.TicketStatusClosed).Error)
	w = s.do(t, http.MethodPost, path+"/messages", map[string]string{"body": "Hello?"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Ticket is closed", decode(t, w)["message"])

	w = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded models.Ticket
	decodeInto(t, w, "ticket", &loaded)
	assert.Len(t, loaded.Messages, 2)
}

func TestTicketOrderMustBelongToCustomer(t *testing.T) {
	s := newShop(t)
	p := s.product(t, "Dog Shampoo", 240, 10)
	s.addToCart(t, p.ID, 1)
	_, order := s.placeOrder(t, s.codOrder(), "")

	body := map[string]interface{}{"subject": "Damaged", "description": "Bottle leaked", "orderId": order.ID, "priority": "HIGH"}
	w := s.doWith(t, http.MethodPost, "/api/customer/tickets", body, s.otherCustomer(t, "imposter@example.com"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/customer/tickets", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body["priority"] = "URGENT"
	w = s.do(t, http.MethodPost, "/api/customer/tickets", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketImageUploadWithoutStorage(t *testing.T) {
	s := newShop(t)
	w := s.do(t, http.MethodPost, "/api/customer/tickets", map[string]string{"subject": "Photo", "description": "See attached"})
	require.Equal(t, http.StatusCreated, w.Code)
	var ticket models.Ticket
	decodeInto(t, w, "ticket", &ticket)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/customer/tickets/%d/image", ticket.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "no multipart file")
}

func TestNewsletterSubscribeAndUnsubscribe(t *testing.T) {
	s := newShop(t)

	for i := 0; i < 2; i++ {
		w := s.doWith(t, http.MethodPost, "/api/newsletter/subscribe", map[string]string{"email": "Fan@Example.com"}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var sub models.NewsletterSubscriber
	require.NoError(t, s.db.Where("email = ?", "fan@example.com").First(&sub).Error)
	assert.True(t, sub.IsActive)
	require.NotEmpty(t, sub.Token)

	w := s.doWith(t, http.MethodGet, "/api/newsletter/unsubscribe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doWith(t, http.MethodGet, "/api/newsletter/unsubscribe?token=unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doWith(t, http.MethodGet, "/api/newsletter/unsubscribe?token="+sub.Token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, s.db.First(&sub, sub.ID).Error)
	assert.False(t, sub.IsActive)
	assert.NotNil(t, sub.UnsubscribedAt)

	w = s.doWith(t, http.MethodPost, "/api/newsletter/subscribe", map[string]string{"email": "fan@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resubscribed models.NewsletterSubscriber
	require.NoError(t, s.db.First(&resubscribed, sub.ID).Error)
	assert.True(t, resubscribed.IsActive)
	assert.Nil(t, resubscribed.UnsubscribedAt)

	w = s.doWith(t, http.MethodPost, "/api/newsletter/subscribe", map[string]string{"email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogBrowsing(t *testing.T) {
	s := newShop(t)
	cats := testutil.CreateCategory(t, s.db, "Cat Toys")
	cheap := s.product(t, "Budget Kibble", 199, 10)
	s.product(t, "Gourmet Kibble", 1299, 10)
	mouse := testutil.CreateProduct(t, s.db, cats.ID, "Feather Mouse", 149, 10)
	require.NoError(t, s.db.Model(&mouse).Update("pet_type", models.PetTypeCat).Error)
	hidden := s.product(t, "Retired Kibble", 99, 10)
	require.NoError(t, s.db.Model(&hidden).Update("is_active", false).Error)

	var listed []models.Product
	w := s.doWith(t, http.MethodGet, "/api/catalog/products?sort=price_asc", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeInto(t, w, "products", &listed)
	require.Len(t, listed, 3)
	assert.Equal(t, mouse.ID, listed[0].ID)

	w = s.doWith(t, http.MethodGet, "/api/catalog/products?category=dog-food&q=kibble&maxPrice=500", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, w, "products", &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, cheap.ID, listed[0].ID)

	w = s.doWith(t, http.MethodGet, "/api/catalog/products?petType=cat", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, w, "products", &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, mouse.ID, listed[0].ID)

	w = s.doWith(t, http.MethodGet, "/api/catalog/products?sort=random", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doWith(t, http.MethodGet, "/api/catalog/products/"+cheap.Slug, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.doWith(t, http.MethodGet, "/api/catalog/products/"+hidden.Slug, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doWith(t, http.MethodGet, "/api/catalog/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	decodeInto(t, w, "categories", &categories)
	assert.Len(t, categories, 2)
}

func TestCheckPincode(t *testing.T) {
	s := newShop(t)

	w := s.doWith(t, http.MethodGet, "/api/catalog/pincodes/560001", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["serviceable"])
	assert.EqualValues(t, 49, body["deliveryCharge"])
	assert.EqualValues(t, 999, body["freeDeliveryThreshold"])

	w = s.doWith(t, http.MethodGet, "/api/catalog/pincodes/999999", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["serviceable"])

	w = s.doWith(t, http.MethodGet, "/api/catalog/pincodes/12ab", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
