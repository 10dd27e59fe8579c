package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/interfaces/http/middleware"
)

// setClaims simulates an authenticated request without a real token
func setClaims(c *gin.Context, userID uuid.UUID, email, role string) {
	c.Set(middleware.JWTUserIDKey, userID.String())
	c.Set(middleware.JWTEmailKey, email)
	c.Set(middleware.JWTRoleKey, role)
}

func TestOrderHandler_CheckoutRequiresAuth(t *testing.T) {
	h := NewOrderHandler(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/checkout", strings.NewReader("{}"))

	h.Checkout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_CheckoutRejectsMalformedBody(t *testing.T) {
	h := NewOrderHandler(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/checkout", strings.NewReader("{not json"))
	setClaims(c, uuid.New(), "buyer@example.com", "buyer")

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_BAD_REQUEST")
}

func TestOrderHandler_CheckoutRejectsEmptyCart(t *testing.T) {
	h := NewOrderHandler(nil, nil)

	body := `{"customer_name":"Ada","platform":"shopee","items":[]}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/checkout", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	setClaims(c, uuid.New(), "buyer@example.com", "buyer")

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_UpdateStatusRejectsBadOrderID(t *testing.T) {
	h := NewOrderHandler(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/orders/not-a-uuid/status", strings.NewReader(`{"status":"TO_SHIP"}`))
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	setClaims(c, uuid.New(), "buyer@example.com", "buyer")

	h.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid order ID")
}

func TestOrderHandler_UpdateStatusRequiresAuth(t *testing.T) {
	h := NewOrderHandler(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/status", nil)

	h.UpdateStatus(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorFromContext(t *testing.T) {
	h := NewOrderHandler(nil, nil)

	t.Run("builds actor from claims", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		userID := uuid.New()
		setClaims(c, userID, "seller@example.com", "seller")

		actor, err := h.actorFromContext(c)
		require.NoError(t, err)
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, "seller@example.com", actor.Email)
		assert.Equal(t, order.ActorSeller, actor.Role)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		setClaims(c, uuid.New(), "x@example.com", "admin")

		_, err := h.actorFromContext(c)
		assert.Error(t, err)
	})

	t.Run("rejects missing claims", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, err := h.actorFromContext(c)
		assert.Error(t, err)
	})
}
