package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingForm struct {
	Title      string `json:"title" binding:"required,max=10"`
	Condition  string `json:"condition" binding:"required,card_condition"`
	PostalCode string `json:"postal_code" binding:"omitempty,fr_postcode"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var form listingForm
		if err := c.ShouldBindJSON(&form); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestValidation_CustomTags(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"valid", `{"title":"Mew","condition":"near_mint","postal_code":"75011"}`, http.StatusOK, ""},
		{"foreign postcode", `{"title":"Mew","condition":"mint","postal_code":"SW1A1AA"}`, http.StatusOK, ""},
		{"unknown condition", `{"title":"Mew","condition":"shiny"}`, http.StatusBadRequest, "condition"},
		{"short french postcode", `{"title":"Mew","condition":"mint","postal_code":"7501"}`, http.StatusBadRequest, "postal_code"},
		{"missing title", `{"condition":"mint"}`, http.StatusBadRequest, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body)))

			require.Equal(t, tt.status, w.Code)
			if tt.field == "" {
				return
			}
			resp := decodeResponse(t, w)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
		})
	}
}

func TestValidation_MalformedJSON(t *testing.T) {
	router := newValidationRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"title":`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
}
