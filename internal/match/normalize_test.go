package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"orderId", "orderid"},
		{"ORDERID", "orderid"},
		{"XMLParser", "xmlparser"},
		{"getHTTPResponse", "gethttpresponse"},
		{"PRICE_CENTS", "pricecents"},
		{"", ""},
		{"A", "a"},
		{"order_item-ID", "orderitemid"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	assert.Equal(t, []string{"get", "http", "response"}, TokenizeIdent("getHTTPResponse"))
	assert.Equal(t, []string{"send", "email", "2"}, TokenizeIdent("send-email~2"))
	assert.Nil(t, TokenizeIdent(""))
}

func TestSnake(t *testing.T) {
	tests := map[string]string{
		"createPost":    "create_post",
		"send-email":    "send_email",
		"XMLParser":     "xml_parser",
		"user_profiles": "user_profiles",
		"create-post~2": "create_post_2",
		"2fa":           "_2fa",
	}

	for in, want := range tests {
		assert.Equal(t, want, Snake(in), in)
	}
}

func TestPascal(t *testing.T) {
	tests := map[string]string{
		"user_profiles": "UserProfiles",
		"order":         "Order",
		"NewPost":       "NewPost",
		"api-key":       "ApiKey",
	}

	for in, want := range tests {
		assert.Equal(t, want, Pascal(in), in)
	}
}

func TestKebab(t *testing.T) {
	assert.Equal(t, "send-email", Kebab("send_email"))
	assert.Equal(t, "create-post", Kebab("createPost"))
}
