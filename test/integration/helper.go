//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试需要一个运行中的API（MySQL + Redis），以及一个后台账号：
//
//	go run ./cmd/createsuperuser -u admin -e admin@example.com -p secreto123
//	TINTAYHOJAS_IT_ADMIN=admin TINTAYHOJAS_IT_PASSWORD=secreto123 go test -tags integration ./test/integration/...

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	testPassword = "Test1234"
)

// Response 统一响应结构
type Response struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Redirect string          `json:"redirect"`
}

// Decode 把data解析到v
func (r *Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v), "解析data失败: %s", string(r.Data))
}

type UserData struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

type LoginData struct {
	User         UserData `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

type IDData struct {
	ID uint `json:"id"`
}

type BookData struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Price   string `json:"price"`
	Stock   int    `json:"stock"`
	InStock bool   `json:"in_stock"`
}

type PageData struct {
	List     json.RawMessage `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type CartItemData struct {
	ID       uint   `json:"id"`
	BookID   uint   `json:"book_id"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type CartData struct {
	Items []CartItemData `json:"items"`
	Count int            `json:"count"`
	Total string         `json:"total"`
}

type CheckoutData struct {
	OrderID  uint   `json:"order_id"`
	OrderNo  string `json:"order_no"`
	Subtotal string `json:"subtotal"`
	Taxes    string `json:"taxes"`
	Total    string `json:"total"`
	Status   string `json:"status"`
}

// Do 发送JSON请求并解析统一响应（业务错误也是HTTP 200）
func Do(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	return &result
}

func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return Do(t, http.MethodPost, url, data, token)
}

func GetJSON(t *testing.T, url string, token string) *Response {
	return Do(t, http.MethodGet, url, nil, token)
}

// GetRaw 下载非JSON内容（如PDF收据）
func GetRaw(t *testing.T, url string, token string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// UniqueName 生成唯一用户名（用户名最长150）
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// Login 登录并返回Access Token
func Login(t *testing.T, username, password string) string {
	t.Helper()
	resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, 0, resp.Code, "登录失败: %s", resp.Message)

	var data LoginData
	resp.Decode(t, &data)
	return data.AccessToken
}

// RegisterTestUser 注册并登录一个普通顾客
func RegisterTestUser(t *testing.T, prefix string) (username string, token string) {
	t.Helper()
	username = UniqueName(prefix)
	resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
		"username": username,
		"email":    username + "@test.com",
		"password": testPassword,
	}, "")
	require.Equal(t, 0, resp.Code, "注册失败: %s", resp.Message)

	return username, Login(t, username, testPassword)
}

// AdminToken 用环境变量里的后台账号登录，未配置时跳过测试
func AdminToken(t *testing.T) string {
	t.Helper()
	username := os.Getenv("TINTAYHOJAS_IT_ADMIN")
	password := os.Getenv("TINTAYHOJAS_IT_PASSWORD")
	if username == "" || password == "" {
		t.Skip("未配置TINTAYHOJAS_IT_ADMIN/TINTAYHOJAS_IT_PASSWORD，跳过需要后台账号的测试")
	}
	return Login(t, username, password)
}

// PublishTestBook 通过后台建作者、分类和图书，返回图书ID
func PublishTestBook(t *testing.T, adminToken, title, price string, stock int) uint {
	t.Helper()

	author := PostJSON(t, BaseURL+"/admin/authors", map[string]string{
		"name": UniqueName("Autor"),
	}, adminToken)
	require.Equal(t, 0, author.Code, "新建作者失败: %s", author.Message)
	var authorData IDData
	author.Decode(t, &authorData)

	collection := PostJSON(t, BaseURL+"/admin/collections", map[string]string{
		"name": UniqueName("Colección"),
	}, adminToken)
	require.Equal(t, 0, collection.Code, "新建分类失败: %s", collection.Message)
	var collectionData IDData
	collection.Decode(t, &collectionData)

	book := PostJSON(t, BaseURL+"/admin/books", map[string]interface{}{
		"title":         title,
		"author_id":     authorData.ID,
		"collection_id": collectionData.ID,
		"price":         price,
		"stock":         stock,
		"description":   "集成测试用图书",
	}, adminToken)
	require.Equal(t, 0, book.Code, "新建图书失败: %s", book.Message)

	var bookData BookData
	book.Decode(t, &bookData)
	require.NotZero(t, bookData.ID)
	return bookData.ID
}

// AddToCart 把图书加入购物车n次
func AddToCart(t *testing.T, token string, bookID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		resp := PostJSON(t, fmt.Sprintf("%s/cart/books/%d", BaseURL, bookID), nil, token)
		require.Equal(t, 0, resp.Code, "加入购物车失败: %s", resp.Message)
	}
}

// Checkout 提交结账
func Checkout(t *testing.T, token string) *Response {
	t.Helper()
	return PostJSON(t, BaseURL+"/checkout", map[string]string{
		"address":        "Av. Reforma 222, CDMX",
		"payment_method": "tarjeta",
	}, token)
}
