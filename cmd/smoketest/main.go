package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// 端到端冒烟：建单 -> 读单 -> 确认 -> 再读（应得到统一的 404）。
// 针对一台已启动的 server 运行，验证一次性链接的完整生命周期。
func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	token := flag.String("token", "", "checkout token (default: random uuid)")
	flag.Parse()

	if *token == "" {
		*token = uuid.New().String()
	}

	client := &http.Client{Timeout: 5 * time.Second}

	order := map[string]any{
		"checkout_token": *token,
		"orderId":        "ORD-2026-001",
		"id":             987654321098765432, // 上游大数值 ID
		"customer": map[string]any{
			"name":    "Smoke Tester",
			"phone":   "+91 99999 88888",
			"address": "42 Test Lane",
			"city":    "Testville",
			"pincode": "123456",
		},
		"items": []map[string]any{
			{"id": 1, "name": "Widget", "quantity": 2, "price": 100},
			{"id": 2, "name": "Gadget", "quantity": 1, "price": 200},
		},
		"finalAmount":    400,
		"shippingAmount": 50,
		"codFee":         30,
	}

	// 1. 建单
	status, body := doJSON(client, http.MethodPost, *baseURL+"/api/orders", order)
	fmt.Printf("store: status=%d body=%s\n", status, body)
	if status != http.StatusOK {
		panic("store failed")
	}

	// 2. 读单（应 Accessible）
	status, body = doJSON(client, http.MethodGet, *baseURL+"/api/orders/"+*token, nil)
	fmt.Printf("fetch: status=%d body=%s\n", status, body)
	if status != http.StatusOK {
		panic("fetch failed")
	}

	// 3. 确认（带一处收货信息编辑，触发 prefilled=changed）
	status, body = doJSON(client, http.MethodPost, *baseURL+"/api/orders/"+*token+"/confirm",
		map[string]any{"phone": "+91 88888 77777"})
	fmt.Printf("confirm: status=%d body=%s\n", status, body)
	if status != http.StatusOK {
		panic("confirm failed")
	}

	// 4. 再读：链接已消耗，必须是统一的 invalid-or-expired 响应
	status, body = doJSON(client, http.MethodGet, *baseURL+"/api/orders/"+*token, nil)
	fmt.Printf("refetch: status=%d body=%s\n", status, body)
	if status != http.StatusNotFound {
		panic("refetch should be 404 after confirm")
	}

	// 5. 未知 token：响应必须与上一步不可区分
	status, body = doJSON(client, http.MethodGet, *baseURL+"/api/orders/"+uuid.New().String(), nil)
	fmt.Printf("unknown: status=%d body=%s\n", status, body)
	if status != http.StatusNotFound {
		panic("unknown token should be 404")
	}

	fmt.Println("smoke test ok")
}

func doJSON(client *http.Client, method, url string, payload any) (int, string) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		panic(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}
