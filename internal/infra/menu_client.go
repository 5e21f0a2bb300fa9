package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meal-order-service/internal/domain"
)

type MenuClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewMenuClient(baseURL string, timeout time.Duration) *MenuClient {
	return &MenuClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *MenuClient) GetFoodByID(ctx context.Context, id uint64) (*domain.FoodItem, error) {
	var f domain.FoodItem
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/foods/%d", c.baseURL, id), &f)
	if err != nil || !found {
		return nil, err
	}
	return &f, nil
}

func (c *MenuClient) GetPublishedMenu(ctx context.Context, date time.Time) (*domain.DailyMenu, error) {
	var m domain.DailyMenu
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/menus/%s", c.baseURL, date.Format(domain.DateLayout)), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (c *MenuClient) getJSON(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("menu service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode menu service response: %w", err)
	}
	return true, nil
}
