package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
)

// HTTPSource queries the backend availability endpoints. The wire contract is
// treated as opaque JSON; only the day/hour lists are read out of it.
type HTTPSource struct {
	Client  *http.Client
	BaseURL string
	Logger  *slog.Logger
}

type daysResponse struct {
	Days []string `json:"days"`
}

type hoursResponse struct {
	Hours []string `json:"hours"`
}

func (s *HTTPSource) AvailableDays(ctx context.Context, productID catalog.ProductID, charging booking.ChargingType) ([]string, error) {
	endpoint := fmt.Sprintf("%s/products/%s/available-days?chargingType=%s",
		s.BaseURL, url.PathEscape(string(productID)), url.QueryEscape(string(charging)))
	var payload daysResponse
	if err := s.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Days, nil
}

func (s *HTTPSource) AvailableHours(ctx context.Context, productID catalog.ProductID, date string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/products/%s/available-hours?date=%s",
		s.BaseURL, url.PathEscape(string(productID)), url.QueryEscape(date))
	var payload hoursResponse
	if err := s.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Hours, nil
}

func (s *HTTPSource) get(ctx context.Context, endpoint string, out any) error {
	if s == nil || s.Client == nil {
		return errors.New("availability: http client not configured")
	}
	if s.BaseURL == "" {
		return errors.New("availability: base url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		if s.Logger != nil {
			s.Logger.Warn("availability fetch failed", "status", resp.StatusCode, "endpoint", endpoint)
		}
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

var _ Source = (*HTTPSource)(nil)
