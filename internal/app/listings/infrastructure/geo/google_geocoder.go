package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"roamstay/internal/app/listings/entity"
)

// GoogleGeocoder клиент Google Geocoding API
// Отвечает только за HTTP запросы к внешнему API
type GoogleGeocoder struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoogleGeocoder создает новый клиент геокодера
func NewGoogleGeocoder(baseURL, apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocode переводит текстовый адрес в координаты
// Пустой список результатов не является ошибкой HTTP уровня:
// статус ZERO_RESULTS возвращается как пустой срез, решение принимает вызывающий
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) ([]entity.GeoPoint, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", g.apiKey)

	reqURL := g.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResponse geocodeResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse geocoder response: %w", err)
	}

	switch apiResponse.Status {
	case "OK", "ZERO_RESULTS":
		// Оба статуса валидны, различие в количестве результатов
	default:
		return nil, fmt.Errorf("geocoder error %s: %s", apiResponse.Status, apiResponse.ErrorMessage)
	}

	points := make([]entity.GeoPoint, 0, len(apiResponse.Results))
	for _, result := range apiResponse.Results {
		points = append(points, entity.GeoPoint{
			Lat:              result.Geometry.Location.Lat,
			Lng:              result.Geometry.Location.Lng,
			FormattedAddress: result.FormattedAddress,
		})
	}

	return points, nil
}
