// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
)

const yandexGeocoderURL = "https://geocode-maps.yandex.ru/1.x"

// YandexGeocoder uses the Yandex Geocoder HTTP API.
type YandexGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYandexGeocoder creates a new Yandex geocoder. A nil transport means
// http.DefaultTransport.
func NewYandexGeocoder(apiKey string, transport http.RoundTripper) *YandexGeocoder {
	return &YandexGeocoder{
		apiKey:  apiKey,
		baseURL: yandexGeocoderURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

type yandexResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					MetaDataProperty struct {
						GeocoderMetaData struct {
							Precision string `json:"precision"` // exact, number, near, range, street, other
							Text      string `json:"text"`
						} `json:"GeocoderMetaData"`
					} `json:"metaDataProperty"`
					Point struct {
						Pos string `json:"pos"` // "lon lat"
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

func (g *YandexGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("geocode", address)
	params.Set("apikey", g.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var yResp yandexResponse
	if err := json.NewDecoder(resp.Body).Decode(&yResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	members := yResp.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return nil, notFound(address)
	}

	object := members[0].GeoObject

	point, err := parsePos(object.Point.Pos)
	if err != nil {
		return nil, fmt.Errorf("parsing position for %s: %w", address, err)
	}

	confidence := confidenceLow

	switch object.MetaDataProperty.GeocoderMetaData.Precision {
	case "exact", "number":
		confidence = confidenceHigh
	case "near", "range", "street":
		confidence = confidenceMedium
	}

	return &GeocodingResult{
		Point:       point,
		Confidence:  confidence,
		Provider:    "yandex",
		DisplayName: object.MetaDataProperty.GeocoderMetaData.Text,
	}, nil
}

// parsePos parses the Yandex "lon lat" position string.
func parsePos(pos string) (spatial.Point, error) {
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return spatial.Point{}, fmt.Errorf("unexpected position %q", pos)
	}

	lng, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("longitude: %w", err)
	}

	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("latitude: %w", err)
	}

	return spatial.Point{Lat: lat, Lng: lng}, nil
}
