package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"servicehub/pkg/model"
)

type ListingClient struct {
	httpClient *HttpClient
}

func NewListingClient(baseUrl, userID string) *ListingClient {
	httpClient := NewHttpClient(baseUrl)
	httpClient.Headers[userIDHeader] = userID
	return &ListingClient{httpClient: httpClient}
}

func (c *ListingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/services", body)
}

func (c *ListingClient) List(providerID, category string, page, limit int) (*Response, error) {
	q := url.Values{}
	if providerID != "" {
		q.Set("provider_id", providerID)
	}
	if category != "" {
		q.Set("category", category)
	}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	return c.httpClient.GET("/api/v1/services?" + q.Encode())
}

func (c *ListingClient) ListRateRange(providerID string, minRate, maxRate float64, page, limit int) (*Response, error) {
	q := url.Values{}
	if providerID != "" {
		q.Set("provider_id", providerID)
	}
	q.Set("min_rate", strconv.FormatFloat(minRate, 'f', -1, 64))
	q.Set("max_rate", strconv.FormatFloat(maxRate, 'f', -1, 64))
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	return c.httpClient.GET("/api/v1/services?" + q.Encode())
}

func (c *ListingClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PUT("/api/v1/services/id/"+url.PathEscape(id), body)
}

func (c *ListingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/services/id/" + url.PathEscape(id))
}

func (c *ListingClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/services/id/" + url.PathEscape(id))
}

func (c *ListingClient) DecodeListing(resp *Response) (*model.ServiceListing, error) {
	var listing model.ServiceListing
	if err := decodeData(resp, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingClient) DecodeListings(resp *Response) ([]*model.ServiceListing, *Metadata, error) {
	var wrapper struct {
		Data  json.RawMessage `json:"data"`
		Total int64           `json:"total"`
		Page  int             `json:"page"`
		Limit int             `json:"limit"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var listings []*model.ServiceListing
	if err := json.Unmarshal(wrapper.Data, &listings); err != nil {
		return nil, nil, fmt.Errorf("could not decode service listing list:\n%+v\n%s", resp.ToString(), err)
	}

	return listings, &Metadata{Total: wrapper.Total, Page: wrapper.Page, Limit: wrapper.Limit}, nil
}
