package client

import (
	"fmt"
	"net/url"

	"servicehub/pkg/model"
)

const userIDHeader = "X-User-ID"

// BookingClient calls the bookings API as one user. The server must run with
// AUTH_TRUST_HEADER enabled.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl, userID string) *BookingClient {
	httpClient := NewHttpClient(baseUrl)
	httpClient.Headers[userIDHeader] = userID
	return &BookingClient{httpClient: httpClient}
}

func (c *BookingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body)
}

func (c *BookingClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/bookings", rawBody)
}

func (c *BookingClient) List(role, status string, page, limit int) (*Response, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	return c.httpClient.GET("/api/v1/bookings?" + q.Encode())
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/id/" + url.PathEscape(id))
}

func (c *BookingClient) SetStatus(id string, status model.BookingStatus) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/status"
	return c.httpClient.PUT(path, model.StatusUpdate{Status: string(status)})
}

func (c *BookingClient) SetStatusRaw(id string, rawBody []byte) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/status"
	return c.httpClient.PUTRaw(path, rawBody)
}

func (c *BookingClient) AppendMessage(id, text string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/messages"
	return c.httpClient.POST(path, model.MessageRequest{Text: text})
}

func (c *BookingClient) Stats() (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/stats")
}

func (c *BookingClient) Availability(serviceID, date, clock string, duration int) (*Response, error) {
	q := url.Values{}
	q.Set("service_id", serviceID)
	q.Set("date", date)
	q.Set("time", clock)
	q.Set("duration", fmt.Sprintf("%d", duration))
	return c.httpClient.GET("/api/v1/bookings/availability?" + q.Encode())
}

func (c *BookingClient) Export(role, status string) (*Response, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	if status != "" {
		q.Set("status", status)
	}
	return c.httpClient.GET("/api/v1/bookings/export?" + q.Encode())
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var page model.BookingPage
	if err := decodeData(resp, &page); err != nil {
		return nil, nil, err
	}
	return page.Bookings, &Metadata{Total: page.Total, Page: page.Page, Limit: page.Limit}, nil
}

func (c *BookingClient) DecodeMessage(resp *Response) (*model.Message, error) {
	var msg model.Message
	if err := decodeData(resp, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *BookingClient) DecodeStats(resp *Response) (*model.ProviderStats, error) {
	var stats model.ProviderStats
	if err := decodeData(resp, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
