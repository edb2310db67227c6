package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"pos-agent/internal/models"
)

func (c *Client) PlaceOrder(ctx context.Context, body models.PlaceOrderRequest) (*models.Transaction, error) {
	req, err := JSONRequest(http.MethodPost, "/transactions/place-order", body)
	if err != nil {
		return nil, err
	}
	var tx models.Transaction
	if err := c.Do(ctx, req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions fetches one page of transactions; empty filter fields are omitted.
func (c *Client) ListTransactions(ctx context.Context, filter models.TransactionFilter) (*models.TransactionPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(filter.Page))
	if filter.Size > 0 {
		q.Set("size", strconv.Itoa(filter.Size))
	}
	setIf(q, "salesPersonEmail", filter.SalesPersonEmail)
	setIf(q, "customerEmail", filter.CustomerEmail)
	setIf(q, "paymentMethod", filter.PaymentMethod)
	setIf(q, "startDate", filter.StartDate)
	setIf(q, "endDate", filter.EndDate)

	var page models.TransactionPage
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/transactions", Query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) IncomeByPaymentMethod(ctx context.Context, start, end string) (*models.IncomeByPaymentMethod, error) {
	var income models.IncomeByPaymentMethod
	req := &Request{Method: http.MethodGet, Path: "/transactions/income-by-payment-method", Query: rangeQuery(start, end)}
	if err := c.Do(ctx, req, &income); err != nil {
		return nil, err
	}
	return &income, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func rangeQuery(start, end string) url.Values {
	q := url.Values{}
	setIf(q, "start", start)
	setIf(q, "end", end)
	return q
}
