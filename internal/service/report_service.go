package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/models"
	"pos-agent/internal/notify"
	"pos-agent/internal/receipt"
	"pos-agent/internal/util"

	"go.uber.org/zap"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ReportAPI is the transactions and dashboard surface of the remote API.
type ReportAPI interface {
	ListTransactions(ctx context.Context, filter models.TransactionFilter) (*models.TransactionPage, error)
	IncomeByPaymentMethod(ctx context.Context, start, end string) (*models.IncomeByPaymentMethod, error)
	TopItems(ctx context.Context, start, end string) ([]models.ItemSales, error)
	BottomItems(ctx context.Context, start, end string) ([]models.ItemSales, error)
}

type ReportService struct {
	api      ReportAPI
	renderer ReceiptRenderer
	notifier notify.Notifier
	currency string
	logger   *zap.Logger
}

func NewReportService(api ReportAPI, renderer ReceiptRenderer, notifier notify.Notifier, currency string) *ReportService {
	return &ReportService{
		api:      api,
		renderer: renderer,
		notifier: notifier,
		currency: currency,
		logger:   util.Named("reports"),
	}
}

func (s *ReportService) Transactions(ctx context.Context, filter models.TransactionFilter) (*models.TransactionPage, error) {
	if filter.Page < 0 {
		filter.Page = 0
	}
	page, err := s.api.ListTransactions(ctx, filter)
	if err != nil {
		s.logger.Warn("Failed to load transactions", zap.Error(err))
		s.notifier.Notify(notify.LevelError, "Failed to load transactions")
		return nil, err
	}
	return page, nil
}

func (s *ReportService) IncomeByPaymentMethod(ctx context.Context, start, end string) (*models.IncomeByPaymentMethod, error) {
	income, err := s.api.IncomeByPaymentMethod(ctx, start, end)
	if err != nil {
		s.notifier.Notify(notify.LevelError, apiclient.MessageOf(err, "Failed to load income"))
		return nil, err
	}
	return income, nil
}

func (s *ReportService) TopItems(ctx context.Context, start, end string) ([]models.ItemSales, error) {
	items, err := s.api.TopItems(ctx, start, end)
	if err != nil {
		s.notifier.Notify(notify.LevelError, apiclient.MessageOf(err, "Failed to load top items"))
		return nil, err
	}
	return items, nil
}

func (s *ReportService) BottomItems(ctx context.Context, start, end string) ([]models.ItemSales, error) {
	items, err := s.api.BottomItems(ctx, start, end)
	if err != nil {
		s.notifier.Notify(notify.LevelError, apiclient.MessageOf(err, "Failed to load bottom items"))
		return nil, err
	}
	return items, nil
}

// ExportFilename is the download name of a CSV export made at t.
func ExportFilename(t time.Time) string {
	return "transactions_" + t.UTC().Format("2006-01-02") + ".csv"
}

// ExportCSV writes the transactions page matching filter to w.
func (s *ReportService) ExportCSV(ctx context.Context, filter models.TransactionFilter, w io.Writer) error {
	ctx, span := util.StartSpan(ctx, "ReportService.ExportCSV")
	defer span.End()

	page, err := s.Transactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(page.Content) == 0 {
		s.notifier.Notify(notify.LevelError, sentence(ErrNothingToExport))
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	suffix := ""
	if s.currency != "" {
		suffix = " (" + s.currency + ")"
	}
	header := []string{
		"Reference", "Date", "Customer", "Sales Person", "Payment Method",
		"Subtotal" + suffix, "Discount" + suffix, "Total" + suffix, "Status",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range page.Content {
		row := []string{
			t.TransactionReference,
			t.CreatedOn.UTC().Format(isoMillis),
			t.CustomerName,
			t.SalesPersonEmail,
			t.PaymentMethod,
			t.Subtotal.StringFixed(2),
			t.DiscountAmount.StringFixed(2),
			t.TotalAmount.StringFixed(2),
			t.Status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info("Transactions exported", zap.Int("rows", len(page.Content)))
	return nil
}

// Reprint renders the receipt of an already committed transaction.
func (s *ReportService) Reprint(ctx context.Context, tx *models.Transaction) (string, error) {
	if s.renderer == nil {
		return "", fmt.Errorf("no receipt renderer configured")
	}
	path, err := s.renderer.Render(ctx, receipt.FromTransaction(tx))
	if err != nil {
		util.ReceiptsFailedTotal.Inc()
		s.logger.Warn("Receipt reprint failed", zap.String("reference", tx.TransactionReference), zap.Error(err))
		s.notifier.Notify(notify.LevelError, "Failed to generate receipt. Please try again.")
		return "", err
	}
	s.notifier.Notify(notify.LevelSuccess, "Receipt saved")
	return path, nil
}
