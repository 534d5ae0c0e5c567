package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/repository"
)

// ReportService renders the install ledger as an Excel workbook for the
// admin panel's export button.
type ReportService struct {
	installs InstallStore
	techs    TechnicianStore
}

// NewReportService constructs a new ReportService.
func NewReportService(installs InstallStore, techs TechnicianStore) *ReportService {
	return &ReportService{installs: installs, techs: techs}
}

var reportHeaders = []string{
	"Order ID", "Customer", "Phone", "Address", "Technician", "Status",
	"Order Date", "Installation Time", "Device Type", "IMEI", "Courier",
	"Product Price", "Technician Fee", "Expense", "Expense Status",
	"Amount Due", "Payment Received",
}

// InstallsWorkbook builds the export. Amounts are whole taka; amountDue is
// derived per row, exactly as the dashboard computes it.
func (s *ReportService) InstallsWorkbook(ctx context.Context) (*excelize.File, error) {
	// One page is plenty for a single-shop install ledger.
	installs, _, err := s.installs.List(ctx, repository.InstallFilter{Limit: 10000})
	if err != nil {
		return nil, err
	}
	techs, err := s.techs.List(ctx)
	if err != nil {
		return nil, err
	}
	techNames := make(map[string]string, len(techs))
	for _, t := range techs {
		techNames[t.ID] = t.Name
	}

	f := excelize.NewFile()
	const sheet = "Installs"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, in := range installs {
		values := []interface{}{
			in.ID,
			in.Customer.Name,
			in.Customer.Phone,
			in.Customer.Address,
			technicianName(techNames, in.TechnicianID),
			string(in.Status),
			in.OrderDate.Format("2006-01-02 15:04"),
			optionalTime(in.InstallationAt),
			optionalDeviceType(in.DeviceType),
			optionalString(in.IMEI),
			optionalString(in.CourierService),
			in.ProductPrice,
			in.TechnicianFee,
			optionalAmount(in.ExpenseAmount),
			optionalExpenseStatus(in.ExpenseStatus),
			in.ComputeAmountDue(),
			optionalAmount(in.PaymentAmount),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// ReportFileName returns the download file name for the export.
func ReportFileName(now string) string {
	return fmt.Sprintf("installs_%s.xlsx", now)
}

func technicianName(names map[string]string, id *string) string {
	if id == nil {
		return ""
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return *id
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalDeviceType(d *models.DeviceType) string {
	if d == nil {
		return ""
	}
	return string(*d)
}

func optionalExpenseStatus(s *models.ExpenseStatus) string {
	if s == nil {
		return ""
	}
	return string(*s)
}

func optionalAmount(a *int64) interface{} {
	if a == nil {
		return ""
	}
	return *a
}
