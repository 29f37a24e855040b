package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
)

// ExcelExporter renders a tenant ledger as an xlsx workbook with one row per
// financial request.
type ExcelExporter struct{}

var ledgerHeader = []string{
	"Public ID", "Kind", "Beneficiary", "Requested By", "Status",
	"Amount", "Approved Amount", "Settled", "Remaining", "Fully Settled",
	"Requested At", "Approved At", "Paid At",
}

func (ExcelExporter) WriteLedger(_ context.Context, tenantID string, requests []entities.FinancialRequest) ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	sheet := "Ledger"
	index, err := workbook.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, title := range ledgerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for rowIndex, request := range requests {
		approvedAmount := any("")
		if request.ApprovedAmount != nil {
			approvedAmount = *request.ApprovedAmount
		}
		approvedAt := ""
		if request.ApprovedAt != nil {
			approvedAt = request.ApprovedAt.UTC().Format("2006-01-02 15:04")
		}
		paidAt := ""
		if request.PaidAt != nil {
			paidAt = request.PaidAt.UTC().Format("2006-01-02 15:04")
		}
		values := []any{
			request.PublicID, request.Kind, request.BeneficiaryID, request.RequestedBy, request.Status,
			request.Amount, approvedAmount, request.SettledAmount, request.Remaining, request.IsFullySettled,
			request.RequestedAt.UTC().Format("2006-01-02 15:04"), approvedAt, paidAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIndex+2)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := workbook.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Financial request ledger %s", tenantID),
		Creator: "backoffice",
	}); err != nil {
		return nil, err
	}

	buffer, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
