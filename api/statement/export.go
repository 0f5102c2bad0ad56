package statement

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"CommissionFlow/api"
	"CommissionFlow/api/constants"
)

// ExportFailedTransactions streams the document's outstanding failures as an
// .xlsx workbook so corrections can be prepared offline.
func ExportFailedTransactions(store DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		doc, err := store.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		if len(doc.FailedTransactions) == 0 {
			api.RespondWithCode(w, http.StatusConflict, constants.CodeInvalidState, constants.ErrNoFailedTransactions)
			return
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		headers := []string{"Transaction ID", "Policy Number", "Insured Name", "Statement ID", "Amount", "Error"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		for rowIdx, ft := range doc.FailedTransactions {
			values := []interface{}{
				ft.ID, ft.PolicyNumber, ft.InsuredName, ft.StatementID,
				ft.TransactionAmount.String(), ft.Error,
			}
			for colIdx, v := range values {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="document-%d-failed.xlsx"`, doc.ID))
		if err := f.Write(w); err != nil {
			api.LogError("export workbook for document %d: %v", doc.ID, err)
		}
	}
}
