package forecast

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"m",
	"opening_arr",
	"new_arr",
	"churn_arr",
	"upsell_arr",
	"closing_arr",
	"revenue",
	"collections",
	"payroll",
	"opex",
	"investment",
	"burn",
	"cash_end",
	"new_logos",
	"headcount",
}

func WriteMonthRowsCSV(path string, rows []MonthRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return EncodeMonthRowsCSV(f, rows)
}

// EncodeMonthRowsCSV writes a header and one line per month. Money columns
// are rounded to cents.
func EncodeMonthRowsCSV(out io.Writer, rows []MonthRow) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.M),
			fmtMoney(r.OpeningArr),
			fmtMoney(r.NewArr),
			fmtMoney(r.ChurnArr),
			fmtMoney(r.UpsellArr),
			fmtMoney(r.ClosingArr),
			fmtMoney(r.Revenue),
			fmtMoney(r.Collections),
			fmtMoney(r.Payroll),
			fmtMoney(r.Opex),
			fmtMoney(r.Investment),
			fmtMoney(r.Burn),
			fmtMoney(r.CashEnd),
			strconv.FormatFloat(r.NewLogos, 'f', -1, 64),
			strconv.Itoa(r.Headcount),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtMoney(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}
