package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/schedule"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, date, team string) ([]byte, error)
}

// GenerateReportExcel downloads the schedule of one team, or of every team
// when no team is given.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		date := r.URL.Query().Get("date")
		team := r.URL.Query().Get("team")
		if _, err := schedule.ParseDate(date); err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, date, team)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		scope := team
		if scope == "" {
			scope = "All"
		}
		fileName := fmt.Sprintf("Schedule_%s_%s.xlsx", scope, date)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(excelBytes); err != nil {
			log.Warn("failed to write excel response", slog.String("op", op), slog.String("error", err.Error()))
		}
	}
}
