package http

import (
	"bytes"
	"errors"
	"net/http"

	"pktracker/internal/charts"
	"pktracker/internal/core"
	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
	"pktracker/internal/storage"
)

type chartsPage struct {
	Labels  []string
	Amounts []int64
	Total   int64
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.backend.Store.ListExpenses(r.Context(), mwauth.UserID(r.Context()), storage.ExpenseFilter{Order: storage.InsertionOrder})
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	b := core.AggregateByCategory(expenses)
	s.render(w, r, http.StatusOK, "charts.html", "Charts", chartsPage{Labels: b.Labels(), Amounts: b.Amounts, Total: b.Total()})
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.backend.Store.ListExpenses(r.Context(), mwauth.UserID(r.Context()), storage.ExpenseFilter{Order: storage.InsertionOrder})
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	png, err := charts.CategoryPie(core.AggregateByCategory(expenses))
	s.writeChart(w, r, png, err)
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, png []byte, err error) {
	if errors.Is(err, charts.ErrNoData) {
		NotFoundError("No expenses to chart yet").Write(w)
		return
	}
	if err != nil {
		s.serverError(w, r, applog.OpRender, err)
		return
	}
	NewResponse().ContentType(charts.ContentType).Body(png).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.backend.Store.ListExpenses(r.Context(), mwauth.UserID(r.Context()), storage.ExpenseFilter{Order: storage.NewestFirst})
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "history.html", "History", expenses)
}

type calendarPage struct {
	Events []core.CalendarEvent
}

func (s *Server) calendarEvents(r *http.Request) ([]core.CalendarEvent, error) {
	ctx := r.Context()
	userID := mwauth.UserID(ctx)
	expenses, err := s.backend.Store.ListExpenses(ctx, userID, storage.ExpenseFilter{Order: storage.InsertionOrder})
	if err != nil {
		return nil, err
	}
	incomes, err := s.backend.Store.ListIncomes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.CalendarEvents(expenses, incomes), nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := s.calendarEvents(r)
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "calendar.html", "Calendar", calendarPage{Events: events})
}

func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.calendarEvents(r)
	if err != nil {
		s.serverError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(events).Write(w)
}

// forecast computes the 30-day projection from all expenses and the
// incomes dated inside the same window.
func (s *Server) forecast(r *http.Request) (core.ForecastResult, error) {
	ctx := r.Context()
	userID := mwauth.UserID(ctx)
	expenses, err := s.backend.Store.ListExpenses(ctx, userID, storage.ExpenseFilter{Order: storage.InsertionOrder})
	if err != nil {
		return core.ForecastResult{}, err
	}
	incomes, err := s.backend.Store.ListIncomes(ctx, userID)
	if err != nil {
		return core.ForecastResult{}, err
	}

	now := s.now()
	var income float64
	for _, i := range incomes {
		if core.InWindow(i.Date, now, core.ForecastWindowDays) {
			income += i.Amount
		}
	}
	return core.Forecast(expenses, income, now), nil
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	f, err := s.forecast(r)
	if err != nil {
		s.serverError(w, r, applog.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "forecast.html", "Forecast", f)
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	f, err := s.forecast(r)
	if err != nil {
		s.serverError(w, r, applog.OpRead, err)
		return
	}
	png, err := charts.CategoryBars("Last 30 days by category", f.Breakdown)
	s.writeChart(w, r, png, err)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "download.html", "Download", nil)
}

// handleExportCSV streams the user's expenses in insertion order.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expenses, err := s.backend.Store.ListExpenses(ctx, mwauth.UserID(ctx), storage.ExpenseFilter{Order: storage.InsertionOrder})
	if err != nil {
		s.serverError(w, r, applog.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := core.WriteExpensesCSV(&buf, expenses); err != nil {
		s.serverError(w, r, applog.OpExport, err)
		return
	}
	NewResponse().
		ContentType("text/csv").
		Attachment(core.ExportFilename).
		Body(buf.Bytes()).
		Write(w)
}
