package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dschrander/uv-energy-saver/internal/curing"
)

type calculationListItem struct {
	ID        int64
	CreatedAt string
	Title     string
	Substraat string
	Volume    string
	Vermogen  float64
}

type calculationDetail struct {
	ID             int64
	CreatedAt      string
	Title          string
	Notes          string
	Substraat      string
	Inktsoort      string
	RasterwalsType string
	Volume         string
	BCM            float64
	Vermogen       float64
	Transfer       string
	Result         curing.Result
}

type historyViewData struct {
	baseViewData
	Query        string
	Calculations []calculationListItem
}

type historyDetailViewData struct {
	baseViewData
	Detail calculationDetail
}

func (s *server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	calculations, err := s.listCalculations(query)
	if err != nil {
		http.Error(w, "failed to load calculation history", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "history.html", historyViewData{
		Query:        query,
		Calculations: calculations,
	})
}

func (s *server) handleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseCalculationID(r)
	if err != nil {
		http.Error(w, "invalid calculation id", http.StatusBadRequest)
		return
	}

	detail, err := s.getCalculationDetail(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load calculation", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "history_detail.html", historyDetailViewData{Detail: detail})
}

func (s *server) handleHistoryText(w http.ResponseWriter, r *http.Request) {
	id, err := parseCalculationID(r)
	if err != nil {
		http.Error(w, "invalid calculation id", http.StatusBadRequest)
		return
	}

	detail, err := s.getCalculationDetail(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load calculation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(formatCalculationText(detail)))
}

func parseCalculationID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

// insertCalculation stores the inputs together with a breakdown snapshot so
// history pages never have to recompute anything.
func (s *server) insertCalculation(values calcFormValues, bcm float64, result curing.Result) (int64, error) {
	breakdown, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO berekeningen (
			title, notes, substraat, inktsoort, rasterwals_type,
			volume, bcm, vermogen, transfer, breakdown_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		values.Title,
		values.Notes,
		values.Substraat,
		values.Inktsoort,
		values.RasterwalsType,
		values.Volume,
		bcm,
		result.FinalPower,
		result.TransferValue,
		string(breakdown),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert calculation: %w", err)
	}

	return res.LastInsertId()
}

func (s *server) listCalculations(query string) ([]calculationListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			substraat,
			volume,
			vermogen
		FROM berekeningen
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calculations := make([]calculationListItem, 0)
	for rows.Next() {
		var item calculationListItem
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &item.Substraat, &item.Volume, &item.Vermogen); err != nil {
			return nil, err
		}
		calculations = append(calculations, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calculations, nil
}

func (s *server) getCalculationDetail(id int64) (calculationDetail, error) {
	var detail calculationDetail
	var breakdownJSON string
	err := s.db.QueryRow(`
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			COALESCE(notes, ''),
			substraat,
			inktsoort,
			rasterwals_type,
			volume,
			bcm,
			vermogen,
			transfer,
			breakdown_json
		FROM berekeningen
		WHERE id = ?
	`, id).Scan(
		&detail.ID,
		&detail.CreatedAt,
		&detail.Title,
		&detail.Notes,
		&detail.Substraat,
		&detail.Inktsoort,
		&detail.RasterwalsType,
		&detail.Volume,
		&detail.BCM,
		&detail.Vermogen,
		&detail.Transfer,
		&breakdownJSON,
	)
	if err != nil {
		return detail, err
	}

	if err := json.Unmarshal([]byte(breakdownJSON), &detail.Result); err != nil {
		return detail, fmt.Errorf("failed to unmarshal breakdown for calculation %d: %w", id, err)
	}

	return detail, nil
}

// formatCalculationText renders a calculation as the plain text block that
// operators paste into their job sheets.
func formatCalculationText(detail calculationDetail) string {
	var b strings.Builder

	b.WriteString("CleverCuring - UV Instellingen\n")
	fmt.Fprintf(&b, "Datum: %s\n", detail.CreatedAt)
	if detail.Title != "" {
		fmt.Fprintf(&b, "Omschrijving: %s\n", detail.Title)
	}
	if detail.Notes != "" {
		fmt.Fprintf(&b, "Notities: %s\n", detail.Notes)
	}

	b.WriteString("\nInvoer:\n")
	fmt.Fprintf(&b, "  Substraat: %s\n", detail.Substraat)
	fmt.Fprintf(&b, "  Inktsoort: %s\n", detail.Inktsoort)
	fmt.Fprintf(&b, "  Rasterwals: %s\n", detail.RasterwalsType)
	fmt.Fprintf(&b, "  Volume: %s\n", detail.Volume)
	fmt.Fprintf(&b, "  BCM: %g\n", detail.BCM)

	b.WriteString("\nBerekening:\n")
	fmt.Fprintf(&b, "  Basisvermogen: %.0f%%\n", detail.Result.BasePower)
	fmt.Fprintf(&b, "  Substraat aanpassing: %.1f%%\n", detail.Result.SubstrateContribution)
	fmt.Fprintf(&b, "  Inkt aanpassing: %.1f%%\n", detail.Result.InkContribution)
	fmt.Fprintf(&b, "  BCM bijdrage: %.1f%%\n", detail.Result.BCMContribution)
	fmt.Fprintf(&b, "  Transfer factor: %.1f%%\n", detail.Result.TransferFactor)
	fmt.Fprintf(&b, "  Inktoverdracht: %s\n", detail.Transfer)

	fmt.Fprintf(&b, "\nUV Vermogen: %.1f%%\n", detail.Vermogen)

	return b.String()
}
