package main

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestListCalculationsOrdersByDateDesc(t *testing.T) {
	db := newHistoryTestDB(t)
	srv := &server{db: db}

	seedCalculation(t, db, "2024-03-01 10:00:00", "Eerste", "proefdruk", 54.0)
	seedCalculation(t, db, "2024-03-03 12:00:00", "Derde", "spoedorder", 79.3)
	seedCalculation(t, db, "2024-03-02 11:00:00", "Tweede", "herdruk", 61.5)

	calculations, err := srv.listCalculations("")
	if err != nil {
		t.Fatalf("listCalculations returned error: %v", err)
	}

	if len(calculations) != 3 {
		t.Fatalf("expected 3 calculations, got %d", len(calculations))
	}

	if calculations[0].Title != "Derde" || calculations[1].Title != "Tweede" || calculations[2].Title != "Eerste" {
		t.Fatalf("calculations are not sorted desc by created_at: %+v", calculations)
	}

	if calculations[0].Vermogen != 79.3 || calculations[1].Vermogen != 61.5 || calculations[2].Vermogen != 54.0 {
		t.Fatalf("unexpected power values: %+v", calculations)
	}
}

func TestListCalculationsFilterByTitleAndNotes(t *testing.T) {
	db := newHistoryTestDB(t)
	srv := &server{db: db}

	seedCalculation(t, db, "2024-03-01 10:00:00", "Etiketten", "rode folie", 54.0)
	seedCalculation(t, db, "2024-03-02 10:00:00", "Dozen", "klant vip", 61.5)
	seedCalculation(t, db, "2024-03-03 10:00:00", "Proef", "spoed voor etiketten", 79.3)

	byTitle, err := srv.listCalculations("Dozen")
	if err != nil {
		t.Fatalf("listCalculations title filter returned error: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Dozen" {
		t.Fatalf("expected 1 calculation filtered by title, got %+v", byTitle)
	}

	byNotes, err := srv.listCalculations("etiketten")
	if err != nil {
		t.Fatalf("listCalculations notes filter returned error: %v", err)
	}
	if len(byNotes) != 2 {
		t.Fatalf("expected 2 calculations filtered by notes/title, got %+v", byNotes)
	}
}

func newHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE berekeningen (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			title TEXT,
			notes TEXT,
			substraat TEXT NOT NULL,
			inktsoort TEXT NOT NULL,
			rasterwals_type TEXT NOT NULL,
			volume TEXT NOT NULL,
			bcm NUMERIC NOT NULL,
			vermogen NUMERIC NOT NULL,
			transfer TEXT NOT NULL,
			breakdown_json TEXT NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("failed creating berekeningen table: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func seedCalculation(t *testing.T, db *sql.DB, createdAt, title, notes string, vermogen float64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO berekeningen (
			created_at, title, notes, substraat, inktsoort, rasterwals_type,
			volume, bcm, vermogen, transfer, breakdown_json
		) VALUES (?, ?, ?, 'Folie', 'UV-inkt', 'Hexagonal (20-30% transfer)', '10 cm³/m²', 6.4, ?, '2.5 g/m²', '{}')
	`, createdAt, title, notes, vermogen)
	if err != nil {
		t.Fatalf("failed to seed calculation: %v", err)
	}
}
