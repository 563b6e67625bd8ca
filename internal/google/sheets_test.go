package google

import (
	"context"
	"testing"
	"time"

	"sharovik/internal/models"
)

func TestBookingRowValues(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC)
	updatedAt := time.Date(2025, 2, 21, 11, 15, 0, 0, time.UTC)

	booking := &models.Booking{
		ID:        123,
		ItemID:    789,
		ItemName:  "Drill",
		BookerID:  456,
		Start:     start,
		End:       end,
		Status:    models.StatusApproved,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	values := bookingRowValues(booking)

	expected := []interface{}{
		int64(123),
		int64(789),
		"Drill",
		int64(456),
		"2025-03-01 10:00:00",
		"2025-03-02 10:00:00",
		models.StatusApproved,
		"2025-02-20 09:30:00",
		"2025-02-21 11:15:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestCellID(t *testing.T) {
	cases := []struct {
		cell     interface{}
		expected int64
	}{
		{float64(42), 42},
		{"42", 42},
		{"not-a-number", 0},
		{"", 0},
		{true, 0},
		{nil, 0},
	}

	for _, c := range cases {
		if got := cellID(c.cell); got != c.expected {
			t.Errorf("cellID(%v): expected %d, got %d", c.cell, c.expected, got)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	s.setCachedRow(100, 5)
	row, ok := s.getCachedRow(100)
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	if _, ok = s.getCachedRow(200); ok {
		t.Errorf("Expected miss for uncached id")
	}

	s.setCachedRow(200, 10)
	s.ClearCache()
	if _, ok = s.getCachedRow(200); ok {
		t.Errorf("Expected cache to be cleared")
	}
}

func TestFindBookingRow(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	t.Run("ZeroID", func(t *testing.T) {
		_, err := s.findBookingRow(context.Background(), 0)
		if err == nil {
			t.Error("Expected error for zero ID")
		}
	})

	t.Run("CachedRow", func(t *testing.T) {
		s.setCachedRow(123, 5)
		row, err := s.findBookingRow(context.Background(), 123)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if row != 5 {
			t.Errorf("Expected row 5, got %d", row)
		}
	})
}

func TestUpsertBooking_NilBooking(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	if err := s.UpsertBooking(nil); err == nil {
		t.Error("Expected error for nil booking")
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	_, err := NewSheetsService("non-existent.json", "sheet-id")
	if err == nil {
		t.Error("Expected error for missing credentials file")
	}
}
