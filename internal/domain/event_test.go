package domain

import (
	"errors"
	"testing"
	"time"
)

func testCategories() []TicketCategory {
	return []TicketCategory{
		{Name: "general", Price: 500.00, Capacity: 100},
		{Name: "vip", Price: 1500.00, Capacity: 20},
	}
}

func TestNewEvent(t *testing.T) {
	starts := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name        string
		id          string
		organizerID string
		categories  []TicketCategory
		wantErr     error
	}{
		{
			name:        "valid event",
			id:          "event-001",
			organizerID: "org-001",
			categories:  testCategories(),
		},
		{
			name:        "missing event ID",
			organizerID: "org-001",
			categories:  testCategories(),
			wantErr:     ErrInvalidEventID,
		},
		{
			name:       "missing organizer ID",
			id:         "event-001",
			categories: testCategories(),
			wantErr:    ErrInvalidUserID,
		},
		{
			name:        "no categories",
			id:          "event-001",
			organizerID: "org-001",
			wantErr:     ErrEmptySelection,
		},
		{
			name:        "duplicate category name",
			id:          "event-001",
			organizerID: "org-001",
			categories: []TicketCategory{
				{Name: "general", Price: 500, Capacity: 100},
				{Name: "general", Price: 800, Capacity: 50},
			},
			wantErr: ErrDuplicateCategory,
		},
		{
			name:        "zero capacity",
			id:          "event-001",
			organizerID: "org-001",
			categories: []TicketCategory{
				{Name: "general", Price: 500, Capacity: 0},
			},
			wantErr: ErrInvalidCapacity,
		},
		{
			name:        "negative price",
			id:          "event-001",
			organizerID: "org-001",
			categories: []TicketCategory{
				{Name: "general", Price: -1, Capacity: 10},
			},
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewEvent(tt.id, tt.organizerID, "Launch Night", starts, tt.categories)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewEvent() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEvent() unexpected error = %v", err)
			}
			if event.Status != EventStatusActive {
				t.Errorf("Status = %v, want active", event.Status)
			}
			if event.Featured || event.CommissionPaid {
				t.Error("new event must not be featured or commission-paid")
			}
			for _, c := range event.Categories {
				if c.Available != c.Capacity {
					t.Errorf("category %s: Available = %d, want %d", c.Name, c.Available, c.Capacity)
				}
			}
		})
	}
}

func TestEvent_Cancel(t *testing.T) {
	event, err := NewEvent("event-001", "org-001", "Launch Night", time.Now(), testCategories())
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	if err := event.Cancel(); err != nil {
		t.Fatalf("Cancel() unexpected error = %v", err)
	}
	if event.IsActive() {
		t.Error("event still active after cancel")
	}
	if err := event.Cancel(); !errors.Is(err, ErrEventCancelled) {
		t.Errorf("second Cancel() error = %v, want ErrEventCancelled", err)
	}
}

func TestEvent_SettleCommission(t *testing.T) {
	event, err := NewEvent("event-001", "org-001", "Launch Night", time.Now(), testCategories())
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	if err := event.SettleCommission(); err != nil {
		t.Fatalf("SettleCommission() unexpected error = %v", err)
	}
	// Commission and featured flip together
	if !event.CommissionPaid || !event.Featured {
		t.Errorf("CommissionPaid = %v, Featured = %v, want both true", event.CommissionPaid, event.Featured)
	}

	if err := event.SettleCommission(); !errors.Is(err, ErrAlreadyRecorded) {
		t.Errorf("second SettleCommission() error = %v, want ErrAlreadyRecorded", err)
	}
}

func TestEvent_Category(t *testing.T) {
	event, err := NewEvent("event-001", "org-001", "Launch Night", time.Now(), testCategories())
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	cat, ok := event.Category("vip")
	if !ok {
		t.Fatal("Category(vip) not found")
	}
	if cat.Price != 1500.00 {
		t.Errorf("Price = %v, want 1500", cat.Price)
	}

	if _, ok := event.Category("backstage"); ok {
		t.Error("Category(backstage) unexpectedly found")
	}
}
