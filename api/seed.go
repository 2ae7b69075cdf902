/*
seed.go - Demo law-firm dataset

PURPOSE:
  Loads a small, deterministic dataset so the API is explorable without
  a frontend: a few users, clients of each type, a topic catalog, a
  week of time entries, a draft service description with waived line
  items, and one submitted day. Fixed ids make the dataset usable from
  curl and from integration tests.

SEE ALSO:
  - handlers.go: POST /api/admin/seed
  - cmd/server/main.go: -seed flag
*/
package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lexhours/billing-engine/billing"
)

// SeedDemoData inserts the demo dataset in one transaction. Re-running
// it upserts users/catalog but will fail on duplicate entries; reset
// the database first for a clean reload.
func SeedDemoData(ctx context.Context, store billing.TxStore) error {
	return store.WithTx(ctx, func(s billing.Store) error {
		users := []billing.User{
			{ID: "usr-margaret", Name: "Margaret Hale", Role: billing.RoleAdmin},
			{ID: "usr-jonas", Name: "Jonas Richter", Role: billing.RoleLawyer},
			{ID: "usr-elena", Name: "Elena Vasquez", Role: billing.RoleLawyer},
		}
		for _, u := range users {
			if err := s.SaveUser(ctx, u); err != nil {
				return err
			}
		}

		rate250 := decimal.NewFromInt(250)
		rate180 := decimal.NewFromInt(180)
		clients := []billing.Client{
			{ID: "cli-northwind", Name: "Northwind Logistics", Type: billing.ClientRegular, HourlyRate: &rate250, Status: billing.ClientActive},
			{ID: "cli-aurora", Name: "Aurora Biotech", Type: billing.ClientRegular, HourlyRate: &rate180, Status: billing.ClientActive},
			{ID: "cli-internal", Name: "Firm Internal", Type: billing.ClientInternal, Status: billing.ClientActive},
			{ID: "cli-mgmt", Name: "Practice Management", Type: billing.ClientManagement, Status: billing.ClientActive},
			{ID: "cli-dormant", Name: "Dormant Holdings", Type: billing.ClientRegular, HourlyRate: &rate250, Status: billing.ClientInactive},
		}
		for _, c := range clients {
			if err := s.SaveClient(ctx, c); err != nil {
				return err
			}
		}

		topics := []billing.Topic{
			{ID: "top-contracts", Name: "Contract Review", Status: billing.CatalogActive},
			{ID: "top-litigation", Name: "Litigation", Status: billing.CatalogActive},
			{ID: "top-advisory", Name: "Advisory", Status: billing.CatalogActive},
			{ID: "top-retired", Name: "Retired Practice Area", Status: billing.CatalogInactive},
		}
		for _, t := range topics {
			if err := s.SaveTopic(ctx, t); err != nil {
				return err
			}
		}
		subtopics := []billing.Subtopic{
			{ID: "sub-nda", TopicID: "top-contracts", Name: "NDA Drafting", Status: billing.CatalogActive},
			{ID: "sub-discovery", TopicID: "top-litigation", Name: "Discovery", Status: billing.CatalogActive},
		}
		for _, st := range subtopics {
			if err := s.SaveSubtopic(ctx, st); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		monday := billing.NewDay(2025, time.March, 3)
		contractName := "Contract Review"
		contractID := "top-contracts"
		litigationName := "Litigation"
		litigationID := "top-litigation"

		entries := []billing.TimeEntry{
			{ID: "ent-1", UserID: "usr-jonas", ClientID: "cli-northwind", Date: monday,
				Hours: decimal.NewFromInt(6), Description: "Master services agreement redline",
				TopicID: &contractID, TopicName: &contractName},
			{ID: "ent-2", UserID: "usr-jonas", ClientID: "cli-aurora", Date: monday,
				Hours: decimal.NewFromInt(4), Description: "Licensing call and follow-up memo",
				TopicID: &litigationID, TopicName: &litigationName},
			{ID: "ent-3", UserID: "usr-jonas", ClientID: "cli-internal", Date: monday.AddDays(1),
				Hours: decimal.NewFromInt(2), Description: "Knowledge base upkeep"},
			{ID: "ent-4", UserID: "usr-elena", ClientID: "cli-northwind", Date: monday,
				Hours: decimal.NewFromFloat(7.5), Description: "Deposition preparation",
				TopicID: &litigationID, TopicName: &litigationName},
			{ID: "ent-5", UserID: "usr-elena", ClientID: "cli-aurora", Date: monday.AddDays(1),
				Hours: decimal.NewFromInt(3), Description: "Patent assignment review",
				TopicID: &contractID, TopicName: &contractName, IsWrittenOff: true},
		}
		for _, e := range entries {
			e.CreatedAt, e.UpdatedAt = now, now
			if err := s.SaveTimeEntry(ctx, e); err != nil {
				return err
			}
		}

		// Jonas logged 10h on Monday, enough to submit the day.
		if err := s.SaveSubmission(ctx, billing.TimesheetSubmission{
			ID: "subm-jonas-mon", UserID: "usr-jonas", Date: monday,
		}); err != nil {
			return err
		}

		// A draft billing document with one waived line item.
		if err := s.SaveServiceDescription(ctx, billing.ServiceDescription{
			ID: "sd-northwind-q1", ClientID: "cli-northwind", Name: "Northwind Q1", Status: billing.ServiceDescriptionDraft,
		}); err != nil {
			return err
		}
		cap40 := decimal.NewFromInt(40)
		if err := s.SaveBillingTopic(ctx, billing.ServiceDescriptionTopic{
			ID: "bt-northwind-contracts", ServiceDescriptionID: "sd-northwind-q1",
			Name: "Contract work", PricingMode: billing.PricingHourly,
			HourlyRate: &rate250, CapHours: &cap40,
		}); err != nil {
			return err
		}
		goodwill := "goodwill"
		lineItems := []billing.LineItem{
			{ID: "li-1", TopicID: "bt-northwind-contracts", TimeEntryID: "ent-1"},
			{ID: "li-2", TopicID: "bt-northwind-contracts", TimeEntryID: "ent-5", WaiveMode: &goodwill},
		}
		for _, li := range lineItems {
			if err := s.SaveLineItem(ctx, li); err != nil {
				return err
			}
		}
		return nil
	})
}
