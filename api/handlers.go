/*
handlers.go - HTTP API handlers for the billing engine

PURPOSE:
  Exposes the billing engine via REST. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Reports:
    GET    /api/reports                          Aggregated report over a date range

  Timesheets:
    PATCH  /api/timesheets/{id}                  Partial time-entry update
    DELETE /api/timesheets/{id}                  Delete a time entry
    POST   /api/timesheets/submit                Submit the caller's day

  Billing:
    PATCH  /api/billing/{sdID}/topics/{topicID}  Update pricing/discount/cap
    DELETE /api/billing/{sdID}/topics/{topicID}  Delete topic with cascade

CALLER IDENTITY:
  The X-User-ID header names the caller, resolved against the users
  table; an unknown caller is a 404. Users with the admin role are
  privileged report viewers. Session handling itself lives outside this
  service.

TRANSACTIONS:
  Every mutation runs inside Store.WithTx together with its consistency
  maintenance (submission guard, write-off cascade). A failure anywhere
  rolls back the whole operation.

ERROR HANDLING:
  Domain errors map to status codes in one place (writeDomainError):
  - 400: validation, business-rule conflict
  - 403: ownership/immutability violations
  - 404: missing entities (including the caller)
  - 500: store failures; detail is logged, the caller sees a generic
         single-sentence message

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
  - billing/: the domain logic these handlers drive
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lexhours/billing-engine/billing"
	"github.com/lexhours/billing-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// currentUser resolves the caller from the X-User-ID header.
func (h *Handler) currentUser(r *http.Request) (*billing.User, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return nil, billing.ErrUserNotFound
	}
	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, billing.ErrUserNotFound
	}
	return user, nil
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport returns the aggregated report for [startDate, endDate].
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	startRaw := r.URL.Query().Get("startDate")
	endRaw := r.URL.Query().Get("endDate")
	if startRaw == "" || endRaw == "" {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required (YYYY-MM-DD)", nil)
		return
	}
	start, err := billing.ParseDay(startRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate (use YYYY-MM-DD)", err)
		return
	}
	end, err := billing.ParseDay(endRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate (use YYYY-MM-DD)", err)
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "startDate must not be after endDate", nil)
		return
	}

	caller, err := h.currentUser(r)
	if err != nil {
		h.writeDomainError(w, err, "Failed to resolve caller")
		return
	}

	viewer := billing.Viewer{UserID: caller.ID, Privileged: caller.Privileged()}

	// Non-privileged callers are filtered at the query, privileged ones
	// see the whole firm.
	userFilter := ""
	if !viewer.Privileged {
		userFilter = caller.ID
	}

	entries, err := h.Store.ListReportEntries(r.Context(), start, end, userFilter)
	if err != nil {
		log.Printf("report query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch report", nil)
		return
	}

	report := billing.BuildReport(entries)
	report.Project(viewer)
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// UpdateTimeEntry applies a partial update to a time entry, refreshes
// denormalized topic/subtopic names, and runs the submission guard when
// the hours changed.
func (h *Handler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	caller, err := h.currentUser(r)
	if err != nil {
		h.writeDomainError(w, err, "Failed to resolve caller")
		return
	}
	entryID := chi.URLParam(r, "id")

	var req UpdateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		resp EntryMutationResponse
		ctx  = r.Context()
	)
	err = h.Store.WithTx(ctx, func(s billing.Store) error {
		entry, err := s.GetTimeEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return billing.ErrEntryNotFound
		}
		if entry.UserID != caller.ID {
			return billing.ErrNotOwner
		}
		billed, err := s.EntryBilledFinalized(ctx, entry.ID)
		if err != nil {
			return err
		}
		if billed {
			return billing.ErrEntryBilled
		}

		hoursChanged := false
		if req.Hours != nil {
			hours := decimal.NewFromFloat(*req.Hours)
			if !hours.IsPositive() || hours.GreaterThan(billing.MaxEntryHours) {
				return &billing.ValidationError{Field: "hours", Message: "hours must be between 0 and 12"}
			}
			hoursChanged = !hours.Equal(entry.Hours)
			entry.Hours = hours
		}
		if req.Description != nil {
			entry.Description = *req.Description
		}
		if req.ClientID != nil {
			client, err := s.GetClient(ctx, *req.ClientID)
			if err != nil {
				return err
			}
			if client == nil {
				return billing.ErrClientNotFound
			}
			if client.Status != billing.ClientActive {
				return &billing.ValidationError{Field: "clientId", Message: "client is inactive"}
			}
			entry.ClientID = client.ID
		}
		if req.TopicID != nil {
			if *req.TopicID == "" {
				// Clearing the topic clears the snapshot and the subtopic.
				entry.TopicID, entry.TopicName = nil, nil
				entry.SubtopicID, entry.SubtopicName = nil, nil
			} else {
				topic, err := s.GetTopic(ctx, *req.TopicID)
				if err != nil {
					return err
				}
				if topic == nil {
					return billing.ErrTopicNotFound
				}
				if topic.Status != billing.CatalogActive {
					return &billing.ValidationError{Field: "topicId", Message: "topic is inactive"}
				}
				entry.TopicID = &topic.ID
				entry.TopicName = &topic.Name
				// A new topic invalidates the old subtopic unless the
				// request sets one too.
				entry.SubtopicID, entry.SubtopicName = nil, nil
			}
		}
		if req.SubtopicID != nil {
			if *req.SubtopicID == "" {
				entry.SubtopicID, entry.SubtopicName = nil, nil
			} else {
				subtopic, err := s.GetSubtopic(ctx, *req.SubtopicID)
				if err != nil {
					return err
				}
				if subtopic == nil {
					return billing.ErrSubtopicNotFound
				}
				if subtopic.Status != billing.CatalogActive {
					return &billing.ValidationError{Field: "subtopicId", Message: "subtopic is inactive"}
				}
				if entry.TopicID == nil || subtopic.TopicID != *entry.TopicID {
					return &billing.ValidationError{Field: "subtopicId", Message: "subtopic does not belong to the entry's topic"}
				}
				entry.SubtopicID = &subtopic.ID
				entry.SubtopicName = &subtopic.Name
			}
		}

		entry.UpdatedAt = time.Now().UTC()
		if err := s.UpdateTimeEntry(ctx, *entry); err != nil {
			return err
		}

		if hoursChanged {
			guard, err := billing.EnforceSubmissionInvariant(ctx, s, entry.UserID, entry.Date)
			if err != nil {
				return err
			}
			resp.SubmissionRevoked = guard.SubmissionRevoked
			resp.RemainingHours = decPtrToFloat(guard.RemainingHours)
		}

		resp.Entry = toTimeEntryDTO(entry)
		return nil
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to update time entry")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteTimeEntry removes an entry and runs the same submission guard
// as the edit path.
func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	caller, err := h.currentUser(r)
	if err != nil {
		h.writeDomainError(w, err, "Failed to resolve caller")
		return
	}
	entryID := chi.URLParam(r, "id")

	var (
		resp EntryMutationResponse
		ctx  = r.Context()
	)
	err = h.Store.WithTx(ctx, func(s billing.Store) error {
		entry, err := s.GetTimeEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return billing.ErrEntryNotFound
		}
		if entry.UserID != caller.ID {
			return billing.ErrNotOwner
		}
		billed, err := s.EntryBilledFinalized(ctx, entry.ID)
		if err != nil {
			return err
		}
		if billed {
			return billing.ErrEntryBilled
		}

		if err := s.DeleteTimeEntry(ctx, entry.ID); err != nil {
			return err
		}

		guard, err := billing.EnforceSubmissionInvariant(ctx, s, entry.UserID, entry.Date)
		if err != nil {
			return err
		}
		resp.SubmissionRevoked = guard.SubmissionRevoked
		resp.RemainingHours = decPtrToFloat(guard.RemainingHours)
		return nil
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to delete time entry")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubmitTimesheet finalizes the caller's day when its total qualifies.
func (h *Handler) SubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	caller, err := h.currentUser(r)
	if err != nil {
		h.writeDomainError(w, err, "Failed to resolve caller")
		return
	}

	var req SubmitTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := billing.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var sub *billing.TimesheetSubmission
	ctx := r.Context()
	err = h.Store.WithTx(ctx, func(s billing.Store) error {
		sub, err = billing.SubmitTimesheet(ctx, s, caller.ID, day)
		return err
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to submit timesheet")
		return
	}

	writeJSON(w, http.StatusCreated, SubmissionDTO{
		ID:     sub.ID,
		UserID: sub.UserID,
		Date:   sub.Date.String(),
	})
}

// =============================================================================
// BILLING TOPIC HANDLERS
// =============================================================================

// loadDraftTopic fetches the service description and topic for a
// billing mutation, rejecting FINALIZED parents.
func loadDraftTopic(r *http.Request, s billing.Store) (*billing.ServiceDescriptionTopic, error) {
	ctx := r.Context()
	sdID := chi.URLParam(r, "sdID")
	topicID := chi.URLParam(r, "topicID")

	sd, err := s.GetServiceDescription(ctx, sdID)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, billing.ErrServiceDescriptionNotFound
	}
	if sd.Finalized() {
		return nil, billing.ErrServiceDescriptionFinalized
	}

	topic, err := s.GetBillingTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil || topic.ServiceDescriptionID != sd.ID {
		return nil, billing.ErrBillingTopicNotFound
	}
	return topic, nil
}

// UpdateBillingTopic validates and applies a partial pricing/discount
// update against the topic's persisted state.
func (h *Handler) UpdateBillingTopic(w http.ResponseWriter, r *http.Request) {
	var req UpdateBillingTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		dto BillingTopicDTO
		ctx = r.Context()
	)
	err := h.Store.WithTx(ctx, func(s billing.Store) error {
		topic, err := loadDraftTopic(r, s)
		if err != nil {
			return err
		}

		patch := billing.TopicPatch{
			PricingMode:   req.PricingMode,
			HourlyRate:    floatPtrToDec(req.HourlyRate),
			FixedFee:      floatPtrToDec(req.FixedFee),
			CapHours:      floatPtrToDec(req.CapHours),
			DiscountType:  req.DiscountType,
			DiscountValue: floatPtrToDec(req.DiscountValue),
		}
		update, err := billing.ValidateTopicPatch(patch, billing.TopicState{
			PricingMode:   topic.PricingMode,
			DiscountType:  topic.DiscountType,
			DiscountValue: topic.DiscountValue,
		})
		if err != nil {
			return err
		}

		if err := s.UpdateBillingTopic(ctx, topic.ID, update); err != nil {
			return err
		}

		updated, err := s.GetBillingTopic(ctx, topic.ID)
		if err != nil {
			return err
		}
		dto = toBillingTopicDTO(updated)
		return nil
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to update billing topic")
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// DeleteBillingTopic removes a topic and clears now-unreferenced
// write-off flags in the same transaction.
func (h *Handler) DeleteBillingTopic(w http.ResponseWriter, r *http.Request) {
	var (
		resp = DeleteBillingTopicResponse{ClearedEntries: []string{}}
		ctx  = r.Context()
	)
	err := h.Store.WithTx(ctx, func(s billing.Store) error {
		topic, err := loadDraftTopic(r, s)
		if err != nil {
			return err
		}

		result, err := billing.DeleteTopicWithCascade(ctx, s, topic.ID)
		if err != nil {
			return err
		}
		resp.Deleted = true
		resp.ClearedEntries = append(resp.ClearedEntries, result.ClearedEntryIDs...)
		return nil
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to delete billing topic")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// MISC HANDLERS
// =============================================================================

// Health is a trivial liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SeedDemo loads the demo law-firm dataset. Dev convenience only.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	if err := SeedDemoData(r.Context(), h.Store); err != nil {
		log.Printf("seed failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error to a status code. Internal
// errors are logged with detail and reported generically.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case billing.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, fallback, nil)
	}
}
