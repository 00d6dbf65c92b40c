package lookup

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookupdesk/backend/internal/domain/shared"
)

func phoneDraft() ServiceRequestDraft {
	return ServiceRequestDraft{
		SourceType:    SourcePhoneNumber,
		PhoneNumber:   "01712345678",
		DataNeeded:    []DataCategory{CategoryLocation, CategoryNID},
		ServiceTypes:  []ServiceKey{ServiceNumberToLocation, ServiceNumberToNID},
		ServiceCharge: decimal.NewFromInt(1800),
		PaymentMethod: "bkash",
		TrxID:         "TRX12345678",
	}
}

func imeiDraft() ServiceRequestDraft {
	return ServiceRequestDraft{
		SourceType:    SourceIMEI,
		IMEI:          "123456789012345",
		DataNeeded:    []DataCategory{CategoryNumber},
		ServiceTypes:  []ServiceKey{ServiceIMEIToNumber},
		ServiceCharge: decimal.NewFromInt(1500),
		PaymentMethod: "nagad",
		TrxID:         "TRX87654321",
	}
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestNewServiceRequest(t *testing.T) {
	userID := uuid.New()

	t.Run("creates pending phone number request", func(t *testing.T) {
		req, err := NewServiceRequest(userID, phoneDraft())
		require.NoError(t, err)
		require.NotNil(t, req)

		assert.Equal(t, userID, req.UserID)
		assert.Equal(t, SourcePhoneNumber, req.SourceType)
		assert.Equal(t, StatusPending, req.Status)
		assert.True(t, req.ServiceCharge.Equal(decimal.NewFromInt(1800)))
		assert.Nil(t, req.ApprovedAt)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, 1, req.GetVersion())
	})

	t.Run("creates pending imei request with base charge", func(t *testing.T) {
		req, err := NewServiceRequest(userID, imeiDraft())
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		assert.True(t, req.ServiceCharge.Equal(decimal.NewFromInt(1500)))
		assert.True(t, req.ServiceTypes.Contains(ServiceIMEIToNumber))
	})

	t.Run("publishes ServiceRequestCreated event", func(t *testing.T) {
		req, err := NewServiceRequest(userID, phoneDraft())
		require.NoError(t, err)

		events := req.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeServiceRequestCreated, events[0].EventType())

		event, ok := events[0].(*ServiceRequestCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, req.ID, event.RequestID)
		assert.Equal(t, userID, event.UserID)
		assert.Equal(t, StatusPending, event.Status)
	})

	t.Run("fails with nil user", func(t *testing.T) {
		_, err := NewServiceRequest(uuid.Nil, phoneDraft())
		assertDomainCode(t, err, "INVALID_USER")
	})

	t.Run("fails with unknown source type", func(t *testing.T) {
		draft := phoneDraft()
		draft.SourceType = "email"
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_SOURCE_TYPE")
	})

	t.Run("fails with empty data needed", func(t *testing.T) {
		draft := phoneDraft()
		draft.DataNeeded = nil
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "EMPTY_DATA_NEEDED")
	})

	t.Run("fails with empty service types", func(t *testing.T) {
		draft := phoneDraft()
		draft.ServiceTypes = nil
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "EMPTY_SERVICE_TYPES")
	})

	t.Run("fails with missing imei", func(t *testing.T) {
		draft := imeiDraft()
		draft.IMEI = ""
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "MISSING_IMEI")
	})

	t.Run("fails with malformed imei", func(t *testing.T) {
		draft := imeiDraft()
		draft.IMEI = "1234"
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_IMEI")
	})

	t.Run("fails when imei request lacks the base service", func(t *testing.T) {
		draft := imeiDraft()
		draft.ServiceTypes = []ServiceKey{ServiceNumberToLocation}
		draft.DataNeeded = []DataCategory{CategoryLocation}
		draft.ServiceCharge = decimal.NewFromInt(1000)
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "MISSING_BASE_SERVICE")
	})

	t.Run("fails with invalid phone number", func(t *testing.T) {
		draft := phoneDraft()
		draft.PhoneNumber = "02712345678"
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_PHONE_NUMBER")
	})

	t.Run("fails when phone number request claims imei service", func(t *testing.T) {
		draft := phoneDraft()
		draft.ServiceTypes = []ServiceKey{ServiceIMEIToNumber}
		draft.DataNeeded = []DataCategory{CategoryNumber}
		draft.ServiceCharge = decimal.NewFromInt(1500)
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_SERVICE_TYPE")
	})

	t.Run("fails with unknown service type", func(t *testing.T) {
		draft := phoneDraft()
		draft.ServiceTypes = append(draft.ServiceTypes, "numberToAddress")
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_SERVICE_TYPE")
	})

	t.Run("fails when data needed does not match services", func(t *testing.T) {
		draft := phoneDraft()
		draft.DataNeeded = []DataCategory{CategoryLocation}
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "DATA_NEEDED_MISMATCH")
	})

	t.Run("fails when data needed claims an unpaid category", func(t *testing.T) {
		draft := phoneDraft()
		draft.DataNeeded = []DataCategory{CategoryLocation, CategoryCallList3Months}
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "DATA_NEEDED_MISMATCH")
	})

	t.Run("fails when imei data needed omits number", func(t *testing.T) {
		draft := imeiDraft()
		draft.ServiceTypes = []ServiceKey{ServiceIMEIToNumber, ServiceNumberToLocation}
		draft.DataNeeded = []DataCategory{CategoryLocation}
		draft.ServiceCharge = decimal.NewFromInt(2500)
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "DATA_NEEDED_MISMATCH")
	})

	t.Run("fails on duplicated data needed entries", func(t *testing.T) {
		draft := phoneDraft()
		draft.DataNeeded = []DataCategory{CategoryLocation, CategoryLocation}
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "DATA_NEEDED_MISMATCH")
	})

	t.Run("fails on charge mismatch", func(t *testing.T) {
		draft := phoneDraft()
		draft.ServiceCharge = decimal.NewFromInt(1799)
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "SERVICE_CHARGE_MISMATCH")
	})

	t.Run("charge equality is exact with no tolerance", func(t *testing.T) {
		draft := phoneDraft()
		draft.ServiceCharge = decimal.RequireFromString("1800.01")
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "SERVICE_CHARGE_MISMATCH")
	})

	t.Run("fails with missing payment method", func(t *testing.T) {
		draft := phoneDraft()
		draft.PaymentMethod = ""
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "MISSING_PAYMENT_METHOD")
	})

	t.Run("fails with short transaction id", func(t *testing.T) {
		draft := phoneDraft()
		draft.TrxID = "TRX1234"
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_TRX_ID")
	})

	t.Run("fails with oversized note", func(t *testing.T) {
		draft := phoneDraft()
		draft.AdditionalNote = strings.Repeat("x", 501)
		_, err := NewServiceRequest(userID, draft)
		assertDomainCode(t, err, "INVALID_NOTE")
	})

	t.Run("accepts note at the limit", func(t *testing.T) {
		draft := phoneDraft()
		draft.AdditionalNote = strings.Repeat("x", 500)
		_, err := NewServiceRequest(userID, draft)
		require.NoError(t, err)
	})

	t.Run("imei full bundle derives all categories", func(t *testing.T) {
		draft := imeiDraft()
		draft.ServiceTypes = []ServiceKey{
			ServiceIMEIToNumber,
			ServiceNumberToLocation,
			ServiceNumberToNID,
			ServiceNumberToCallList3Months,
			ServiceNumberToCallList6Months,
		}
		draft.DataNeeded = []DataCategory{
			CategoryNumber,
			CategoryLocation,
			CategoryNID,
			CategoryCallList3Months,
			CategoryCallList6Months,
		}
		draft.ServiceCharge = decimal.NewFromInt(1500 + 1000 + 800 + 2000 + 3500)
		req, err := NewServiceRequest(userID, draft)
		require.NoError(t, err)
		assert.True(t, req.ServiceCharge.Equal(decimal.NewFromInt(8800)))
	})
}

func TestServiceRequestAdvanceOnDelivery(t *testing.T) {
	userID := uuid.New()

	newPhoneRequest := func(t *testing.T) *ServiceRequest {
		t.Helper()
		req, err := NewServiceRequest(userID, phoneDraft())
		require.NoError(t, err)
		req.ClearDomainEvents()
		return req
	}

	t.Run("first delivery approves", func(t *testing.T) {
		req := newPhoneRequest(t)
		err := req.AdvanceOnDelivery(map[DataCategory]bool{CategoryLocation: true})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, req.Status)
		require.NotNil(t, req.ApprovedAt)

		events := req.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ServiceRequestStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusPending, event.FromStatus)
		assert.Equal(t, StatusApproved, event.ToStatus)
	})

	t.Run("full coverage completes regardless of order", func(t *testing.T) {
		req := newPhoneRequest(t)
		require.NoError(t, req.AdvanceOnDelivery(map[DataCategory]bool{CategoryNID: true}))
		assert.Equal(t, StatusApproved, req.Status)

		require.NoError(t, req.AdvanceOnDelivery(map[DataCategory]bool{CategoryNID: true, CategoryLocation: true}))
		assert.Equal(t, StatusCompleted, req.Status)
		require.NotNil(t, req.CompletedAt)
	})

	t.Run("single delivery covering everything completes directly", func(t *testing.T) {
		req, err := NewServiceRequest(userID, imeiDraft())
		require.NoError(t, err)
		require.NoError(t, req.AdvanceOnDelivery(map[DataCategory]bool{CategoryNumber: true}))
		assert.Equal(t, StatusCompleted, req.Status)
	})

	t.Run("repeat delivery of a covered category is idempotent", func(t *testing.T) {
		req := newPhoneRequest(t)
		require.NoError(t, req.AdvanceOnDelivery(map[DataCategory]bool{CategoryNID: true}))
		req.ClearDomainEvents()

		require.NoError(t, req.AdvanceOnDelivery(map[DataCategory]bool{CategoryNID: true}))
		assert.Equal(t, StatusApproved, req.Status)
		assert.Empty(t, req.GetDomainEvents())
	})

	t.Run("extra category beyond data needed does not block completion", func(t *testing.T) {
		req := newPhoneRequest(t)
		covered := map[DataCategory]bool{CategoryNID: true, CategoryLocation: true, CategoryNumber: true}
		require.NoError(t, req.AdvanceOnDelivery(covered))
		assert.Equal(t, StatusCompleted, req.Status)
	})

	t.Run("rejected request refuses delivery advance", func(t *testing.T) {
		req := newPhoneRequest(t)
		require.NoError(t, req.OverrideStatus(StatusRejected, "payment not found"))
		req.ClearDomainEvents()

		err := req.AdvanceOnDelivery(map[DataCategory]bool{CategoryNID: true})
		require.Error(t, err)
		assert.Equal(t, StatusRejected, req.Status)
	})
}

func TestServiceRequestOverrideStatus(t *testing.T) {
	userID := uuid.New()

	newRequest := func(t *testing.T) *ServiceRequest {
		t.Helper()
		req, err := NewServiceRequest(userID, phoneDraft())
		require.NoError(t, err)
		req.ClearDomainEvents()
		return req
	}

	t.Run("sets status and notes", func(t *testing.T) {
		req := newRequest(t)
		err := req.OverrideStatus(StatusApproved, "payment verified")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, req.Status)
		assert.Equal(t, "payment verified", req.ModeratorNotes)
		require.NotNil(t, req.ApprovedAt)

		events := req.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ServiceRequestStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusPending, event.FromStatus)
		assert.Equal(t, StatusApproved, event.ToStatus)
		assert.Equal(t, "payment verified", event.ModeratorNotes)
	})

	t.Run("may move backward", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OverrideStatus(StatusCompleted, ""))
		require.NoError(t, req.OverrideStatus(StatusPending, "reopening for re-check"))
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("same status updates notes without event", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OverrideStatus(StatusPending, "looked at it, waiting on payment"))
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, "looked at it, waiting on payment", req.ModeratorNotes)
		assert.Empty(t, req.GetDomainEvents())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		req := newRequest(t)
		err := req.OverrideStatus("Archived", "")
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_STATUS", de.Code)
	})

	t.Run("rejection stamps rejected at", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OverrideStatus(StatusRejected, "duplicate trx id"))
		require.NotNil(t, req.RejectedAt)
		assert.False(t, req.CanAcceptDelivery())
	})

	t.Run("rejection without a note is refused", func(t *testing.T) {
		req := newRequest(t)
		for _, notes := range []string{"", "   ", "\t\n"} {
			err := req.OverrideStatus(StatusRejected, notes)
			require.Error(t, err)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "MISSING_REJECTION_NOTE", de.Code)
		}
		assert.Equal(t, StatusPending, req.Status)
		assert.Empty(t, req.ModeratorNotes)
		assert.Empty(t, req.GetDomainEvents())
	})
}
