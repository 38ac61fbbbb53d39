package db

import (
	"context"
	"testing"
	"time"

	"boardshare/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// approveRequest runs a request through admission and approval and returns
// the lending record the approval created.
func approveRequest(t *testing.T, r *Repo, f fixture, in CreateBorrowRequestInput) *models.LendingRecord {
	t.Helper()
	ctx := context.Background()
	req, err := r.CreateBorrowRequest(ctx, in)
	require.NoError(t, err)
	_, err = r.UpdateBorrowRequestStatus(ctx, req.ID, models.RequestApproved, f.actor())
	require.NoError(t, err)
	recs, err := r.ListLendingRecords(ctx, LendingRecordQuery{RequestID: req.ID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	return &recs[0]
}

// forceEndDate rewrites a record's end date behind the repo's back, to
// simulate time passing without sleeping in tests.
func forceEndDate(t *testing.T, r *Repo, recordID string, end time.Time) {
	t.Helper()
	require.NoError(t, r.DB.Model(&models.LendingRecord{}).
		Where("id = ?", recordID).Update("end_date", end).Error)
}

func TestCreateLendingRecordValidation(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	req, err := r.CreateBorrowRequest(ctx, f.requestInput(day(1), day(3)))
	require.NoError(t, err)

	_, err = r.CreateLendingRecord(ctx, day(1), day(3), nil, f.owner, f.actor())
	require.ErrorIs(t, err, ErrMissingInput)
	_, err = r.CreateLendingRecord(ctx, day(1), day(3), req, nil, f.actor())
	require.ErrorIs(t, err, ErrMissingInput)
	_, err = r.CreateLendingRecord(ctx, time.Time{}, day(3), req, f.owner, f.actor())
	require.ErrorIs(t, err, ErrMissingInput)

	_, err = r.CreateLendingRecord(ctx, day(3), day(1), req, f.owner, f.actor())
	require.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = r.CreateLendingRecord(ctx, day(-1), day(3), req, f.owner, f.actor())
	require.ErrorIs(t, err, ErrStartInPast)
	require.ErrorIs(t, err, ErrValidation)

	// The named owner must actually own the copy.
	_, err = r.CreateLendingRecord(ctx, day(1), day(3), req, f.requester, f.actor())
	require.ErrorIs(t, err, ErrOwnerMismatch)

	// One record per request.
	_, err = r.CreateLendingRecord(ctx, day(1), day(3), req, f.owner, f.actor())
	require.NoError(t, err)
	_, err = r.CreateLendingRecord(ctx, day(1), day(3), req, f.owner, f.actor())
	require.ErrorIs(t, err, ErrAlreadyLent)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCloseLendingRecordRestoresCopy(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))
	require.False(t, instanceAvailable(t, r, f.instance.ID))

	closed, err := r.CloseLendingRecord(ctx, rec.ID, f.actor(), "returned")
	require.NoError(t, err)
	require.Equal(t, models.LendingClosed, closed.Status)
	require.Equal(t, f.owner.ID, closed.LastModifiedBy)
	require.NotNil(t, closed.LastModifiedAt)
	require.Equal(t, "returned", closed.StatusReason)
	require.True(t, instanceAvailable(t, r, f.instance.ID))

	// CLOSED is terminal: no reopening, no second close.
	_, _, err = r.UpdateLendingStatus(ctx, rec.ID, models.LendingActive, f.actor(), "")
	require.ErrorIs(t, err, ErrRecordClosed)
	_, err = r.CloseLendingRecord(ctx, rec.ID, f.actor(), "again")
	require.ErrorIs(t, err, ErrRecordClosed)

	// Re-asserting the current status is a harmless no-op.
	same, overridden, err := r.UpdateLendingStatus(ctx, rec.ID, models.LendingClosed, f.actor(), "")
	require.NoError(t, err)
	require.False(t, overridden)
	require.Equal(t, models.LendingClosed, same.Status)

	// Both the creation and the close are on the trail.
	entries, err := r.ListAuditEntries(ctx, rec.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestUpdateLendingStatusOverdueOverride(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))
	forceEndDate(t, r, rec.ID, day(-1))

	// Asking for ACTIVE on a record past its end date lands on OVERDUE.
	got, overridden, err := r.UpdateLendingStatus(ctx, rec.ID, models.LendingActive, f.actor(), "owner check-in")
	require.NoError(t, err)
	require.True(t, overridden)
	require.Equal(t, models.LendingOverdue, got.Status)

	// Asking again changes nothing but still reports the override.
	got, overridden, err = r.UpdateLendingStatus(ctx, rec.ID, models.LendingActive, f.actor(), "")
	require.NoError(t, err)
	require.True(t, overridden)
	require.Equal(t, models.LendingOverdue, got.Status)

	// Overdue records close normally.
	closed, err := r.CloseLendingRecord(ctx, rec.ID, f.actor(), "finally returned")
	require.NoError(t, err)
	require.Equal(t, models.LendingClosed, closed.Status)
	require.True(t, instanceAvailable(t, r, f.instance.ID))
}

func TestUpdateLendingStatusManualTransitions(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))

	_, _, err := r.UpdateLendingStatus(ctx, rec.ID, models.LendingStatus("LOST"), f.actor(), "")
	require.ErrorIs(t, err, ErrBadStatus)

	// Owners may flag OVERDUE early; the end date does not gate that.
	got, overridden, err := r.UpdateLendingStatus(ctx, rec.ID, models.LendingOverdue, f.actor(), "not answering")
	require.NoError(t, err)
	require.False(t, overridden)
	require.Equal(t, models.LendingOverdue, got.Status)

	// And back to ACTIVE while the end date is still ahead.
	got, overridden, err = r.UpdateLendingStatus(ctx, rec.ID, models.LendingActive, f.actor(), "sorted out")
	require.NoError(t, err)
	require.False(t, overridden)
	require.Equal(t, models.LendingActive, got.Status)

	_, _, err = r.UpdateLendingStatus(ctx, uuid.NewString(), models.LendingActive, f.actor(), "")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCloseWithDamage(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))

	// Out-of-range severity is rejected before any state changes.
	_, err := r.CloseLendingRecordWithDamage(ctx, rec.ID, true, "torn box", 4, f.actor(), "returned damaged")
	require.ErrorIs(t, err, ErrDamageSeverity)
	_, err = r.CloseLendingRecordWithDamage(ctx, rec.ID, true, "torn box", -1, f.actor(), "returned damaged")
	require.ErrorIs(t, err, ErrDamageSeverity)
	got, err := r.FindLendingRecordByID(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, models.LendingActive, got.Status)
	require.False(t, got.IsDamaged)

	closed, err := r.CloseLendingRecordWithDamage(ctx, rec.ID, true, "torn box", 2, f.actor(), "returned damaged")
	require.NoError(t, err)
	require.Equal(t, models.LendingClosed, closed.Status)
	require.True(t, closed.IsDamaged)
	require.Equal(t, "torn box", closed.DamageNotes)
	require.Equal(t, 2, closed.DamageSeverity)
	require.NotNil(t, closed.DamageAssessedAt)
	require.True(t, instanceAvailable(t, r, f.instance.ID))
}

func TestUpdateLendingEndDate(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))

	_, err := r.UpdateLendingEndDate(ctx, rec.ID, day(0), f.actor())
	require.ErrorIs(t, err, ErrInvalidPeriod)

	newEnd := day(5)
	got, err := r.UpdateLendingEndDate(ctx, rec.ID, newEnd, f.actor())
	require.NoError(t, err)
	require.True(t, got.EndDate.Equal(newEnd))
	require.Equal(t, f.owner.ID, got.LastModifiedBy)

	_, err = r.CloseLendingRecord(ctx, rec.ID, f.actor(), "returned")
	require.NoError(t, err)
	_, err = r.UpdateLendingEndDate(ctx, rec.ID, day(7), f.actor())
	require.ErrorIs(t, err, ErrRecordClosed)
}

func TestDeleteLendingRecord(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))

	// An effectively active loan cannot be deleted.
	err := r.DeleteLendingRecord(ctx, rec.ID, f.actor())
	require.ErrorIs(t, err, ErrRecordActive)
	require.ErrorIs(t, err, ErrInvalidState)

	// Once the record is past its end date it is effectively overdue and may
	// go; deleting it releases the copy.
	forceEndDate(t, r, rec.ID, day(-1))
	require.NoError(t, r.DeleteLendingRecord(ctx, rec.ID, f.actor()))
	_, err = r.FindLendingRecordByID(ctx, rec.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.True(t, instanceAvailable(t, r, f.instance.ID))
}

func TestDeleteClosedLendingRecord(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	rec := approveRequest(t, r, f, f.requestInput(day(1), day(3)))
	_, err := r.CloseLendingRecord(ctx, rec.ID, f.actor(), "returned")
	require.NoError(t, err)

	require.NoError(t, r.DeleteLendingRecord(ctx, rec.ID, f.actor()))
	_, err = r.FindLendingRecordByID(ctx, rec.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindOverdueRecords(t *testing.T) {
	r := newTestRepo(t)
	f := newFixture(t, r)
	ctx := context.Background()

	// Three copies, three loans in different states of lateness.
	onTime := approveRequest(t, r, f, f.requestInput(day(1), day(3)))

	lateInst := newSiblingInstance(t, r, f)
	lateIn := f.requestInput(day(1), day(3))
	lateIn.GameInstanceID = lateInst.ID
	late := approveRequest(t, r, f, lateIn)
	forceEndDate(t, r, late.ID, day(-2))

	stampedInst := newSiblingInstance(t, r, f)
	stampedIn := f.requestInput(day(1), day(3))
	stampedIn.GameInstanceID = stampedInst.ID
	stamped := approveRequest(t, r, f, stampedIn)
	forceEndDate(t, r, stamped.ID, day(-1))
	_, _, err := r.UpdateLendingStatus(ctx, stamped.ID, models.LendingOverdue, f.actor(), "")
	require.NoError(t, err)

	overdue, err := r.FindOverdueRecords(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	// Ordered oldest due date first; the on-time loan is absent.
	require.Equal(t, late.ID, overdue[0].ID)
	require.Equal(t, stamped.ID, overdue[1].ID)
	for _, rec := range overdue {
		require.NotEqual(t, onTime.ID, rec.ID)
	}
}

// newSiblingInstance adds another copy of the fixture game under the same
// owner.
func newSiblingInstance(t *testing.T, r *Repo, f fixture) *models.GameInstance {
	t.Helper()
	inst := &models.GameInstance{
		ID:        uuid.NewString(),
		GameID:    f.game.ID,
		OwnerID:   f.owner.ID,
		Available: true,
		Condition: "good",
		Location:  "shelf B",
	}
	require.NoError(t, r.CreateGameInstance(context.Background(), inst))
	return inst
}
