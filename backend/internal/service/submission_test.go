package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/deskfolio/deskfolio/backend/internal/utils/spreadsheet"
	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestSubmission(remote SubmissionStorage, local FallbackStorage) *Submission {
	s := NewSubmission(remote, local, time.UTC)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("remote success stores trimmed values once", func(t *testing.T) {
		remote, local := &memoryRemote{}, &memoryFallback{}
		s := newTestSubmission(remote, local)

		result, err := s.Submit(ctx, "  Ada  ", "\thello world\n")
		require.NoError(t, err)
		assert.Equal(t, domain.RemoteSuccess, result.Outcome)
		assert.Equal(t, "r", result.Id)

		require.Len(t, remote.records, 1)
		assert.Equal(t, "Ada", remote.records[0].Name)
		assert.Equal(t, "hello world", remote.records[0].Message)
		assert.Equal(t, fixedNow, remote.records[0].CreatedAt)
		assert.Zero(t, local.count(), "a remote write never touches the local slot")
	})

	t.Run("blank input is rejected before any write", func(t *testing.T) {
		remote := &MockSubmissionStorage{
			CreateSubmissionFunc: func(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
				t.Fatal("remote store must not be called")
				return "", nil
			},
		}
		local := &memoryFallback{}
		s := newTestSubmission(remote, local)

		for _, in := range [][2]string{{"", "msg"}, {"name", ""}, {" ", " "}, {"\n", "msg"}} {
			result, err := s.Submit(ctx, in[0], in[1])
			require.Error(t, err, "input %q", in)
			assert.ErrorIs(t, err, internal_errors.ErrValidation)
			assert.Equal(t, domain.TotalFailure, result.Outcome)
		}
		assert.Zero(t, local.count())
	})

	t.Run("remote failure falls back to local", func(t *testing.T) {
		remote, local := &memoryRemote{fail: errStoreDown}, &memoryFallback{}
		s := newTestSubmission(remote, local)

		result, err := s.Submit(ctx, "A", "B")
		require.NoError(t, err)
		assert.Equal(t, domain.FallbackSuccess, result.Outcome)
		assert.Equal(t, "l", result.Id)
		assert.Equal(t, 1, local.count())

		stored, err := local.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A", stored[0].Name)
		assert.Equal(t, "B", stored[0].Message)
	})

	t.Run("both stores failing is a local storage error", func(t *testing.T) {
		s := newTestSubmission(&memoryRemote{fail: errStoreDown}, &memoryFallback{fail: errStoreDown})

		result, err := s.Submit(ctx, "A", "B")
		require.Error(t, err)
		assert.Equal(t, domain.TotalFailure, result.Outcome)
		assert.Empty(t, result.Id)
		assert.ErrorIs(t, err, internal_errors.ErrLocalStorage)
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("write survives caller cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		var sawErr error
		remote := &MockSubmissionStorage{
			CreateSubmissionFunc: func(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
				sawErr = ctx.Err()
				return "id", nil
			},
		}
		result, err := newTestSubmission(remote, &memoryFallback{}).Submit(cancelled, "A", "B")
		require.NoError(t, err)
		assert.Equal(t, domain.RemoteSuccess, result.Outcome)
		assert.NoError(t, sawErr)
	})
}

func TestListAllAndDelete(t *testing.T) {
	ctx := context.Background()
	remote, local := &memoryRemote{}, &memoryFallback{}
	s := NewSubmission(remote, local, time.UTC)

	const n = 4
	base := fixedNow
	for i := 0; i < n; i++ {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := s.Submit(ctx, "name", "message")
		require.NoError(t, err)
	}

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i := 1; i < n; i++ {
		assert.True(t, list[i-1].Timestamp.After(*list[i].Timestamp), "list must be newest first")
	}
	assert.Equal(t, domain.FormatDisplayDate(*list[0].Timestamp, time.UTC), list[0].DisplayDate)

	victim := list[1].Id
	require.NoError(t, s.Delete(ctx, victim))

	list, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n-1)
	for _, sub := range list {
		assert.NotEqual(t, victim, sub.Id)
	}
}

func TestListAll_RemoteFailure(t *testing.T) {
	s := NewSubmission(&memoryRemote{fail: errStoreDown}, &memoryFallback{}, time.UTC)

	list, err := s.ListAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, internal_errors.ErrRemoteUnavailable)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFallbackRecordsStayInTheirSlot(t *testing.T) {
	ctx := context.Background()
	remote, local := &memoryRemote{}, &memoryFallback{}
	s := newTestSubmission(remote, local)

	remote.fail = errStoreDown
	fallback, err := s.Submit(ctx, "offline", "m")
	require.NoError(t, err)
	require.Equal(t, domain.FallbackSuccess, fallback.Outcome)
	remote.fail = nil

	_, err = s.Submit(ctx, "online", "m")
	require.NoError(t, err)

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "local records are not merged into the admin list")
	assert.Equal(t, "online", list[0].Name)

	err = s.Delete(ctx, fallback.Id)
	assert.ErrorIs(t, err, internal_errors.ErrNotFound, "delete only reaches the remote store")
	assert.Equal(t, 1, local.count())

	locals, err := s.ListFallback(ctx)
	require.NoError(t, err)
	require.Len(t, locals, 1)
	assert.Equal(t, "offline", locals[0].Name)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("blank id", func(t *testing.T) {
		err := NewSubmission(&MockSubmissionStorage{}, &memoryFallback{}, time.UTC).Delete(ctx, " ")
		assert.ErrorIs(t, err, internal_errors.ErrValidation)
	})

	t.Run("missing id", func(t *testing.T) {
		err := NewSubmission(&memoryRemote{}, &memoryFallback{}, time.UTC).Delete(ctx, "nope")
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		err := NewSubmission(&memoryRemote{fail: errStoreDown}, &memoryFallback{}, time.UTC).Delete(ctx, "x")
		assert.ErrorIs(t, err, internal_errors.ErrRemoteUnavailable)
		assert.Equal(t, 503, internal_errors.StatusCode(err))
	})
}

func TestExport(t *testing.T) {
	s := NewSubmission(&MockSubmissionStorage{}, &memoryFallback{}, time.UTC)

	t.Run("empty input writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		err := s.Export(nil, &buf)
		assert.ErrorIs(t, err, internal_errors.ErrEmptyExport)
		assert.Zero(t, buf.Len())
	})

	t.Run("one record", func(t *testing.T) {
		var buf bytes.Buffer
		sub := domain.Submission{Id: "1", Name: "A", Message: "B", CreatedAt: fixedNow}
		require.NoError(t, s.Export([]domain.Submission{sub}, &buf))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(spreadsheet.SheetName)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Date & Time", "Name", "Message"},
			{"3/14/2025, 9:26:53 AM", "A", "B"},
		}, rows)
	})

	t.Run("display date wins over createdAt", func(t *testing.T) {
		var buf bytes.Buffer
		sub := domain.Submission{Name: "A", Message: "B", CreatedAt: fixedNow, DisplayDate: "custom"}
		require.NoError(t, s.Export([]domain.Submission{sub}, &buf))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		value, err := f.GetCellValue(spreadsheet.SheetName, "A2")
		require.NoError(t, err)
		assert.Equal(t, "custom", value)
	})
}
